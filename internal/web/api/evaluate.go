package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/schedlang"
)

type evaluateRequest struct {
	Expr  string `json:"expr,omitempty"`
	ID    string `json:"id,omitempty"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Merge bool   `json:"merge"`
}

type intervalResponse struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type evaluateResponse struct {
	Intervals []intervalResponse `json:"intervals"`
}

// handleEvaluate evaluates either an inline expression or a registered
// schedule ID over [start, end] and returns the resulting intervals.
func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Start > req.End {
		writeError(w, http.StatusBadRequest, errors.New("start must not be after end"))
		return
	}

	domain := block.Domain{Start: req.Start, End: req.End}

	var intervals []intervalResponse
	switch {
	case req.Expr != "":
		b, err := schedlang.ParseExpression(req.Expr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		result, err := b.Evaluate(domain, a.Registry, req.Merge)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		for _, iv := range result {
			intervals = append(intervals, intervalResponse{Start: iv.Start, End: iv.End})
		}
	case req.ID != "":
		result, err := a.Registry.Evaluate(req.ID, domain, req.Merge, true)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		for _, iv := range result {
			intervals = append(intervals, intervalResponse{Start: iv.Start, End: iv.End})
		}
	default:
		writeError(w, http.StatusBadRequest, errors.New("one of expr or id is required"))
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{Intervals: intervals})
}
