package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/patrickspencer/scheduleexpr/pkg/schedlang"
)

type parseRequest struct {
	Expr string `json:"expr"`
}

type parseResponse struct {
	Tree string `json:"tree"`
	Hash string `json:"hash"`
}

// handleParse parses a schedule expression and returns its round-tripped
// surface syntax plus structural hash, without evaluating it.
func (a *API) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	b, err := schedlang.ParseExpression(req.Expr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Tree: b.String(),
		Hash: strconv.FormatUint(b.Hash(), 16),
	})
}
