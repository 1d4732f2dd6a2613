package api

import (
	"net/http"
	"strings"
)

type scheduleDetail struct {
	Name  string `json:"name"`
	Expr  string `json:"expr"`
	State string `json:"state,omitempty"`
}

// handleListSchedules lists every schedule currently registered.
func (a *API) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if a.ListSchedules == nil {
		writeJSON(w, http.StatusOK, []scheduleDetail{})
		return
	}

	var out []scheduleDetail
	for _, s := range a.ListSchedules() {
		out = append(out, scheduleDetail{Name: s.Name, Expr: s.Expr, State: a.stateOf(s.Name)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetSchedule returns detail for /api/schedules/{name}.
func (a *API) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/schedules/")
	if name == "" || a.ListSchedules == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	for _, s := range a.ListSchedules() {
		if s.Name == name {
			writeJSON(w, http.StatusOK, scheduleDetail{Name: s.Name, Expr: s.Expr, State: a.stateOf(s.Name)})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (a *API) stateOf(name string) string {
	if a.Watcher == nil {
		return ""
	}
	st, ok := a.Watcher.State(name)
	if !ok {
		return ""
	}
	return st.String()
}
