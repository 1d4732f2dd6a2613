package api

import "net/http"

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if a.GetConfig == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "config provider unavailable"})
		return
	}

	cfg := a.GetConfig()
	if cfg == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "config unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}
