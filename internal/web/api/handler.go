// Package api implements the HTTP surface for schedctl: parsing and
// evaluating schedule expressions, listing registered schedules, and
// streaming transition events. Adapted from the teacher's
// internal/web/api, trimmed to this module's domain.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/patrickspencer/scheduleexpr/internal/config"
	"github.com/patrickspencer/scheduleexpr/internal/realtime"
	"github.com/patrickspencer/scheduleexpr/internal/watch"
	"github.com/patrickspencer/scheduleexpr/pkg/registry"
)

// ScheduleInfo summarizes a registered schedule for list/detail responses.
type ScheduleInfo struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// API holds dependencies for all API handlers.
type API struct {
	Registry      *registry.Schedule
	Events        *realtime.Broker
	Watcher       *watch.Watcher
	GetConfig     func() *config.Config
	ListSchedules func() []ScheduleInfo
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/parse", a.handleParse)
	mux.HandleFunc("/api/evaluate", a.handleEvaluate)
	mux.HandleFunc("/api/schedules", a.handleListSchedules)
	mux.HandleFunc("/api/schedules/", a.handleGetSchedule)
	mux.HandleFunc("/api/events", a.handleEvents)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/health", a.handleHealth)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
