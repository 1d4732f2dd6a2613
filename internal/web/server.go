// Package web is the HTTP server for the schedctl API and minimal UI.
// Adapted from the teacher's internal/web.
package web

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/patrickspencer/scheduleexpr/internal/config"
	"github.com/patrickspencer/scheduleexpr/internal/realtime"
	"github.com/patrickspencer/scheduleexpr/internal/watch"
	"github.com/patrickspencer/scheduleexpr/internal/web/api"
	"github.com/patrickspencer/scheduleexpr/internal/web/ui"
	"github.com/patrickspencer/scheduleexpr/pkg/registry"
)

// Server is the HTTP server for the schedctl web interface and API.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server with the given dependencies.
func NewServer(
	addr string,
	reg *registry.Schedule,
	events *realtime.Broker,
	watcher *watch.Watcher,
	getConfig func() *config.Config,
	listSchedules func() []api.ScheduleInfo,
) *Server {
	mux := http.NewServeMux()

	a := &api.API{
		Registry:      reg,
		Events:        events,
		Watcher:       watcher,
		GetConfig:     getConfig,
		ListSchedules: listSchedules,
	}
	a.RegisterRoutes(mux)

	mux.Handle("/ui/", http.StripPrefix("/ui/", ui.Handler()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
			return
		}
		http.NotFound(w, r)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: corsMiddleware(mux),
		},
	}
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	log.Printf("http server listening on %s", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds permissive CORS headers for development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
