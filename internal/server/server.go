// Package server implements the storyshuffle HTTP API.
//
// The API mirrors the pipeline: validate a manuscript's rules, shuffle it,
// and render its constraint graph. Workspaces persist a manuscript and rules
// between requests so the preview UI can reshuffle without re-uploading.
//
// # Endpoints
//
//	GET  /healthz                      liveness probe
//	POST /api/validate                 check rules without shuffling
//	POST /api/shuffle                  one-shot shuffle
//	POST /api/graph                    render the constraint graph (dot/svg)
//	POST /api/workspaces               create a workspace
//	GET  /api/workspaces               list workspace IDs
//	GET  /api/workspaces/{id}          fetch a workspace
//	PUT  /api/workspaces/{id}          update manuscript or rules
//	DELETE /api/workspaces/{id}        delete a workspace
//	POST /api/workspaces/{id}/shuffle  shuffle a stored workspace
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storyshuffle/pkg/pipeline"
	"github.com/matzehuels/storyshuffle/pkg/session"
)

// Server wires the pipeline runner and workspace store into an HTTP handler.
type Server struct {
	runner *pipeline.Runner
	store  session.Store
	logger *log.Logger
}

// New creates a server. A nil store falls back to in-memory workspaces and a
// nil logger to the default logger.
func New(runner *pipeline.Runner, store session.Store, logger *log.Logger) *Server {
	if store == nil {
		store = session.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  store,
		logger: logger,
	}
}

// Handler builds the chi router with all routes and middleware registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/shuffle", s.handleShuffle)
		r.Post("/graph", s.handleGraph)

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", s.handleWorkspaceCreate)
			r.Get("/", s.handleWorkspaceList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleWorkspaceGet)
				r.Put("/", s.handleWorkspaceUpdate)
				r.Delete("/", s.handleWorkspaceDelete)
				r.Post("/shuffle", s.handleWorkspaceShuffle)
			})
		})
	})

	return r
}
