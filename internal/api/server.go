package api

import (
	"log/slog"
	"net/http"

	"github.com/MohanBalaji3/TestCaseStudio/internal/config"
	"github.com/MohanBalaji3/TestCaseStudio/internal/pipeline"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for TestCaseStudio.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *testcase.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, stats *testcase.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.ServiceAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))
		}
		r.Use(JiraCredentials(s.cfg))

		r.Get("/api/issues/{key}", s.handleGetIssue)
		r.Post("/api/issues/{key}/testcases", s.handleGenerateForIssue)
		r.Post("/api/issues/{key}/subtasks", s.handleCreateSubtask)

		r.Post("/api/stories/extract", s.handleExtractStory)
		r.Post("/api/stories/import", s.handleImportStory)

		r.Post("/api/testcases/export", s.handleExportCSV)

		r.Post("/api/batch", s.handleSubmitBatch)
		r.Get("/api/batch/{jobID}/status", s.handleBatchStatus)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
