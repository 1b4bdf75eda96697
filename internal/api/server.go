// Package api is the DashboardAPI (C9): a JSON HTTP surface over the
// Store and the orchestrator, plus SSE streams for log tailing and plan
// chat, grounded on the teacher's chi-based REST server and SSE handler.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/avery-ling/task-tracker/internal/agent"
	"github.com/avery-ling/task-tracker/internal/childtable"
	"github.com/avery-ling/task-tracker/internal/config"
	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/logging"
	"github.com/avery-ling/task-tracker/internal/orchestrator"
	"github.com/avery-ling/task-tracker/internal/review"
	"github.com/avery-ling/task-tracker/internal/store"
)

// Store is the subset of *store.Store the API depends on.
type Store interface {
	orchestrator.PlanStore
	List(ctx context.Context) ([]*core.Plan, error)
	ListByProject(ctx context.Context, projectPath string) ([]*core.Plan, error)
	AddPlan(ctx context.Context, planPath, projectPath, title string) (*core.Plan, error)
	CreateTask(ctx context.Context, projectPath, title, description string) (*core.Plan, error)
	Delete(ctx context.Context, id int64) error
	SetDependency(ctx context.Context, id, dependsOn int64) error
	GetDependents(ctx context.Context, id int64) ([]*core.Plan, error)
	UnblockedOpenTasks(ctx context.Context) ([]*core.Plan, error)
	UpdatePlanPath(ctx context.Context, id int64, path string) error
	UpdatePlanningSession(ctx context.Context, id int64, sessionID string) error
}

// Orchestrator is the subset of *orchestrator.Orchestrator the API drives.
type Orchestrator interface {
	CanStart(ctx context.Context, plan *core.Plan) (core.Guard, error)
	RunPlan(ctx context.Context, planID int64) (review.Outcome, error)
}

// Server serves the dashboard's HTTP and SSE surface.
type Server struct {
	router   chi.Router
	store    Store
	cfg      *config.Config
	orch     Orchestrator
	runner   *agent.Runner
	children *childtable.Table
	logsDir  string
	plansDir string
	logger   *logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New returns a Server ready to Handler() or ListenAndServe. plansDir
// holds the markdown documents the API drafts via /plan and /chat, for
// plans that didn't arrive with a plan file already attached.
func New(db *store.Store, cfg *config.Config, orch Orchestrator, runner *agent.Runner, children *childtable.Table, logsDir, plansDir string, opts ...Option) *Server {
	s := &Server{
		store:    db,
		cfg:      cfg,
		orch:     orch,
		runner:   runner,
		children: children,
		logsDir:  logsDir,
		plansDir: plansDir,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.handleListPlans)
			r.Post("/", s.handleCreatePlan)
			r.Post("/work-all", s.handleWorkAll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlan)
				r.Delete("/", s.handleDeletePlan)
				r.Post("/work", s.handleWork)
				r.Get("/logs", s.handleLogs)
				r.Get("/plan-content", s.handlePlanContent)
				r.Post("/plan", s.handleGeneratePlan)
				r.Post("/chat", s.handleChat)
				r.Get("/dependency", s.handleGetDependency)
				r.Put("/dependency", s.handleSetDependency)
				r.Get("/dependents", s.handleDependents)
				r.Get("/can-start", s.handleCanStart)
			})
		})

		r.Get("/usage", s.handleUsage)
	})

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting dashboard API", "addr", addr)
	return srv.ListenAndServe()
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps a core.DomainError category to an HTTP status
// and writes the JSON error body; matches §7's propagation policy.
func respondDomainError(w http.ResponseWriter, err error) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch domErr.Category {
	case core.ErrCatValidation:
		status = http.StatusBadRequest
	case core.ErrCatNotFound:
		status = http.StatusNotFound
	case core.ErrCatState, core.ErrCatDependency:
		status = http.StatusConflict
	case core.ErrCatVCS, core.ErrCatAgent, core.ErrCatIO:
		status = http.StatusInternalServerError
	case core.ErrCatConfig:
		status = http.StatusInternalServerError
	}
	respondError(w, status, domErr.Error())
}
