// Package httpapi exposes the analysis service over REST. Routes mirror
// the dashboard contract: analyses, spreadsheet upload, suppliers and
// generated messages, all scoped to the caller's X-User-ID.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/analysis"
	"github.com/sells-group/supplier-cli/internal/config"
	"github.com/sells-group/supplier-cli/internal/store"
)

// defaultOwner is used when the client sends no X-User-ID header.
// Authentication is out of scope; ownership checks still apply.
const defaultOwner = "local"

// Runner abstracts the orchestrator so handlers are testable without AI
// collaborators.
type Runner interface {
	Run(ctx context.Context, ownerID, analysisID string) (*analysis.RunResult, error)
}

// Server holds the HTTP handler dependencies.
type Server struct {
	store  store.Store
	runner Runner
	cfg    config.UploadConfig
}

// NewServer creates the API server over the given store and run driver.
func NewServer(st store.Store, runner Runner, cfg config.UploadConfig) *Server {
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 10
	}
	if cfg.MaxDisplayErrors <= 0 {
		cfg.MaxDisplayErrors = 10
	}
	return &Server{store: st, runner: runner, cfg: cfg}
}

// Router builds the chi router with the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", s.handleCreateAnalysis)
			r.Get("/", s.handleListAnalyses)
			r.Get("/stats", s.handleAnalysisStats)
			r.Get("/{id}", s.handleGetAnalysis)
			r.Post("/{id}/run", s.handleRunAnalysis)
			r.Delete("/{id}", s.handleDeleteAnalysis)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Get("/template", s.handleTemplate)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/stats", s.handleSupplierStats)
			r.Get("/analysis/{analysisId}", s.handleListSuppliers)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/analysis/{analysisId}", s.handleListMessages)
			r.Get("/analysis/{analysisId}/type/{type}", s.handleListMessagesByType)
			r.Get("/{id}", s.handleGetMessage)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownerID extracts the caller identity from the X-User-ID header.
func ownerID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultOwner
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
