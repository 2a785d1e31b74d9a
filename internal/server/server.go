// Package server exposes comparisons and the report archive over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/huangsam/datacompare/core"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/internal/iocache"
	"github.com/huangsam/datacompare/internal/telemetry"
	"github.com/huangsam/datacompare/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds the graceful shutdown once the serve context is done.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP API in front of the comparison engine.
type Server struct {
	router *chi.Mux
	cfg    *contract.Config
	mgr    contract.StoreManager
	srv    *http.Server
}

// compareResponse is the body of a successful /api/compare call.
type compareResponse struct {
	Variants     []schema.VariantParams `json:"variants"`
	RowsCompared int                    `json:"rows_compared"`
	Report       *schema.Table          `json:"report"`
}

// NewServer creates the HTTP server for cfg without starting it.
func NewServer(cfg *contract.Config, mgr contract.StoreManager) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		mgr:    mgr,
	}
	s.setupRoutes()
	s.srv = &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(telemetry.Middleware)
	if len(s.cfg.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/compare", s.handleCompare)
		r.Get("/reports", s.handleListReports)
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		contract.Logger().Info("Starting HTTP server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	contract.Logger().Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// ExecuteServe runs the HTTP API. It serves as the main entry point for the 'serve' command.
func ExecuteServe(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	return NewServer(cfg, mgr).Run(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sel, err := contract.ParseReportSelection(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := contract.ParseCompareRequest(query)

	session, err := core.NewSession(s.cfg, s.mgr, "http")
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	table, result, err := session.Compare(r.Context(), sel, req)
	if err != nil {
		contract.Logger().Debug("Comparison request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", sel.Method,
			"error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	defer table.Release()

	writeJSON(w, http.StatusOK, compareResponse{
		Variants:     result.Variants,
		RowsCompared: result.RowsCompared,
		Report:       table,
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	store := s.mgr.GetReportStore()
	if store == nil {
		writeError(w, statusForError(core.ErrNoReportStore), core.ErrNoReportStore.Error())
		return
	}

	siteID := 0
	if raw := r.URL.Query().Get(schema.ParamIDSite); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid "+schema.ParamIDSite+" "+strconv.Quote(raw))
			return
		}
		siteID = parsed
	}

	reports, err := store.ListReports(r.Context(), siteID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []schema.ReportSummary{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// statusForError maps engine and archive errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrUnsupportedReport), errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrVariantFetch):
		return http.StatusBadGateway
	case errors.Is(err, iocache.ErrUnknownMethod), errors.Is(err, iocache.ErrInvalidSite):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoReportStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		contract.Logger().Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
