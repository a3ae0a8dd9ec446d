package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/crop-production-dashboard/internal/chart"
	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
)

// Dashboard is the state the handlers read and the render cycle they drive.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Snapshot() *dashboard.Snapshot
	Filters() *dashboard.Filters
	ApplyFilters(ctx context.Context, f domain.Filter) *dashboard.Snapshot
	WithChart(fn func(*chart.Chart) error) error
	WithMap(fn func(*geomap.View) error) error
}

// writeTimeout covers a full render cycle, which geocodes up to ten regions.
const writeTimeout = 2 * time.Minute

// Server exposes the dashboard page, its JSON API, exports, health,
// readiness, and metrics.
type Server struct {
	httpServer *http.Server
	app        Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(addr string, app Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		app:    app,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("GET /chart.png", s.handleChartPNG)
	mux.HandleFunc("GET /apply", s.handleApplyForm)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/filters", s.handleFilters)
	mux.HandleFunc("POST /api/filters", s.handleApplyJSON)
	mux.HandleFunc("GET /api/map.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(app))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
