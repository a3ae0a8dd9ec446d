// Package dashboard runs the fetch-aggregate-render cycle behind the web page.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crop-production-dashboard/internal/chart"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
	"github.com/couchcryptid/crop-production-dashboard/internal/observability"
)

// ErrNotRendered is returned when no render cycle has completed yet.
var ErrNotRendered = errors.New("dashboard has not been rendered yet")

// Source is the production data backend.
type Source interface {
	HealthCheck(ctx context.Context) error
	FetchProduction(ctx context.Context, f domain.Filter) ([]domain.ProductionRecord, error)
	FetchCultures(ctx context.Context) ([]domain.CultureOption, error)
}

// Publisher receives every completed snapshot.
type Publisher interface {
	Publish(ctx context.Context, s *Snapshot) error
}

// Settings tune filter defaults.
type Settings struct {
	LatestYear     int    // 0 uses the clock's current year
	DefaultCulture string // preselected when offered by the backend
}

// App holds the dashboard state. Render cycles run one at a time; readers
// use the latest Snapshot.
type App struct {
	source    Source
	resolver  geomap.Resolver
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	settings  Settings

	mu      sync.Mutex // serializes render cycles
	records []domain.ProductionRecord

	chart slot[*chart.Chart]
	geo   slot[*geomap.View]

	status   atomic.Value // Status
	filters  atomic.Pointer[Filters]
	snapshot atomic.Pointer[Snapshot]
}

// New creates an App. publisher may be nil.
func New(source Source, resolver geomap.Resolver, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, settings Settings) *App {
	a := &App{
		source:    source,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		settings:  settings,
	}
	a.status.Store(StatusIdle)
	return a
}

// Status returns the state of the render cycle.
func (a *App) Status() Status {
	return a.status.Load().(Status)
}

// Snapshot returns the latest completed render, or nil before the first one.
func (a *App) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

// Filters returns the filter options, or nil before PopulateFilters.
func (a *App) Filters() *Filters {
	return a.filters.Load()
}

// Records returns a copy of the dataset behind the current render.
func (a *App) Records() []domain.ProductionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.records)
}

// CheckReadiness returns nil once a render cycle has completed.
func (a *App) CheckReadiness(_ context.Context) error {
	if a.snapshot.Load() == nil {
		return ErrNotRendered
	}
	return nil
}

// WithChart calls fn with the current chart while it cannot be replaced.
// While a render cycle has the slot empty, fn gets a throwaway chart built
// from the latest snapshot.
func (a *App) WithChart(fn func(*chart.Chart) error) error {
	if ok, err := a.chart.With(fn); ok {
		return err
	}
	snap := a.snapshot.Load()
	if snap == nil {
		return ErrNotRendered
	}
	c := chart.Build(snap.Entries())
	defer c.Dispose()
	return fn(c)
}

// WithMap calls fn with the current map view while it cannot be replaced.
// While a render cycle has the slot empty, fn gets a throwaway view of the
// latest snapshot's markers.
func (a *App) WithMap(fn func(*geomap.View) error) error {
	if ok, err := a.geo.With(fn); ok {
		return err
	}
	snap := a.snapshot.Load()
	if snap == nil {
		return ErrNotRendered
	}
	v := geomap.FromMarkers(slices.Clone(snap.Markers), snap.Bounds)
	defer v.Dispose()
	return fn(v)
}

// PopulateFilters builds the year and culture options. A culture list that
// cannot be fetched is replaced by the default culture.
func (a *App) PopulateFilters(ctx context.Context) *Filters {
	years := domain.YearOptions(domain.LatestYear(a.settings.LatestYear))

	cultures, err := a.source.FetchCultures(ctx)
	switch {
	case err != nil:
		a.logger.Warn("culture options unavailable, using default", "error", err)
		cultures = []domain.CultureOption{domain.DefaultCulture}
	case len(cultures) == 0:
		a.logger.Warn("backend returned no cultures, using default")
		cultures = []domain.CultureOption{domain.DefaultCulture}
	}

	f := &Filters{
		Years:    years,
		Cultures: cultures,
		Selected: domain.Filter{Year: years[0], Culture: a.pickCulture(cultures)},
	}
	a.filters.Store(f)
	return f
}

func (a *App) pickCulture(cultures []domain.CultureOption) string {
	for _, c := range cultures {
		if c.ID == a.settings.DefaultCulture {
			return c.ID
		}
	}
	return cultures[0].ID
}

// Bootstrap populates the filters, probes the backend and renders either the
// selected live dataset or the example dataset.
func (a *App) Bootstrap(ctx context.Context) *Snapshot {
	filters := a.PopulateFilters(ctx)

	if err := a.source.HealthCheck(ctx); err != nil {
		a.logger.Warn("backend unavailable, using example data", "error", err)
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.render(ctx, filters.Selected, domain.ExampleRecords(), StatusFallback, err)
	}

	a.logger.Info("backend reachable, fetching data")
	return a.ApplyFilters(ctx, filters.Selected)
}

// ApplyFilters fetches the dataset for f and renders it. On any fetch error
// the example dataset is rendered instead. The geocode cache is kept.
func (a *App) ApplyFilters(ctx context.Context, f domain.Filter) *Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.status.Store(StatusLoading)
	a.selectFilter(f)
	a.logger.Info("applying filters", "ano", f.Year, "cultura", f.Culture)

	records, err := a.source.FetchProduction(ctx, f)
	if err != nil {
		a.logger.Warn("fetch production failed, using example data", "error", err)
		return a.render(ctx, f, domain.ExampleRecords(), StatusFallback, err)
	}
	return a.render(ctx, f, records, StatusSuccess, nil)
}

func (a *App) selectFilter(f domain.Filter) {
	cur := a.filters.Load()
	if cur == nil {
		return
	}
	next := *cur
	next.Selected = f
	a.filters.Store(&next)
}

// render aggregates records, replaces the chart and the map and stores the
// new snapshot. Callers hold a.mu.
func (a *App) render(ctx context.Context, f domain.Filter, records []domain.ProductionRecord, status Status, cause error) *Snapshot {
	start := time.Now()
	a.status.Store(StatusLoading)
	a.records = records

	summary := domain.Aggregate(records)
	ranked := domain.Rank(summary.Top)

	var c *chart.Chart
	a.chart.Replace(func() *chart.Chart {
		c = chart.Build(summary.Top)
		return c
	})

	var v *geomap.View
	a.geo.Replace(func() *geomap.View {
		v = geomap.Build(ctx, ranked, a.resolver, a.logger)
		return v
	})

	snap := &Snapshot{
		Status:         status,
		Filter:         f,
		GeneratedAt:    domain.Now(),
		Total:          summary.Total,
		TotalFormatted: domain.FormatValue(summary.Total),
		Regions:        summary.Count,
		Leader:         summary.LeaderLabel(),
		Top:            ranked,
		Bars:           slices.Clone(c.Bars()),
		Markers:        slices.Clone(v.Markers),
		Bounds:         v.Bounds,
	}
	if cause != nil {
		snap.Error = cause.Error()
	}

	a.snapshot.Store(snap)
	a.status.Store(status)

	a.metrics.Refreshes.WithLabelValues(sourceLabel(status)).Inc()
	a.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	a.metrics.ValidRegions.Set(float64(summary.Count))
	a.metrics.MarkersPlaced.Set(float64(len(snap.Markers)))

	a.logger.Info("dashboard rendered",
		"status", status,
		"regions", summary.Count,
		"total", summary.Total,
		"leader", snap.Leader,
		"markers", len(snap.Markers),
		"duration", time.Since(start),
	)

	a.publish(ctx, snap)
	return snap
}

func (a *App) publish(ctx context.Context, snap *Snapshot) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, snap); err != nil {
		a.metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		a.logger.Warn("publish snapshot failed", "error", err, "key", snap.Key())
		return
	}
	a.metrics.SnapshotsPublished.WithLabelValues("success").Inc()
}

func sourceLabel(s Status) string {
	if s == StatusFallback {
		return "fallback"
	}
	return "live"
}
