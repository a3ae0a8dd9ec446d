package dashboard_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/nominatim"
	"github.com/couchcryptid/crop-production-dashboard/internal/chart"
	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
	"github.com/couchcryptid/crop-production-dashboard/internal/observability"
)

// --- mocks ---

type mockSource struct {
	healthErr   error
	records     []domain.ProductionRecord
	fetchErr    error
	cultures    []domain.CultureOption
	culturesErr error
	filters     []domain.Filter
}

func (m *mockSource) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockSource) FetchProduction(_ context.Context, f domain.Filter) ([]domain.ProductionRecord, error) {
	m.filters = append(m.filters, f)
	return m.records, m.fetchErr
}

func (m *mockSource) FetchCultures(context.Context) ([]domain.CultureOption, error) {
	return m.cultures, m.culturesErr
}

// gridResolver places every label at a fixed coordinate.
type gridResolver struct{ calls int }

func (g *gridResolver) Resolve(context.Context, string) (domain.Coordinate, bool) {
	g.calls++
	return domain.Coordinate{Lat: -10 - float64(g.calls%5), Lon: -50 + float64(g.calls%5)}, true
}

type countingGeocoder struct{ calls int }

func (c *countingGeocoder) ForwardGeocode(context.Context, string) (domain.GeocodingResult, error) {
	c.calls++
	return domain.GeocodingResult{Coordinate: domain.Coordinate{Lat: -10, Lon: -50}, Found: true}, nil
}

type mockPublisher struct {
	published []*dashboard.Snapshot
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, s *dashboard.Snapshot) error {
	m.published = append(m.published, s)
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveRecords() []domain.ProductionRecord {
	return []domain.ProductionRecord{
		{Region: "Norte Mato-grossense - MT", Value: "18000000"},
		{Region: "Sudeste Mato-grossense - MT", Value: "-"},
		{Region: "Oeste Paranaense - PR", Value: "4000000"},
		{Region: "Centro Goiano - GO", Value: ""},
		{Region: "Sul Goiano - GO", Value: "9000000"},
	}
}

func cultures() []domain.CultureOption {
	return []domain.CultureOption{
		{ID: "2692", Label: "Arroz (em casca)"},
		{ID: "2711", Label: "Milho (em grão)"},
		{ID: "2713", Label: "Soja (em grão)"},
	}
}

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func newApp(src dashboard.Source, resolver geomap.Resolver, pub dashboard.Publisher, settings dashboard.Settings) (*dashboard.App, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return dashboard.New(src, resolver, pub, discardLogger(), metrics, settings), metrics
}

// --- tests ---

func TestApp_InitialState(t *testing.T) {
	app, _ := newApp(&mockSource{}, &gridResolver{}, nil, dashboard.Settings{})

	assert.Equal(t, dashboard.StatusIdle, app.Status())
	assert.Nil(t, app.Snapshot())
	assert.Nil(t, app.Filters())
	require.ErrorIs(t, app.CheckReadiness(context.Background()), dashboard.ErrNotRendered)
	require.ErrorIs(t, app.WithChart(func(*chart.Chart) error { return nil }), dashboard.ErrNotRendered)
	require.ErrorIs(t, app.WithMap(func(*geomap.View) error { return nil }), dashboard.ErrNotRendered)
}

func TestPopulateFilters(t *testing.T) {
	freezeClock(t)
	app, _ := newApp(&mockSource{cultures: cultures()}, &gridResolver{}, nil, dashboard.Settings{})

	f := app.PopulateFilters(context.Background())

	assert.Equal(t, []int{2026, 2025, 2024, 2023, 2022}, f.Years)
	assert.Equal(t, cultures(), f.Cultures)
	assert.Equal(t, domain.Filter{Year: 2026, Culture: "2692"}, f.Selected)
	assert.Same(t, f, app.Filters())
}

func TestPopulateFilters_PinnedYearAndDefaultCulture(t *testing.T) {
	app, _ := newApp(&mockSource{cultures: cultures()}, &gridResolver{}, nil,
		dashboard.Settings{LatestYear: 2024, DefaultCulture: "2713"})

	f := app.PopulateFilters(context.Background())

	assert.Equal(t, []int{2024, 2023, 2022, 2021, 2020}, f.Years)
	assert.Equal(t, domain.Filter{Year: 2024, Culture: "2713"}, f.Selected)
}

func TestPopulateFilters_CultureFallback(t *testing.T) {
	tests := []struct {
		name string
		src  *mockSource
	}{
		{"fetch error", &mockSource{culturesErr: errors.New("connection refused")}},
		{"empty list", &mockSource{cultures: []domain.CultureOption{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newApp(tt.src, &gridResolver{}, nil, dashboard.Settings{LatestYear: 2024})

			f := app.PopulateFilters(context.Background())

			assert.Equal(t, []domain.CultureOption{{ID: "2713", Label: "Soja (em grão)"}}, f.Cultures)
			assert.Equal(t, "2713", f.Selected.Culture)
		})
	}
}

func TestBootstrap_Healthy(t *testing.T) {
	src := &mockSource{records: liveRecords(), cultures: cultures()}
	app, metrics := newApp(src, &gridResolver{}, nil, dashboard.Settings{LatestYear: 2024, DefaultCulture: "2713"})

	snap := app.Bootstrap(context.Background())

	require.Equal(t, []domain.Filter{{Year: 2024, Culture: "2713"}}, src.filters)
	assert.Equal(t, dashboard.StatusSuccess, snap.Status)
	assert.Equal(t, dashboard.StatusSuccess, app.Status())
	assert.Equal(t, int64(31000000), snap.Total)
	assert.Equal(t, "31.000.000", snap.TotalFormatted)
	assert.Equal(t, 3, snap.Regions)
	assert.Equal(t, "Norte Mato-grossense - MT", snap.Leader)
	assert.Len(t, snap.Top, 3)
	assert.Len(t, snap.Bars, 3)
	assert.Len(t, snap.Markers, 3)
	assert.NotNil(t, snap.Bounds)
	assert.Empty(t, snap.Error)
	require.NoError(t, app.CheckReadiness(context.Background()))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Refreshes.WithLabelValues("live")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.ValidRegions), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.MarkersPlaced), 0)
}

func TestBootstrap_Unhealthy_UsesExampleData(t *testing.T) {
	src := &mockSource{healthErr: errors.New("backend down"), records: liveRecords(), cultures: cultures()}
	app, metrics := newApp(src, &gridResolver{}, nil, dashboard.Settings{})

	snap := app.Bootstrap(context.Background())

	assert.Empty(t, src.filters, "should not fetch production when unhealthy")
	assert.Equal(t, dashboard.StatusFallback, snap.Status)
	assert.Equal(t, "backend down", snap.Error)
	if diff := cmp.Diff(domain.ExampleRecords(), app.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(14289435), snap.Total)
	assert.Equal(t, 10, snap.Regions)
	assert.Equal(t, "Sudoeste Piauiense - PI", snap.Leader)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Refreshes.WithLabelValues("fallback")), 0)
}

func TestApplyFilters_FetchErrorFallsBack(t *testing.T) {
	src := &mockSource{fetchErr: errors.New("api returned 502")}
	app, _ := newApp(src, &gridResolver{}, nil, dashboard.Settings{})

	snap := app.ApplyFilters(context.Background(), domain.Filter{Year: 2023, Culture: "2711"})

	assert.Equal(t, dashboard.StatusFallback, snap.Status)
	assert.Equal(t, domain.Filter{Year: 2023, Culture: "2711"}, snap.Filter)
	if diff := cmp.Diff(domain.ExampleRecords(), app.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFilters_EmptyDataset(t *testing.T) {
	src := &mockSource{records: []domain.ProductionRecord{}}
	app, _ := newApp(src, &gridResolver{}, nil, dashboard.Settings{})

	snap := app.ApplyFilters(context.Background(), domain.Filter{Year: 2024})

	assert.Equal(t, dashboard.StatusSuccess, snap.Status)
	assert.Equal(t, int64(0), snap.Total)
	assert.Equal(t, 0, snap.Regions)
	assert.Equal(t, domain.LeaderPlaceholder, snap.Leader)
	assert.Empty(t, snap.Markers)
	assert.Nil(t, snap.Bounds)
}

func TestApplyFilters_UpdatesSelection(t *testing.T) {
	src := &mockSource{records: liveRecords(), cultures: cultures()}
	app, _ := newApp(src, &gridResolver{}, nil, dashboard.Settings{LatestYear: 2024})
	app.PopulateFilters(context.Background())

	app.ApplyFilters(context.Background(), domain.Filter{Year: 2022, Culture: "2711"})

	assert.Equal(t, domain.Filter{Year: 2022, Culture: "2711"}, app.Filters().Selected)
	assert.Equal(t, []int{2024, 2023, 2022, 2021, 2020}, app.Filters().Years)
}

func TestApplyFilters_KeepsGeocodeCache(t *testing.T) {
	inner := &countingGeocoder{}
	cache := nominatim.NewCache(inner, "Brasil", observability.NewMetricsForTesting(), discardLogger())
	src := &mockSource{records: liveRecords()}
	app, _ := newApp(src, cache, nil, dashboard.Settings{})

	app.ApplyFilters(context.Background(), domain.Filter{Year: 2024, Culture: "2713"})
	app.ApplyFilters(context.Background(), domain.Filter{Year: 2023, Culture: "2713"})

	assert.Equal(t, 3, inner.calls, "second cycle should be served from the cache")
	assert.Equal(t, 3, cache.Len())
}

func TestApplyFilters_ReplacesChartAndMap(t *testing.T) {
	src := &mockSource{records: liveRecords()}
	app, _ := newApp(src, &gridResolver{}, nil, dashboard.Settings{})

	app.ApplyFilters(context.Background(), domain.Filter{Year: 2024})
	var first *chart.Chart
	require.NoError(t, app.WithChart(func(c *chart.Chart) error { first = c; return nil }))
	var firstMap *geomap.View
	require.NoError(t, app.WithMap(func(v *geomap.View) error { firstMap = v; return nil }))

	app.ApplyFilters(context.Background(), domain.Filter{Year: 2023})

	assert.True(t, first.Disposed())
	assert.True(t, firstMap.Disposed())
	require.NoError(t, app.WithChart(func(c *chart.Chart) error {
		assert.NotSame(t, first, c)
		assert.False(t, c.Disposed())
		var buf bytes.Buffer
		return c.Render(&buf)
	}))
}

func TestPublisher(t *testing.T) {
	pub := &mockPublisher{}
	src := &mockSource{records: liveRecords()}
	app, metrics := newApp(src, &gridResolver{}, pub, dashboard.Settings{})

	snap := app.ApplyFilters(context.Background(), domain.Filter{Year: 2024, Culture: "2713"})

	require.Len(t, pub.published, 1)
	assert.Same(t, snap, pub.published[0])
	assert.Equal(t, "2024-2713", snap.Key())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SnapshotsPublished.WithLabelValues("success")), 0)
}

func TestPublisher_ErrorIgnored(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	src := &mockSource{records: liveRecords()}
	app, metrics := newApp(src, &gridResolver{}, pub, dashboard.Settings{})

	snap := app.ApplyFilters(context.Background(), domain.Filter{Year: 2024})

	assert.Equal(t, dashboard.StatusSuccess, snap.Status)
	assert.Same(t, snap, app.Snapshot())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SnapshotsPublished.WithLabelValues("error")), 0)
}

func TestSnapshot_GeneratedAtUsesClock(t *testing.T) {
	freezeClock(t)
	app, _ := newApp(&mockSource{records: liveRecords()}, &gridResolver{}, nil, dashboard.Settings{})

	snap := app.ApplyFilters(context.Background(), domain.Filter{})

	assert.Equal(t, time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), snap.GeneratedAt)
}
