package geomap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
)

// fakeResolver answers from a fixed table and records the lookup order.
type fakeResolver struct {
	coords map[string]domain.Coordinate
	calls  []string
}

func (f *fakeResolver) Resolve(_ context.Context, label string) (domain.Coordinate, bool) {
	f.calls = append(f.calls, label)
	c, ok := f.coords[label]
	return c, ok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rankedExample() []domain.RankedEntry {
	return domain.Rank(domain.Aggregate(domain.ExampleRecords()).Top)
}

func TestBuild_ResolvesSequentiallyInRankOrder(t *testing.T) {
	ranked := rankedExample()
	r := &fakeResolver{coords: map[string]domain.Coordinate{}}

	Build(context.Background(), ranked, r, discardLogger())

	want := make([]string, len(ranked))
	for i, e := range ranked {
		want[i] = e.Region
	}
	assert.Equal(t, want, r.calls)
}

func TestBuild_SkipsUnresolvedRegions(t *testing.T) {
	ranked := rankedExample()
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -8.5, Lon: -44.0},
		"Sudeste Paraense - PA":   {Lat: -6.0, Lon: -50.0},
	}}

	v := Build(context.Background(), ranked, r, discardLogger())

	require.Len(t, v.Markers, 2)
	first := v.Markers[0]
	assert.Equal(t, "Sudoeste Piauiense - PI", first.Label)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "#FF6B35", first.Style.FillColor)
	assert.InDelta(t, 20.0, first.Style.Radius, 1e-9)

	second := v.Markers[1]
	assert.Equal(t, 4, second.Position)
	assert.Equal(t, "#FFB84C", second.Tier.Color)
	assert.Len(t, v.Legend, 5)
}

func TestBuild_HoverStyle(t *testing.T) {
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -8.5, Lon: -44.0},
	}}
	v := Build(context.Background(), rankedExample(), r, discardLogger())
	require.Len(t, v.Markers, 1)

	m := v.Markers[0]
	assert.Equal(t, 2, m.Style.Weight)
	assert.InDelta(t, 0.8, m.Style.FillOpacity, 1e-9)
	assert.Equal(t, 4, m.Hover.Weight)
	assert.InDelta(t, 1.0, m.Hover.FillOpacity, 1e-9)
	assert.InDelta(t, m.Style.Radius+2, m.Hover.Radius, 1e-9)
}

func TestBuild_Popup(t *testing.T) {
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -8.5, Lon: -44.0},
	}}
	v := Build(context.Background(), rankedExample(), r, discardLogger())
	require.Len(t, v.Markers, 1)

	popup := v.Markers[0].Popup
	assert.Contains(t, popup, "Sudoeste Piauiense - PI")
	assert.Contains(t, popup, "#1 no ranking")
	assert.Contains(t, popup, "2.994.156 toneladas")
	// 2994156 / 14289435 of the top-ten sum
	assert.Contains(t, popup, "21.0% do total")
}

func TestBuild_NoMarkersNoBounds(t *testing.T) {
	v := Build(context.Background(), rankedExample(), &fakeResolver{}, discardLogger())

	assert.Empty(t, v.Markers)
	assert.Nil(t, v.Bounds)
	assert.Len(t, v.Legend, 5)
	assert.Equal(t, DefaultCenter, v.Center)
	assert.Equal(t, DefaultZoom, v.Zoom)
}

func TestBuild_EmptyRanking(t *testing.T) {
	v := Build(context.Background(), nil, &fakeResolver{}, discardLogger())
	assert.Empty(t, v.Markers)
	assert.Nil(t, v.Bounds)
	assert.Len(t, v.Legend, 5)
}

func TestBuild_BoundsPadded(t *testing.T) {
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -10, Lon: -50},
		"Sul Maranhense - MA":     {Lat: 0, Lon: -40},
	}}
	v := Build(context.Background(), rankedExample(), r, discardLogger())

	require.NotNil(t, v.Bounds)
	assert.InDelta(t, -11.0, v.Bounds.SouthWest.Lat, 1e-9)
	assert.InDelta(t, -51.0, v.Bounds.SouthWest.Lon, 1e-9)
	assert.InDelta(t, 1.0, v.Bounds.NorthEast.Lat, 1e-9)
	assert.InDelta(t, -39.0, v.Bounds.NorthEast.Lon, 1e-9)
	assert.Equal(t, FitDelayMillis, v.FitDelay)
}

func TestGeoJSON(t *testing.T) {
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -8.5, Lon: -44.0},
		"Sul Maranhense - MA":     {Lat: -7.5, Lon: -46.0},
	}}
	v := Build(context.Background(), rankedExample(), r, discardLogger())

	raw, err := v.GeoJSON()
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, len(v.Markers))
	f := doc.Features[0]
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{-44.0, -8.5}, f.Geometry.Coordinates)
	assert.Equal(t, "Sudoeste Piauiense - PI", f.Properties["label"])
	assert.Equal(t, "A", f.Properties["tier"])
}

func TestDispose(t *testing.T) {
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -8.5, Lon: -44.0},
	}}
	v := Build(context.Background(), rankedExample(), r, discardLogger())
	v.Dispose()

	assert.True(t, v.Disposed())
	assert.Empty(t, v.Markers)
	assert.Nil(t, v.Bounds)
	_, err := v.GeoJSON()
	assert.Error(t, err)
}

func TestFromMarkers_MatchesBuild(t *testing.T) {
	r := &fakeResolver{coords: map[string]domain.Coordinate{
		"Sudoeste Piauiense - PI": {Lat: -8.5, Lon: -44.0},
		"Sul Maranhense - MA":     {Lat: -7.5, Lon: -46.0},
	}}
	built := Build(context.Background(), rankedExample(), r, discardLogger())

	got := FromMarkers(built.Markers, built.Bounds)

	want, err := json.Marshal(built)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(gotJSON))
}
