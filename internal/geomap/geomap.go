// Package geomap places the top-ten producing regions on a Leaflet map.
//
// Build resolves each region's coordinate one at a time, in rank order, and
// returns a MapView that the dashboard page draws with Leaflet and that can
// be exported as GeoJSON.
package geomap

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
)

// Initial view and tile layer.
const (
	DefaultZoom = 4
	TileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	Attribution = "© OpenStreetMap contributors"
)

// DefaultCenter is the initial map center, roughly the middle of Brazil.
var DefaultCenter = domain.Coordinate{Lat: -15, Lon: -50}

// BoundsPadding grows the fitted bounds by this fraction on each side.
const BoundsPadding = 0.1

// FitDelayMillis defers fitting the bounds until the markers are drawn.
const FitDelayMillis = 1000

// LegendTitle heads the tier legend.
const LegendTitle = "TOP 10 Produtores"

// Marker stroke.
const (
	strokeColor  = "#ffffff"
	strokeWeight = 2
	fillOpacity  = 0.8
)

// Resolver looks up a region label's coordinate.
type Resolver interface {
	Resolve(ctx context.Context, label string) (domain.Coordinate, bool)
}

// Style is the Leaflet path style of a circle marker.
type Style struct {
	Radius      float64 `json:"radius"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
}

// Marker is one placed region.
type Marker struct {
	domain.Coordinate
	Label     string      `json:"label"`
	Position  int         `json:"position"` // 1-based rank
	Value     int64       `json:"value"`
	Formatted string      `json:"formatted"`
	Share     float64     `json:"share"`
	Tier      domain.Tier `json:"tier"`
	Style     Style       `json:"style"`
	Hover     Style       `json:"hover"`
	Popup     string      `json:"popup"` // HTML
}

// Bounds is a lat/lon rectangle.
type Bounds struct {
	SouthWest domain.Coordinate `json:"southWest"`
	NorthEast domain.Coordinate `json:"northEast"`
}

// Pad grows the rectangle by ratio of its height and width on every side.
func (b Bounds) Pad(ratio float64) Bounds {
	dLat := (b.NorthEast.Lat - b.SouthWest.Lat) * ratio
	dLon := (b.NorthEast.Lon - b.SouthWest.Lon) * ratio
	return Bounds{
		SouthWest: domain.Coordinate{Lat: b.SouthWest.Lat - dLat, Lon: b.SouthWest.Lon - dLon},
		NorthEast: domain.Coordinate{Lat: b.NorthEast.Lat + dLat, Lon: b.NorthEast.Lon + dLon},
	}
}

// View is one map instance.
type View struct {
	Center      domain.Coordinate `json:"center"`
	Zoom        int               `json:"zoom"`
	TileURL     string            `json:"tileURL"`
	Attribution string            `json:"attribution"`
	Markers     []Marker          `json:"markers"`
	LegendTitle string            `json:"legendTitle"`
	Legend      []domain.Tier     `json:"legend"`
	Bounds      *Bounds           `json:"bounds,omitempty"` // nil when no marker was placed
	FitDelay    int               `json:"fitDelay"`         // milliseconds

	disposed bool
}

// Build places a marker for every ranked entry whose coordinate resolves.
// Entries are resolved sequentially, in order; unresolved ones are skipped.
func Build(ctx context.Context, ranked []domain.RankedEntry, resolver Resolver, logger *slog.Logger) *View {
	v := FromMarkers(make([]Marker, 0, len(ranked)), nil)

	for _, e := range ranked {
		coord, ok := resolver.Resolve(ctx, e.Region)
		if !ok {
			logger.Debug("region not placed", "region", e.Region, "position", e.Position())
			continue
		}
		v.Markers = append(v.Markers, newMarker(e, coord))
	}

	if len(v.Markers) > 0 {
		b := boundsOf(v.Markers).Pad(BoundsPadding)
		v.Bounds = &b
	}
	return v
}

// FromMarkers wraps already placed markers in a view with the default
// center, tiles and legend.
func FromMarkers(markers []Marker, bounds *Bounds) *View {
	return &View{
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		TileURL:     TileURL,
		Attribution: Attribution,
		Markers:     markers,
		LegendTitle: LegendTitle,
		Legend:      domain.Tiers,
		Bounds:      bounds,
		FitDelay:    FitDelayMillis,
	}
}

// Dispose drops the view's markers.
func (v *View) Dispose() {
	v.Markers = nil
	v.Bounds = nil
	v.disposed = true
}

// Disposed reports whether Dispose has been called.
func (v *View) Disposed() bool {
	return v.disposed
}

func newMarker(e domain.RankedEntry, coord domain.Coordinate) Marker {
	base := Style{
		Radius:      e.Radius,
		Weight:      strokeWeight,
		FillOpacity: fillOpacity,
		FillColor:   e.Tier.Color,
		Color:       strokeColor,
	}
	hover := base
	hover.Radius += 2
	hover.Weight = 4
	hover.FillOpacity = 1

	m := Marker{
		Coordinate: coord,
		Label:      e.Region,
		Position:   e.Position(),
		Value:      e.Quantity,
		Formatted:  e.Formatted,
		Share:      e.Share,
		Tier:       e.Tier,
		Style:      base,
		Hover:      hover,
	}
	m.Popup = popupHTML(m)
	return m
}

func boundsOf(markers []Marker) Bounds {
	b := Bounds{SouthWest: markers[0].Coordinate, NorthEast: markers[0].Coordinate}
	for _, m := range markers[1:] {
		b.SouthWest.Lat = min(b.SouthWest.Lat, m.Lat)
		b.SouthWest.Lon = min(b.SouthWest.Lon, m.Lon)
		b.NorthEast.Lat = max(b.NorthEast.Lat, m.Lat)
		b.NorthEast.Lon = max(b.NorthEast.Lon, m.Lon)
	}
	return b
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<div class="popup">` +
		`<h4>{{.Label}}</h4>` +
		`<div><span class="rank" style="background: {{.Tier.Color}}">#{{.Position}} no ranking</span></div>` +
		`<p class="value">{{.Formatted}} ` + domain.Unit + `</p>` +
		`<p class="share">{{printf "%.1f" .Share}}% do total</p>` +
		`</div>`))

func popupHTML(m Marker) string {
	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, m); err != nil {
		return template.HTMLEscapeString(m.Label)
	}
	return buf.String()
}
