package dashboard

import (
	"fmt"
	"time"

	"github.com/couchcryptid/crop-production-dashboard/internal/chart"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
)

// Status is the state of the render cycle.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusSuccess  Status = "success"  // live data rendered
	StatusFallback Status = "fallback" // example data rendered
)

// Snapshot is the immutable result of one render cycle. Handlers read it
// without locking.
type Snapshot struct {
	Status         Status               `json:"status"`
	Filter         domain.Filter        `json:"filter"`
	GeneratedAt    time.Time            `json:"generatedAt"`
	Total          int64                `json:"total"`
	TotalFormatted string               `json:"totalFormatted"`
	Regions        int                  `json:"regions"`
	Leader         string               `json:"leader"`
	Top            []domain.RankedEntry `json:"top"`
	Bars           []chart.Bar          `json:"bars"`
	Markers        []geomap.Marker      `json:"markers"`
	Bounds         *geomap.Bounds       `json:"bounds,omitempty"`
	Error          string               `json:"error,omitempty"` // why live data was not used
}

// Key identifies the dataset the snapshot was rendered for.
func (s *Snapshot) Key() string {
	return FilterKey(s.Filter)
}

// FilterKey formats a filter as "<year>-<culture>".
func FilterKey(f domain.Filter) string {
	return fmt.Sprintf("%d-%s", f.Year, f.Culture)
}

// Filters are the options offered by the filter form and the current
// selection.
type Filters struct {
	Years    []int                  `json:"years"`
	Cultures []domain.CultureOption `json:"cultures"`
	Selected domain.Filter          `json:"selected"`
}

// Entries returns the ranked regions as plain entries, in rank order.
func (s *Snapshot) Entries() []domain.Entry {
	out := make([]domain.Entry, len(s.Top))
	for i, r := range s.Top {
		out[i] = r.Entry
	}
	return out
}
