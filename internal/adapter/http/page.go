package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type pageData struct {
	Snapshot *dashboard.Snapshot
	Filters  *dashboard.Filters
	Unit     string
	Fallback bool
	MapJSON  template.JS
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	snap := s.app.Snapshot()
	if snap == nil {
		s.writeError(w, dashboard.ErrNotRendered)
		return
	}

	// The map comes from the same snapshot as the cards so a render cycle
	// in progress cannot leave the page half old and half new.
	mapJSON, err := json.Marshal(geomap.FromMarkers(snap.Markers, snap.Bounds))
	if err != nil {
		s.writeError(w, err)
		return
	}

	filters := s.app.Filters()
	if filters == nil {
		filters = &dashboard.Filters{}
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, pageData{
		Snapshot: snap,
		Filters:  filters,
		Unit:     domain.Unit,
		Fallback: snap.Status == dashboard.StatusFallback,
		// encoding/json escapes <, > and & so the popup HTML cannot close the script.
		MapJSON: template.JS(mapJSON), //nolint:gosec // produced by json.Marshal
	})
	s.writeBuffer(w, "text/html; charset=utf-8", &buf, err)
}
