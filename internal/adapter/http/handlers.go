package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/excel"
	"github.com/couchcryptid/crop-production-dashboard/internal/chart"
	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
)

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := s.app.WithChart(func(c *chart.Chart) error { return c.Render(&buf) })
	s.writeBuffer(w, "text/html; charset=utf-8", &buf, err)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := s.app.WithChart(func(c *chart.Chart) error { return c.WritePNG(&buf) })
	s.writeBuffer(w, "image/png", &buf, err)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := s.app.WithMap(func(v *geomap.View) error {
		b, err := v.GeoJSON()
		if err != nil {
			return err
		}
		_, err = buf.Write(b)
		return err
	})
	s.writeBuffer(w, "application/geo+json", &buf, err)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	snap := s.app.Snapshot()
	if snap == nil {
		s.writeError(w, dashboard.ErrNotRendered)
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteWorkbook(&buf, snap); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="producao-%s.xlsx"`, snap.Key()))
	s.writeBuffer(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", &buf, nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	snap := s.app.Snapshot()
	if snap == nil {
		s.writeError(w, dashboard.ErrNotRendered)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	f := s.app.Filters()
	if f == nil {
		s.writeError(w, dashboard.ErrNotRendered)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, f)
}

// handleApplyJSON accepts {"ano": 2024, "cultura": "2713"} and returns the
// new snapshot.
func (s *Server) handleApplyJSON(w http.ResponseWriter, r *http.Request) {
	var f domain.Filter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid filter: " + err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.apply(r.Context(), f))
}

// handleApplyForm serves the page's filter form and redirects back to it.
func (s *Server) handleApplyForm(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilterQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.apply(r.Context(), f)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// apply runs a render cycle that outlives a disconnecting client, so a
// dropped request cannot turn into a fallback render.
func (s *Server) apply(ctx context.Context, f domain.Filter) *dashboard.Snapshot {
	return s.app.ApplyFilters(context.WithoutCancel(ctx), f)
}

func parseFilterQuery(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{Culture: q.Get("cultura")}
	if raw := q.Get("ano"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return domain.Filter{}, fmt.Errorf("invalid ano %q", raw)
		}
		f.Year = year
	}
	return f, nil
}

func (s *Server) writeBuffer(w http.ResponseWriter, contentType string, buf *bytes.Buffer, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write response failed", "error", err)
	}
}

// writeError maps "nothing rendered yet" to 503 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrNotRendered) {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Error("request failed", "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
