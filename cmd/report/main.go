// Command report renders the dashboard once and writes its artifacts to a
// directory: the chart as PNG, the ranking workbook and the placed regions
// as GeoJSON. It reads the same environment as the dashboard service.
//
// Usage:
//
//	go run ./cmd/report -out ./report -ano 2024 -cultura 2713
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/agroapi"
	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/excel"
	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/nominatim"
	"github.com/couchcryptid/crop-production-dashboard/internal/chart"
	"github.com/couchcryptid/crop-production-dashboard/internal/config"
	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/domain"
	"github.com/couchcryptid/crop-production-dashboard/internal/geomap"
	"github.com/couchcryptid/crop-production-dashboard/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "directory to write chart.png, ranking.xlsx and regions.geojson")
	year := flag.Int("ano", 0, "year to fetch (default: the selected filter)")
	culture := flag.String("cultura", "", "culture id to fetch (default: the selected filter)")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := agroapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)
	geocoder := nominatim.NewClient(cfg.GeocoderURL, cfg.GeocoderCountryCode, cfg.GeocoderUserAgent,
		cfg.GeocoderTimeout, metrics, logger)
	cache := nominatim.NewCache(geocoder, cfg.GeocoderCountry, metrics, logger)

	app := dashboard.New(source, cache, nil, logger, metrics, dashboard.Settings{
		LatestYear:     cfg.LatestYear,
		DefaultCulture: cfg.DefaultCulture,
	})

	ctx := context.Background()
	snap := render(ctx, app, domain.Filter{Year: *year, Culture: *culture})
	log.Printf("rendered %s: status=%s regions=%d leader=%q", snap.Key(), snap.Status, snap.Regions, snap.Leader)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return writeArtifacts(app, snap, *outDir)
}

// render bootstraps like the page does. A filter given on the command line
// is applied on top of the default selection instead.
func render(ctx context.Context, app *dashboard.App, override domain.Filter) *dashboard.Snapshot {
	if override == (domain.Filter{}) {
		return app.Bootstrap(ctx)
	}
	f := app.PopulateFilters(ctx).Selected
	if override.Year != 0 {
		f.Year = override.Year
	}
	if override.Culture != "" {
		f.Culture = override.Culture
	}
	return app.ApplyFilters(ctx, f)
}

func writeArtifacts(app *dashboard.App, snap *dashboard.Snapshot, dir string) error {
	var png bytes.Buffer
	if err := app.WithChart(func(c *chart.Chart) error { return c.WritePNG(&png) }); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "chart.png"), png.Bytes()); err != nil {
		return err
	}

	var xlsx bytes.Buffer
	if err := excel.WriteWorkbook(&xlsx, snap); err != nil {
		return fmt.Errorf("render workbook: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "ranking.xlsx"), xlsx.Bytes()); err != nil {
		return err
	}

	var geo []byte
	if err := app.WithMap(func(v *geomap.View) error {
		var err error
		geo, err = v.GeoJSON()
		return err
	}); err != nil {
		return fmt.Errorf("render geojson: %w", err)
	}
	return writeFile(filepath.Join(dir, "regions.geojson"), geo)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("wrote %s (%d bytes)", path, len(data))
	return nil
}
