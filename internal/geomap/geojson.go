package geomap

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection converts the placed markers to GeoJSON points.
func (v *View) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range v.Markers {
		f := geojson.NewPointFeature([]float64{m.Lon, m.Lat})
		f.SetProperty("label", m.Label)
		f.SetProperty("position", m.Position)
		f.SetProperty("value", m.Value)
		f.SetProperty("formatted", m.Formatted)
		f.SetProperty("share", m.Share)
		f.SetProperty("tier", m.Tier.Name)
		f.SetProperty("color", m.Tier.Color)
		f.SetProperty("radius", m.Style.Radius)
		fc.AddFeature(f)
	}
	return fc
}

// GeoJSON encodes the markers as a FeatureCollection document.
func (v *View) GeoJSON() ([]byte, error) {
	if v.disposed {
		return nil, fmt.Errorf("geojson: map view disposed")
	}
	b, err := v.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return b, nil
}
