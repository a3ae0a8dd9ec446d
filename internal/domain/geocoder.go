package domain

import (
	"context"
	"fmt"
	"strings"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Coordinate
	DisplayName string
	Found       bool // false when the provider returned no match
}

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	// ForwardGeocode looks up a single best match for query.
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
}

// SearchQuery turns a region label into a geocoder query:
// "Region - UF" becomes "Region, UF, <country>" and a label without the
// separator becomes "Label, <country>". Segments after the second are
// dropped.
func SearchQuery(label, country string) string {
	parts := strings.Split(label, labelSeparator)
	if len(parts) < 2 {
		return fmt.Sprintf("%s, %s", label, country)
	}
	return fmt.Sprintf("%s, %s, %s", parts[0], parts[1], country)
}
