package domain

import "strings"

// NoDataSentinel is the SIDRA marker for "no production recorded".
const NoDataSentinel = "-"

// labelSeparator splits a region label into region name and state.
const labelSeparator = " - "

// ProductionRecord is one row of the backend's /data/ response.
type ProductionRecord struct {
	Region string `json:"D1N"` // "Region - UF"
	Value  string `json:"V"`   // numeric string, "-" or empty when missing
}

// RegionName returns the part of the label before " - ", or the whole
// label when there is no separator.
func (r ProductionRecord) RegionName() string {
	name, _, _ := strings.Cut(r.Region, labelSeparator)
	return name
}

// State returns the state abbreviation after " - ", or "" when absent.
func (r ProductionRecord) State() string {
	_, state, _ := strings.Cut(r.Region, labelSeparator)
	return state
}

// Coordinate represents a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Filter selects the dataset requested from the backend. Zero values omit
// the corresponding query parameter.
type Filter struct {
	Year    int    `json:"ano,omitempty"`
	Culture string `json:"cultura,omitempty"`
}

// CultureOption is one entry of the culture selector.
type CultureOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
