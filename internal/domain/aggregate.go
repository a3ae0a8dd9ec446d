package domain

import (
	"cmp"
	"slices"
)

// TopN is the number of regions shown in the chart and on the map.
const TopN = 10

// LeaderPlaceholder is displayed when no record has a valid value.
const LeaderPlaceholder = "N/A"

// Entry is a record whose value parsed to a positive quantity.
type Entry struct {
	ProductionRecord
	Quantity int64 `json:"quantity"`
}

// Summary is the aggregate view of one dataset.
type Summary struct {
	Valid  []Entry // descending by Quantity, ties in input order
	Total  int64
	Count  int
	Leader *Entry // nil when there are no valid records
	Top    []Entry
}

// Aggregate filters out records without a positive numeric value, sorts the
// rest by descending quantity and derives the dashboard figures. The input
// slice is not modified.
func Aggregate(records []ProductionRecord) Summary {
	valid := make([]Entry, 0, len(records))
	for _, r := range records {
		q, ok := ParseValue(r.Value)
		if !ok || q <= 0 {
			continue
		}
		valid = append(valid, Entry{ProductionRecord: r, Quantity: q})
	}

	slices.SortStableFunc(valid, func(a, b Entry) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})

	s := Summary{
		Valid: valid,
		Count: len(valid),
		Top:   valid[:min(TopN, len(valid))],
	}
	for _, e := range valid {
		s.Total += e.Quantity
	}
	if len(valid) > 0 {
		s.Leader = &valid[0]
	}
	return s
}

// LeaderLabel returns the leader's region label or the placeholder.
func (s Summary) LeaderLabel() string {
	if s.Leader == nil {
		return LeaderPlaceholder
	}
	return s.Leader.Region
}

// TopTotal sums the quantities of the top entries.
func (s Summary) TopTotal() int64 {
	var sum int64
	for _, e := range s.Top {
		sum += e.Quantity
	}
	return sum
}
