package domain

// Tier is a color band of the top-ten ranking.
type Tier struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Label  string `json:"label"`
	Swatch int    `json:"swatch"` // legend dot size in px
}

// Tiers lists the ranking bands from first place down.
var Tiers = []Tier{
	{Name: "A", Color: "#FF6B35", Label: "1º lugar", Swatch: 18},
	{Name: "B", Color: "#F39200", Label: "2º - 3º lugar", Swatch: 16},
	{Name: "C", Color: "#FFB84C", Label: "4º - 5º lugar", Swatch: 14},
	{Name: "D", Color: "#A3C586", Label: "6º - 7º lugar", Swatch: 12},
	{Name: "E", Color: "#DDEACB", Label: "8º - 10º lugar", Swatch: 10},
}

// TierFor maps a 0-based rank to its tier. Ranks past the top ten fall in
// the last tier.
func TierFor(rank int) Tier {
	switch {
	case rank <= 0:
		return Tiers[0]
	case rank <= 2:
		return Tiers[1]
	case rank <= 4:
		return Tiers[2]
	case rank <= 6:
		return Tiers[3]
	default:
		return Tiers[4]
	}
}

// Marker size bounds, in pixels of diameter.
const (
	minMarkerSize = 15
	maxMarkerSize = 40
)

// MarkerRadius scales a quantity against the largest one:
// max(15, value/maxValue*40) / 2.
func MarkerRadius(value, maxValue int64) float64 {
	if maxValue <= 0 {
		maxValue = 1
	}
	size := float64(value) / float64(maxValue) * maxMarkerSize
	return max(minMarkerSize, size) / 2
}

// Share returns value as a percentage of total, or 0 when total is zero.
func Share(value, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(value) / float64(total) * 100
}

// RankedEntry is an Entry placed in the top-ten ranking.
type RankedEntry struct {
	Entry
	Rank      int     `json:"rank"` // 0-based
	Tier      Tier    `json:"tier"`
	Radius    float64 `json:"radius"`
	Share     float64 `json:"share"` // percent of the top-ten sum
	Formatted string  `json:"formatted"`
}

// Position is the 1-based rank shown to users.
func (r RankedEntry) Position() int {
	return r.Rank + 1
}

// Rank derives the per-entry presentation of an already ordered slice.
func Rank(top []Entry) []RankedEntry {
	if len(top) == 0 {
		return nil
	}
	maxValue := top[0].Quantity
	var sum int64
	for _, e := range top {
		sum += e.Quantity
	}

	ranked := make([]RankedEntry, len(top))
	for i, e := range top {
		ranked[i] = RankedEntry{
			Entry:     e,
			Rank:      i,
			Tier:      TierFor(i),
			Radius:    MarkerRadius(e.Quantity, maxValue),
			Share:     Share(e.Quantity, sum),
			Formatted: FormatValue(e.Quantity),
		}
	}
	return ranked
}
