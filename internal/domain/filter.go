package domain

// YearOptionCount is the number of years offered in the year selector.
const YearOptionCount = 5

// LatestYear returns pinned when it is positive, otherwise the current
// year of the package clock.
func LatestYear(pinned int) int {
	if pinned > 0 {
		return pinned
	}
	return clock.Now().Year()
}

// YearOptions lists YearOptionCount years in descending order starting at
// latest.
func YearOptions(latest int) []int {
	years := make([]int, YearOptionCount)
	for i := range years {
		years[i] = latest - i
	}
	return years
}
