package domain

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the display locale of the dashboard.
var Locale = language.BrazilianPortuguese

// Unit is appended to production figures in tooltips and popups.
const Unit = "toneladas"

// ParseValue converts a production value to an integer quantity by reading
// its leading integer: an optional sign followed by digits. Whatever follows
// the digits is ignored, so "12.9" and "12abc" are 12 and "1e3" is 1.
// It reports false for missing values, the "-" sentinel and strings that do
// not start with a digit.
func ParseValue(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == NoDataSentinel {
		return 0, false
	}
	end := 0
	if s[0] == '-' || s[0] == '+' {
		end = 1
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatNumber renders a raw production value for display. Missing values
// and sentinels render as "0".
func FormatNumber(raw string) string {
	n, ok := ParseValue(raw)
	if !ok {
		return "0"
	}
	return FormatValue(n)
}

// FormatValue renders n with the dashboard locale's digit grouping.
func FormatValue(n int64) string {
	return message.NewPrinter(Locale).Sprintf("%d", n)
}

// FormatQuantity renders n followed by the production unit.
func FormatQuantity(n int64) string {
	return FormatValue(n) + " " + Unit
}
