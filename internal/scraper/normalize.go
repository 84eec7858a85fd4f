package scraper

import (
	"strconv"
	"strings"
)

// ParsePrice converts a displayed price string like "$6,500" into a number.
// Returns nil for empty or unparseable input; a missing price is data, not
// an error.
func ParsePrice(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseMileage converts an odometer string like "120,000" or "85000 mi"
// into an integer. Returns nil for empty or unparseable input.
func ParseMileage(raw string) *int {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "mi")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &value
}

// CleanText collapses runs of whitespace in extracted element text
func CleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
