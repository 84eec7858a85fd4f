package scraper

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"$6,500", floatPtr(6500)},
		{"6500", floatPtr(6500)},
		{" $1,234,567 ", floatPtr(1234567)},
		{"$950.50", floatPtr(950.50)},
		{"$0", floatPtr(0)},
		{"", nil},
		{"   ", nil},
		{"free", nil},
		{"$contact seller", nil},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.input)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, *got, *tt.want)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestParseMileage(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"120,000", intPtr(120000)},
		{"85000 mi", intPtr(85000)},
		{"42", intPtr(42)},
		{"", nil},
		{"low miles", nil},
		{"120k", nil},
	}

	for _, tt := range tests {
		got := ParseMileage(tt.input)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("ParseMileage(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("ParseMileage(%q) = %d, want %d", tt.input, *got, *tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  2012   Honda\n\tCivic "); got != "2012 Honda Civic" {
		t.Errorf("CleanText = %q", got)
	}
}
