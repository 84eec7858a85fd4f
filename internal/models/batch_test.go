package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBatchOutcomeSummaryTruncation(t *testing.T) {
	b := &BatchOutcome{ID: "batch-1", CategoryURL: "https://example.org/search/cta"}
	for i := 0; i < 8; i++ {
		b.RecordError(fmt.Sprintf("https://example.org/d/item-%d.html", i), errors.New("render timeout"))
	}
	b.Processed = 8

	summary := b.Summary()
	if !strings.Contains(summary, "errors=8") {
		t.Errorf("summary should report full error count, got %q", summary)
	}
	if !strings.Contains(summary, "(+3 more)") {
		t.Errorf("summary should note truncated errors, got %q", summary)
	}
	if strings.Count(summary, "render timeout") != 5 {
		t.Errorf("summary should show exactly 5 sampled errors, got %q", summary)
	}

	sampled := b.SampledErrors()
	if len(sampled) != 5 {
		t.Errorf("expected 5 sampled errors, got %d", len(sampled))
	}
	// Full list untouched
	if len(b.Errors) != 8 {
		t.Errorf("expected 8 recorded errors, got %d", len(b.Errors))
	}
}

func TestBatchOutcomeSummaryNoErrors(t *testing.T) {
	b := &BatchOutcome{Processed: 3, Added: 3}
	got := b.Summary()
	want := "processed=3 added=3 errors=0"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
