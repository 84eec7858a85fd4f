package models

import (
	"fmt"
	"strings"
	"time"
)

// BatchStatus tracks a batch through its lifecycle
type BatchStatus string

const (
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
)

// maxDisplayedErrors caps how many item errors a batch summary reports.
// The full count is always kept; only the messages are sampled.
const maxDisplayedErrors = 5

// BatchOutcome summarizes one ingestion run over a category page.
// Processed counts every candidate attempted, Added counts listings that
// made it to storage as new records, and Errors holds per-item failures.
type BatchOutcome struct {
	ID          string      `json:"id" badgerhold:"key"`
	CategoryURL string      `json:"category_url"`
	Status      BatchStatus `json:"status"`
	Processed   int         `json:"processed"`
	Added       int         `json:"added"`
	Errors      []string    `json:"errors,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
}

// RecordError appends a per-item failure to the outcome
func (b *BatchOutcome) RecordError(url string, err error) {
	b.Errors = append(b.Errors, fmt.Sprintf("%s: %v", url, err))
}

// Summary renders a one-line description of the batch, sampling at most
// five error messages so a noisy batch cannot flood the log.
func (b *BatchOutcome) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "processed=%d added=%d errors=%d", b.Processed, b.Added, len(b.Errors))
	if len(b.Errors) > 0 {
		shown := b.Errors
		if len(shown) > maxDisplayedErrors {
			shown = shown[:maxDisplayedErrors]
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(shown, "; "))
		if len(b.Errors) > maxDisplayedErrors {
			fmt.Fprintf(&sb, " (+%d more)", len(b.Errors)-maxDisplayedErrors)
		}
	}
	return sb.String()
}

// SampledErrors returns at most five error messages for display
func (b *BatchOutcome) SampledErrors() []string {
	if len(b.Errors) <= maxDisplayedErrors {
		return b.Errors
	}
	return b.Errors[:maxDisplayedErrors]
}
