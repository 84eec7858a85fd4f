package interfaces

import (
	"context"

	"github.com/papajo/clmonetizer-app/internal/models"
)

// IngestService - interface for batch ingestion of category pages
type IngestService interface {
	// ScrapeCategory starts an ingestion batch for a category page and
	// returns the batch ID immediately. The batch runs in the background;
	// its outcome is available via GetBatch once finished.
	ScrapeCategory(ctx context.Context, categoryURL string, maxItems int) (string, error)

	// GetBatch returns the current state of a batch, running or finished
	GetBatch(ctx context.Context, id string) (*models.BatchOutcome, error)
}
