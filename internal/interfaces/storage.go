package interfaces

import (
	"context"

	"github.com/papajo/clmonetizer-app/internal/models"
)

// ListingStorage - interface for listing persistence keyed by normalized URL
type ListingStorage interface {
	// InsertListing stores a new listing. Returns ErrAlreadyExists when a
	// listing with the same URL is already stored.
	InsertListing(ctx context.Context, listing *models.Listing) error
	UpdateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, url string) (*models.Listing, error)
	GetAllListings(ctx context.Context, limit, offset int) ([]*models.Listing, error)
	GetOpportunities(ctx context.Context) ([]*models.Listing, error)
	ListingExists(ctx context.Context, url string) (bool, error)
	DeleteListing(ctx context.Context, url string) error
	CountListings(ctx context.Context) (int, error)
	CountOpportunities(ctx context.Context) (int, error)
	// SumProfitPotential totals the estimated profit across flagged
	// opportunities
	SumProfitPotential(ctx context.Context) (float64, error)
}

// LeadStorage - interface for lead persistence
type LeadStorage interface {
	StoreLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	GetAllLeads(ctx context.Context) ([]*models.Lead, error)
	GetLeadsByStatus(ctx context.Context, status models.LeadStatus) ([]*models.Lead, error)
	GetLeadByListingURL(ctx context.Context, url string) (*models.Lead, error)
	DeleteLead(ctx context.Context, id string) error
	CountLeads(ctx context.Context) (int, error)
}

// BatchStorage - interface for batch outcome persistence
type BatchStorage interface {
	StoreBatch(ctx context.Context, batch *models.BatchOutcome) error
	GetBatch(ctx context.Context, id string) (*models.BatchOutcome, error)
	GetRecentBatches(ctx context.Context, limit int) ([]*models.BatchOutcome, error)
}

// StorageManager - interface for storage lifecycle management
type StorageManager interface {
	ListingStorage() ListingStorage
	LeadStorage() LeadStorage
	BatchStorage() BatchStorage
	Close() error
}
