package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
)

// ListingStorage implements the ListingStorage interface for Badger
type ListingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewListingStorage creates a new ListingStorage instance
func NewListingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ListingStorage {
	return &ListingStorage{
		db:     db,
		logger: logger,
	}
}

// InsertListing stores a new listing keyed by its normalized URL. A key
// collision means the listing was ingested before; callers get
// ErrAlreadyExists and decide whether that is a failure. Concurrent batches
// racing on the same URL both resolve correctly: one inserts, the other
// sees the collision.
func (s *ListingStorage) InsertListing(ctx context.Context, listing *models.Listing) error {
	if listing.URL == "" {
		return fmt.Errorf("listing URL is required")
	}

	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	if err := s.db.Store().Insert(listing.URL, listing); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// UpdateListing overwrites an existing listing record
func (s *ListingStorage) UpdateListing(ctx context.Context, listing *models.Listing) error {
	if listing.URL == "" {
		return fmt.Errorf("listing URL is required")
	}

	listing.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(listing.URL, listing); err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

func (s *ListingStorage) GetListing(ctx context.Context, url string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.Store().Get(url, &listing); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// GetAllListings returns listings newest-first with limit/offset paging.
// A limit of 0 means no limit.
func (s *ListingStorage) GetAllListings(ctx context.Context, limit, offset int) ([]*models.Listing, error) {
	var listings []models.Listing
	query := badgerhold.Where("URL").Ne("").SortBy("CreatedAt").Reverse()
	if offset > 0 {
		query = query.Skip(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&listings, query); err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	result := make([]*models.Listing, len(listings))
	for i := range listings {
		result[i] = &listings[i]
	}
	return result, nil
}

// GetOpportunities returns listings flagged as arbitrage opportunities
func (s *ListingStorage) GetOpportunities(ctx context.Context) ([]*models.Listing, error) {
	var listings []models.Listing
	err := s.db.Store().Find(&listings, badgerhold.Where("IsArbitrageOpportunity").Eq(true).Index("IsArbitrageOpportunity"))
	if err != nil {
		return nil, fmt.Errorf("failed to find opportunities: %w", err)
	}

	result := make([]*models.Listing, len(listings))
	for i := range listings {
		result[i] = &listings[i]
	}
	return result, nil
}

func (s *ListingStorage) ListingExists(ctx context.Context, url string) (bool, error) {
	var listing models.Listing
	err := s.db.Store().Get(url, &listing)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check listing: %w", err)
}

func (s *ListingStorage) DeleteListing(ctx context.Context, url string) error {
	if err := s.db.Store().Delete(url, &models.Listing{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}

func (s *ListingStorage) CountListings(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Listing{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return int(count), nil
}

func (s *ListingStorage) CountOpportunities(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Listing{}, badgerhold.Where("IsArbitrageOpportunity").Eq(true).Index("IsArbitrageOpportunity"))
	if err != nil {
		return 0, fmt.Errorf("failed to count opportunities: %w", err)
	}
	return int(count), nil
}

// SumProfitPotential totals estimated profit across flagged opportunities
func (s *ListingStorage) SumProfitPotential(ctx context.Context) (float64, error) {
	opportunities, err := s.GetOpportunities(ctx)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, listing := range opportunities {
		if listing.ProfitPotential != nil {
			total += *listing.ProfitPotential
		}
	}
	return total, nil
}
