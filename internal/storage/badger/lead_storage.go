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

// LeadStorage implements the LeadStorage interface for Badger
type LeadStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewLeadStorage creates a new LeadStorage instance
func NewLeadStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LeadStorage {
	return &LeadStorage{
		db:     db,
		logger: logger,
	}
}

func (s *LeadStorage) StoreLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		return fmt.Errorf("lead ID is required")
	}
	if lead.ListingURL == "" {
		return fmt.Errorf("lead listing URL is required")
	}

	now := time.Now()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	if err := s.db.Store().Upsert(lead.ID, lead); err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

func (s *LeadStorage) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.Store().Get(id, &lead); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (s *LeadStorage) GetAllLeads(ctx context.Context) ([]*models.Lead, error) {
	var leads []models.Lead
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&leads, query); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	result := make([]*models.Lead, len(leads))
	for i := range leads {
		result[i] = &leads[i]
	}
	return result, nil
}

func (s *LeadStorage) GetLeadsByStatus(ctx context.Context, status models.LeadStatus) ([]*models.Lead, error) {
	var leads []models.Lead
	err := s.db.Store().Find(&leads, badgerhold.Where("Status").Eq(status).Index("Status"))
	if err != nil {
		return nil, fmt.Errorf("failed to find leads by status: %w", err)
	}

	result := make([]*models.Lead, len(leads))
	for i := range leads {
		result[i] = &leads[i]
	}
	return result, nil
}

func (s *LeadStorage) GetLeadByListingURL(ctx context.Context, url string) (*models.Lead, error) {
	var leads []models.Lead
	err := s.db.Store().Find(&leads, badgerhold.Where("ListingURL").Eq(url).Index("ListingURL"))
	if err != nil {
		return nil, fmt.Errorf("failed to find lead by listing: %w", err)
	}
	if len(leads) == 0 {
		return nil, ErrNotFound
	}
	return &leads[0], nil
}

func (s *LeadStorage) DeleteLead(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Lead{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (s *LeadStorage) CountLeads(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Lead{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return int(count), nil
}
