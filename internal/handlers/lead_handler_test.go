package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
	badgerstore "github.com/papajo/clmonetizer-app/internal/storage/badger"
)

// stubEnrich is unconfigured, so lead creation skips strategy generation
type stubEnrich struct{}

func (s *stubEnrich) IsConfigured() bool   { return false }
func (s *stubEnrich) ProviderName() string { return "unconfigured" }

func (s *stubEnrich) AnalyzeArbitrage(ctx context.Context, listing *models.Listing) *models.AnalysisResult {
	return &models.AnalysisResult{}
}

func (s *stubEnrich) AnalyzeAdQuality(ctx context.Context, listing *models.Listing) (*models.AdQualityResult, error) {
	return nil, fmt.Errorf("not available")
}

func (s *stubEnrich) AnalyzeMarketResearch(ctx context.Context, listing *models.Listing) (*models.MarketResearchResult, error) {
	return nil, fmt.Errorf("not available")
}

func (s *stubEnrich) ClassifyLead(ctx context.Context, listing *models.Listing) (*models.LeadClassification, error) {
	return nil, fmt.Errorf("not available")
}

func (s *stubEnrich) AnalyzeLead(ctx context.Context, listing *models.Listing) (*models.LeadResult, error) {
	return nil, fmt.Errorf("not available")
}

func newLeadTestHandler(t *testing.T) (*LeadHandler, interfaces.StorageManager) {
	t.Helper()

	logger := common.GetLogger()
	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	handler := NewLeadHandler(storage.LeadStorage(), storage.ListingStorage(), &stubEnrich{}, logger)
	return handler, storage
}

func storedListing(t *testing.T, storage interfaces.StorageManager, url string) {
	t.Helper()
	if err := storage.ListingStorage().InsertListing(context.Background(), &models.Listing{
		URL:   url,
		Title: "Couch",
	}); err != nil {
		t.Fatalf("InsertListing() error = %v", err)
	}
}

func TestLeadStatusFilter(t *testing.T) {
	handler, storage := newLeadTestHandler(t)
	listingURL := "https://sfbay.craigslist.org/eby/fuo/d/oakland-couch/1.html"
	storedListing(t, storage, listingURL)

	lead := models.NewLead(listingURL)
	lead.Status = models.LeadStatusContacted
	if err := storage.LeadStorage().StoreLead(context.Background(), lead); err != nil {
		t.Fatalf("StoreLead() error = %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/leads?status=contacted", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Leads []*models.Lead `json:"leads"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}

	// Unknown status names are rejected before the store is queried
	rec = httptest.NewRecorder()
	handler.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/leads?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown status", rec.Code)
	}
}

func TestLeadStatusUpdate(t *testing.T) {
	handler, storage := newLeadTestHandler(t)
	listingURL := "https://sfbay.craigslist.org/eby/fuo/d/oakland-table/2.html"
	storedListing(t, storage, listingURL)

	lead := models.NewLead(listingURL)
	if err := storage.LeadStorage().StoreLead(context.Background(), lead); err != nil {
		t.Fatalf("StoreLead() error = %v", err)
	}

	payload := bytes.NewBufferString(`{"status": "negotiating"}`)
	rec := httptest.NewRecorder()
	handler.LeadByIDHandler(rec, httptest.NewRequest(http.MethodPut, "/api/leads/"+lead.ID, payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	updated, err := storage.LeadStorage().GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead() error = %v", err)
	}
	if updated.Status != models.LeadStatusNegotiating {
		t.Errorf("Status = %q, want negotiating", updated.Status)
	}

	payload = bytes.NewBufferString(`{"status": "shipped"}`)
	rec = httptest.NewRecorder()
	handler.LeadByIDHandler(rec, httptest.NewRequest(http.MethodPut, "/api/leads/"+lead.ID, payload))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown status", rec.Code)
	}
}

func TestLeadCreateRequiresStoredListing(t *testing.T) {
	handler, _ := newLeadTestHandler(t)

	payload := bytes.NewBufferString(`{"listing_url": "https://sfbay.craigslist.org/eby/fuo/d/missing/3.html"}`)
	rec := httptest.NewRecorder()
	handler.LeadsHandler(rec, httptest.NewRequest(http.MethodPost, "/api/leads", payload))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown listing", rec.Code)
	}
}
