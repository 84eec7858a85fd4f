package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
	badgerstore "github.com/papajo/clmonetizer-app/internal/storage/badger"
)

const testCategoryURL = "https://sfbay.craigslist.org/search/sss"

// fakeRender serves canned HTML per URL and can be told to fail specific
// URLs, standing in for the browser pool.
type fakeRender struct {
	pages    map[string]string
	failURLs map[string]bool
	calls    []string
}

func (f *fakeRender) Render(ctx context.Context, url string, wait interfaces.WaitStrategy, timeout time.Duration) (string, error) {
	f.calls = append(f.calls, url)
	if f.failURLs[url] {
		return "", fmt.Errorf("navigation timed out")
	}
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

func (f *fakeRender) WarmUp(ctx context.Context) error { return nil }
func (f *fakeRender) Close() error                     { return nil }

// fakeEnrich returns a fixed arbitrage verdict and declines the optional
// capabilities, which the pipeline must treat as skippable.
type fakeEnrich struct {
	arbitrageCalls int
	classifyCalls  int
	nonOpportunity bool
	classification *models.LeadClassification
}

func (f *fakeEnrich) IsConfigured() bool   { return true }
func (f *fakeEnrich) ProviderName() string { return "fake" }

func (f *fakeEnrich) AnalyzeArbitrage(ctx context.Context, listing *models.Listing) *models.AnalysisResult {
	f.arbitrageCalls++
	if f.nonOpportunity {
		return &models.AnalysisResult{
			IsArbitrageOpportunity: false,
			SuggestedPlatform:      "None",
			Reasoning:              "not an item for sale",
		}
	}
	return &models.AnalysisResult{
		IsArbitrageOpportunity: true,
		ProfitPotential:        150,
		Category:               "furniture",
		SuggestedPlatform:      "Facebook Marketplace",
		Reasoning:              "underpriced for the area",
	}
}

func (f *fakeEnrich) ClassifyLead(ctx context.Context, listing *models.Listing) (*models.LeadClassification, error) {
	f.classifyCalls++
	if f.classification == nil {
		return nil, fmt.Errorf("not available")
	}
	return f.classification, nil
}

func (f *fakeEnrich) AnalyzeAdQuality(ctx context.Context, listing *models.Listing) (*models.AdQualityResult, error) {
	return nil, fmt.Errorf("not available")
}

func (f *fakeEnrich) AnalyzeMarketResearch(ctx context.Context, listing *models.Listing) (*models.MarketResearchResult, error) {
	return nil, fmt.Errorf("not available")
}

func (f *fakeEnrich) AnalyzeLead(ctx context.Context, listing *models.Listing) (*models.LeadResult, error) {
	return nil, fmt.Errorf("not available")
}

func categoryPage(postingURLs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><ol>`)
	for i, url := range postingURLs {
		fmt.Fprintf(&sb, `<li class="cl-search-result" data-pid="%d">
			<a href="%s">Posting %d</a>
			<span class="price">$%d</span>
			<div class="location">(oakland)</div>
		</li>`, i+1, url, i+1, (i+1)*100)
	}
	sb.WriteString(`</ol></body></html>`)
	return sb.String()
}

func detailPage(title string) string {
	return fmt.Sprintf(`<html><body>
		<span class="postingtitletext"><span id="titletextonly">%s</span> <span class="postingtitle">(oakland)</span></span>
		<span class="price">$250</span>
		<section id="postingbody">Barely used, pickup only.</section>
		<p class="attrgroup"><span>condition: good</span></p>
	</body></html>`, title)
}

func newTestService(t *testing.T, render interfaces.RenderService, enrich interfaces.EnrichmentService) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := common.GetLogger()
	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	config := &common.ScraperConfig{
		Source:        "craigslist",
		ListTimeout:   common.Duration(5 * time.Second),
		DetailTimeout: common.Duration(5 * time.Second),
	}

	svc := NewService(render, enrich, storage, config, logger).(*Service)
	return svc, storage
}

func runBatchToCompletion(t *testing.T, svc *Service, maxItems int) *models.BatchOutcome {
	t.Helper()

	ctx := context.Background()
	id, err := svc.ScrapeCategory(ctx, testCategoryURL, maxItems)
	if err != nil {
		t.Fatalf("ScrapeCategory() error = %v", err)
	}
	if !strings.HasPrefix(id, "batch_") {
		t.Fatalf("batch ID = %q, want batch_ prefix", id)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		batch, err := svc.GetBatch(ctx, id)
		if err != nil {
			t.Fatalf("GetBatch() error = %v", err)
		}
		if batch.Status != models.BatchStatusRunning {
			return batch
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("batch %s did not finish in time", id)
	return nil
}

func TestBatchIsolatesItemFailures(t *testing.T) {
	postings := []string{
		"https://sfbay.craigslist.org/eby/fuo/d/oakland-couch/1.html",
		"https://sfbay.craigslist.org/eby/fuo/d/oakland-table/2.html",
		"https://sfbay.craigslist.org/eby/fuo/d/oakland-chair/3.html",
	}
	render := &fakeRender{
		pages: map[string]string{
			testCategoryURL: categoryPage(postings...),
			postings[0]:     detailPage("Couch"),
			postings[2]:     detailPage("Chair"),
		},
		failURLs: map[string]bool{postings[1]: true},
	}
	enrich := &fakeEnrich{}
	svc, storage := newTestService(t, render, enrich)

	batch := runBatchToCompletion(t, svc, 0)

	if batch.Status != models.BatchStatusCompleted {
		t.Errorf("Status = %q, want completed", batch.Status)
	}
	if batch.Processed != 3 {
		t.Errorf("Processed = %d, want 3", batch.Processed)
	}
	if batch.Added != 2 {
		t.Errorf("Added = %d, want 2", batch.Added)
	}
	if len(batch.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", batch.Errors)
	}
	if !strings.Contains(batch.Errors[0], postings[1]) {
		t.Errorf("error %q does not name the failed URL", batch.Errors[0])
	}

	// The failed item keeps its base record: the list-level fields were
	// committed before the detail fetch ran
	ctx := context.Background()
	listing, err := storage.ListingStorage().GetListing(ctx, postings[1])
	if err != nil {
		t.Fatalf("GetListing(failed item) error = %v", err)
	}
	if listing.Description != "" {
		t.Errorf("failed item has detail description %q, want empty", listing.Description)
	}

	// Successful items carry detail and enrichment fields
	enriched, err := storage.ListingStorage().GetListing(ctx, postings[0])
	if err != nil {
		t.Fatalf("GetListing(success) error = %v", err)
	}
	if !strings.Contains(enriched.Description, "Barely used") {
		t.Errorf("Description = %q, want detail text", enriched.Description)
	}
	if enriched.Title != "Couch" {
		t.Errorf("Title = %q, want detail-page title", enriched.Title)
	}
	if enriched.Attributes["condition"] != "good" {
		t.Errorf("Attributes = %v, want condition: good", enriched.Attributes)
	}
	if !enriched.IsArbitrageOpportunity {
		t.Error("IsArbitrageOpportunity = false, want true")
	}
	if enriched.ProfitPotential == nil || *enriched.ProfitPotential != 150 {
		t.Errorf("ProfitPotential = %v, want 150", enriched.ProfitPotential)
	}
	if enriched.Category != "furniture" {
		t.Errorf("Category = %q, want furniture", enriched.Category)
	}
}

func TestBatchIsIdempotent(t *testing.T) {
	posting := "https://sfbay.craigslist.org/eby/fuo/d/oakland-couch/1.html"
	render := &fakeRender{
		pages: map[string]string{
			testCategoryURL: categoryPage(posting),
			posting:         detailPage("Couch"),
		},
	}
	enrich := &fakeEnrich{}
	svc, storage := newTestService(t, render, enrich)

	first := runBatchToCompletion(t, svc, 0)
	if first.Added != 1 {
		t.Fatalf("first run Added = %d, want 1", first.Added)
	}

	second := runBatchToCompletion(t, svc, 0)
	if second.Processed != 1 {
		t.Errorf("second run Processed = %d, want 1", second.Processed)
	}
	if second.Added != 0 {
		t.Errorf("second run Added = %d, want 0", second.Added)
	}
	if len(second.Errors) != 0 {
		t.Errorf("second run Errors = %v, want none", second.Errors)
	}

	count, err := storage.ListingStorage().CountListings(context.Background())
	if err != nil {
		t.Fatalf("CountListings() error = %v", err)
	}
	if count != 1 {
		t.Errorf("stored listings = %d, want 1", count)
	}

	// The duplicate was skipped before enrichment, so only the first run
	// called the analyzer
	if enrich.arbitrageCalls != 1 {
		t.Errorf("arbitrage calls = %d, want 1", enrich.arbitrageCalls)
	}
}

func TestBatchFailsWhenCategoryFetchFails(t *testing.T) {
	render := &fakeRender{
		pages:    map[string]string{},
		failURLs: map[string]bool{testCategoryURL: true},
	}
	svc, _ := newTestService(t, render, &fakeEnrich{})

	batch := runBatchToCompletion(t, svc, 0)

	if batch.Status != models.BatchStatusFailed {
		t.Errorf("Status = %q, want failed", batch.Status)
	}
	if batch.Processed != 0 || batch.Added != 0 {
		t.Errorf("Processed/Added = %d/%d, want 0/0", batch.Processed, batch.Added)
	}
	if len(batch.Errors) == 0 {
		t.Error("expected the fetch failure to be recorded")
	}
	if batch.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
}

func TestBatchCompletesWithNoCandidates(t *testing.T) {
	render := &fakeRender{
		pages: map[string]string{
			testCategoryURL: `<html><body><p>Nothing posted today.</p></body></html>`,
		},
	}
	svc, _ := newTestService(t, render, &fakeEnrich{})

	batch := runBatchToCompletion(t, svc, 0)

	if batch.Status != models.BatchStatusCompleted {
		t.Errorf("Status = %q, want completed", batch.Status)
	}
	if batch.Processed != 0 || batch.Added != 0 {
		t.Errorf("Processed/Added = %d/%d, want 0/0", batch.Processed, batch.Added)
	}
}

func TestBatchHonorsMaxItems(t *testing.T) {
	postings := []string{
		"https://sfbay.craigslist.org/eby/fuo/d/oakland-couch/1.html",
		"https://sfbay.craigslist.org/eby/fuo/d/oakland-table/2.html",
		"https://sfbay.craigslist.org/eby/fuo/d/oakland-chair/3.html",
	}
	pages := map[string]string{testCategoryURL: categoryPage(postings...)}
	for _, p := range postings {
		pages[p] = detailPage("Item")
	}
	svc, _ := newTestService(t, &fakeRender{pages: pages}, &fakeEnrich{})

	batch := runBatchToCompletion(t, svc, 2)

	if batch.Processed != 2 {
		t.Errorf("Processed = %d, want 2", batch.Processed)
	}
	if batch.Added != 2 {
		t.Errorf("Added = %d, want 2", batch.Added)
	}
}

func TestBatchCapturesWantedAdsAsLeads(t *testing.T) {
	posting := "https://sfbay.craigslist.org/eby/wan/d/oakland-wanted-tools/9.html"
	render := &fakeRender{
		pages: map[string]string{
			testCategoryURL: categoryPage(posting),
			posting:         detailPage("Wanted: power tools"),
		},
	}
	enrich := &fakeEnrich{
		nonOpportunity: true,
		classification: &models.LeadClassification{IsLead: true, LeadType: "wanted", Confidence: 0.9},
	}
	svc, storage := newTestService(t, render, enrich)

	runBatchToCompletion(t, svc, 0)

	ctx := context.Background()
	lead, err := storage.LeadStorage().GetLeadByListingURL(ctx, posting)
	if err != nil {
		t.Fatalf("GetLeadByListingURL() error = %v", err)
	}
	if lead.LeadType != "wanted" {
		t.Errorf("LeadType = %q, want wanted", lead.LeadType)
	}
	if lead.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", lead.Confidence)
	}
	if lead.Status != models.LeadStatusNew {
		t.Errorf("Status = %q, want new", lead.Status)
	}
	if enrich.classifyCalls != 1 {
		t.Errorf("classifyCalls = %d, want 1", enrich.classifyCalls)
	}
}

func TestBatchSkipsLeadCaptureForOpportunities(t *testing.T) {
	posting := "https://sfbay.craigslist.org/eby/fuo/d/oakland-couch/1.html"
	render := &fakeRender{
		pages: map[string]string{
			testCategoryURL: categoryPage(posting),
			posting:         detailPage("Couch"),
		},
	}
	enrich := &fakeEnrich{}
	svc, storage := newTestService(t, render, enrich)

	runBatchToCompletion(t, svc, 0)

	if enrich.classifyCalls != 0 {
		t.Errorf("classifyCalls = %d, want 0 for an arbitrage opportunity", enrich.classifyCalls)
	}
	count, err := storage.LeadStorage().CountLeads(context.Background())
	if err != nil {
		t.Fatalf("CountLeads() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountLeads() = %d, want 0", count)
	}
}

func TestBatchLeadClassificationFailureIsNonFatal(t *testing.T) {
	posting := "https://sfbay.craigslist.org/eby/wan/d/oakland-wanted-bike/4.html"
	render := &fakeRender{
		pages: map[string]string{
			testCategoryURL: categoryPage(posting),
			posting:         detailPage("Wanted: bike"),
		},
	}
	enrich := &fakeEnrich{nonOpportunity: true}
	svc, storage := newTestService(t, render, enrich)

	batch := runBatchToCompletion(t, svc, 0)

	if batch.Status != models.BatchStatusCompleted {
		t.Errorf("Status = %q, want completed", batch.Status)
	}
	if len(batch.Errors) != 0 {
		t.Errorf("Errors = %v, want none", batch.Errors)
	}
	count, err := storage.LeadStorage().CountLeads(context.Background())
	if err != nil {
		t.Fatalf("CountLeads() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountLeads() = %d, want 0", count)
	}
}
