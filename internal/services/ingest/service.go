package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
	"github.com/papajo/clmonetizer-app/internal/scraper"
	badgerstore "github.com/papajo/clmonetizer-app/internal/storage/badger"
)

// Service orchestrates ingestion batches: render the category page, extract
// candidates, then per candidate run dedupe -> persist base -> fetch detail
// -> persist detail -> enrich -> persist final. Items are processed
// strictly in sequence within a batch; failures are isolated per item.
type Service struct {
	render  interfaces.RenderService
	enrich  interfaces.EnrichmentService
	storage interfaces.StorageManager
	config  *common.ScraperConfig
	logger  arbor.ILogger

	mu      sync.Mutex
	batches map[string]*models.BatchOutcome // live registry, running and recently finished
}

// NewService creates the ingestion orchestrator
func NewService(
	render interfaces.RenderService,
	enrich interfaces.EnrichmentService,
	storage interfaces.StorageManager,
	config *common.ScraperConfig,
	logger arbor.ILogger,
) interfaces.IngestService {
	return &Service{
		render:  render,
		enrich:  enrich,
		storage: storage,
		config:  config,
		logger:  logger,
		batches: make(map[string]*models.BatchOutcome),
	}
}

// ScrapeCategory validates the category URL, registers a batch, and kicks
// it off in the background. The caller gets the batch ID back before any
// rendering happens.
func (s *Service) ScrapeCategory(ctx context.Context, categoryURL string, maxItems int) (string, error) {
	cleanURL, err := common.NormalizeListingURL(categoryURL)
	if err != nil {
		return "", fmt.Errorf("invalid category URL: %w", err)
	}

	batch := &models.BatchOutcome{
		ID:          "batch_" + uuid.New().String(),
		CategoryURL: cleanURL,
		Status:      models.BatchStatusRunning,
		StartedAt:   time.Now(),
	}

	s.mu.Lock()
	s.batches[batch.ID] = batch
	s.mu.Unlock()

	if err := s.storage.BatchStorage().StoreBatch(ctx, batch); err != nil {
		s.logger.Warn().Err(err).Str("batch_id", batch.ID).Msg("Failed to persist batch registration")
	}

	s.logger.Info().
		Str("batch_id", batch.ID).
		Str("url", cleanURL).
		Msg("Ingestion batch accepted")

	common.SafeGo(s.logger, "ingestBatch", func() {
		s.runBatch(context.Background(), batch, maxItems)
	})

	return batch.ID, nil
}

// GetBatch returns a snapshot of the batch, running or finished
func (s *Service) GetBatch(ctx context.Context, id string) (*models.BatchOutcome, error) {
	s.mu.Lock()
	batch, ok := s.batches[id]
	if ok {
		snapshot := *batch
		snapshot.Errors = append([]string(nil), batch.Errors...)
		s.mu.Unlock()
		return &snapshot, nil
	}
	s.mu.Unlock()

	return s.storage.BatchStorage().GetBatch(ctx, id)
}

// runBatch executes the batch to completion. The deferred finalization
// runs on every exit path and is the only place the summary is logged and
// the final state persisted.
func (s *Service) runBatch(ctx context.Context, batch *models.BatchOutcome, maxItems int) {
	defer s.finalizeBatch(ctx, batch)

	html, err := s.render.Render(ctx, batch.CategoryURL, interfaces.WaitNetworkIdle, s.config.ListTimeout.Std())
	if err != nil {
		s.failBatch(batch, fmt.Errorf("category page fetch failed: %w", err))
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.failBatch(batch, fmt.Errorf("category page parse failed: %w", err))
		return
	}

	candidates, strategy := scraper.ExtractCandidates(doc, batch.CategoryURL)
	if len(candidates) == 0 {
		// Not an error: the page rendered but no layout produced candidates
		s.logger.Warn().
			Str("batch_id", batch.ID).
			Str("url", batch.CategoryURL).
			Msg("No candidates extracted from category page")
		return
	}

	limit := s.config.MaxCandidates
	if maxItems > 0 && (limit == 0 || maxItems < limit) {
		limit = maxItems
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s.logger.Info().
		Str("batch_id", batch.ID).
		Str("strategy", strategy).
		Int("candidates", len(candidates)).
		Msg("Candidates extracted, starting sequential ingestion")

	for _, candidate := range candidates {
		added, err := s.processItem(ctx, candidate)

		s.mu.Lock()
		batch.Processed++
		if added {
			batch.Added++
		}
		if err != nil {
			batch.RecordError(candidate.URL, err)
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("batch_id", batch.ID).
				Str("url", candidate.URL).
				Msg("Item failed, continuing with next candidate")
		}
	}
}

// failBatch records a batch-fatal error. Only list-level fetch failures
// end up here; item failures stay inside the loop.
func (s *Service) failBatch(batch *models.BatchOutcome, err error) {
	s.mu.Lock()
	batch.Status = models.BatchStatusFailed
	batch.Errors = append(batch.Errors, err.Error())
	s.mu.Unlock()

	s.logger.Error().
		Err(err).
		Str("batch_id", batch.ID).
		Str("url", batch.CategoryURL).
		Msg("Ingestion batch failed")
}

// finalizeBatch always runs: it stamps the finish time, persists the
// outcome, logs the summary with up to five sampled errors, and drops the
// batch from the live registry.
func (s *Service) finalizeBatch(ctx context.Context, batch *models.BatchOutcome) {
	now := time.Now()

	s.mu.Lock()
	if batch.Status == models.BatchStatusRunning {
		batch.Status = models.BatchStatusCompleted
	}
	batch.FinishedAt = &now
	snapshot := *batch
	snapshot.Errors = append([]string(nil), batch.Errors...)
	s.mu.Unlock()

	if err := s.storage.BatchStorage().StoreBatch(ctx, &snapshot); err != nil {
		s.logger.Warn().Err(err).Str("batch_id", snapshot.ID).Msg("Failed to persist batch outcome")
	}

	s.mu.Lock()
	delete(s.batches, batch.ID)
	s.mu.Unlock()

	s.logger.Info().
		Str("batch_id", snapshot.ID).
		Str("status", string(snapshot.Status)).
		Str("summary", snapshot.Summary()).
		Dur("duration", now.Sub(snapshot.StartedAt)).
		Msg("Ingestion batch finished")
}

// processItem runs one candidate through the pipeline. The panic recovery
// is the per-item isolation boundary: whatever goes wrong inside, the
// batch moves on to the next candidate.
//
// Commit boundaries: the base listing is persisted right after the dedupe
// gate, before the detail fetch, so a failure downstream still leaves a
// discoverable record. Detail fields and enrichment fields are committed
// as separate follow-up updates. added is true only when the detail fetch
// succeeded; enrichment failures never block it.
func (s *Service) processItem(ctx context.Context, candidate models.Candidate) (added bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			added = false
			err = fmt.Errorf("item processing panicked: %v", r)
		}
	}()

	listings := s.storage.ListingStorage()

	exists, err := listings.ListingExists(ctx, candidate.URL)
	if err != nil {
		return false, fmt.Errorf("dedupe check failed: %w", err)
	}
	if exists {
		s.logger.Debug().Str("url", candidate.URL).Msg("Listing already stored, skipping")
		return false, nil
	}

	listing := &models.Listing{
		URL:         candidate.URL,
		Source:      s.config.Source,
		Title:       candidate.Title,
		Price:       candidate.Price,
		Location:    candidate.Location,
		ImageURL:    candidate.ImageURL,
		IsFreeItem:  candidate.Price != nil && *candidate.Price == 0,
		DateScraped: time.Now(),
	}

	if err := listings.InsertListing(ctx, listing); err != nil {
		if errors.Is(err, badgerstore.ErrAlreadyExists) {
			// A concurrent batch got here first; same outcome as the
			// dedupe gate
			s.logger.Debug().Str("url", candidate.URL).Msg("Listing inserted concurrently, skipping")
			return false, nil
		}
		return false, fmt.Errorf("base persist failed: %w", err)
	}

	if err := s.fetchDetail(ctx, listing); err != nil {
		return false, err
	}
	added = true

	s.enrichListing(ctx, listing)

	return added, nil
}

// fetchDetail renders the posting page and commits the detail fields
func (s *Service) fetchDetail(ctx context.Context, listing *models.Listing) error {
	html, err := s.render.Render(ctx, listing.URL, interfaces.WaitLoad, s.config.DetailTimeout.Std())
	if err != nil {
		return fmt.Errorf("detail fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("detail parse failed: %w", err)
	}

	detail := scraper.ExtractDetail(doc)

	listing.Description = detail.Description
	listing.Attributes = detail.Attributes
	listing.Mileage = detail.Mileage
	if detail.Title != "" {
		listing.Title = detail.Title
	}
	if detail.Price != nil {
		listing.Price = detail.Price
		listing.IsFreeItem = *detail.Price == 0
	}
	if detail.Location != "" {
		listing.Location = detail.Location
	}

	if err := s.storage.ListingStorage().UpdateListing(ctx, listing); err != nil {
		return fmt.Errorf("detail persist failed: %w", err)
	}
	return nil
}

// enrichListing runs the analysis capabilities and commits the enriched
// record. The primary arbitrage analysis always produces a result, degraded
// or not; ad-quality and market-research are optional and skipped on error.
func (s *Service) enrichListing(ctx context.Context, listing *models.Listing) {
	analysis := s.enrich.AnalyzeArbitrage(ctx, listing)
	listing.IsArbitrageOpportunity = analysis.IsArbitrageOpportunity
	listing.ProfitPotential = &analysis.ProfitPotential
	listing.Category = analysis.Category
	listing.Analysis = analysisMap(analysis)

	if quality, err := s.enrich.AnalyzeAdQuality(ctx, listing); err != nil {
		s.logger.Debug().Err(err).Str("url", listing.URL).Msg("Ad quality analysis skipped")
	} else {
		listing.AdQualityScore = &quality.Score
		listing.AdQuality = quality.Raw
	}

	if research, err := s.enrich.AnalyzeMarketResearch(ctx, listing); err != nil {
		s.logger.Debug().Err(err).Str("url", listing.URL).Msg("Market research analysis skipped")
	} else {
		listing.MarketResearch = research.Raw
	}

	if err := s.storage.ListingStorage().UpdateListing(ctx, listing); err != nil {
		s.logger.Warn().Err(err).Str("url", listing.URL).Msg("Failed to persist enrichment")
	}

	if !analysis.IsArbitrageOpportunity {
		s.captureLead(ctx, listing)
	}
}

// captureLead classifies a non-opportunity listing as a potential business
// lead (wanted ad, service request) and records it. Classification failures
// only log; a listing that already produced a lead is left alone.
func (s *Service) captureLead(ctx context.Context, listing *models.Listing) {
	classification, err := s.enrich.ClassifyLead(ctx, listing)
	if err != nil {
		s.logger.Debug().Err(err).Str("url", listing.URL).Msg("Lead classification skipped")
		return
	}
	if !classification.IsLead {
		return
	}

	if existing, err := s.storage.LeadStorage().GetLeadByListingURL(ctx, listing.URL); err == nil && existing != nil {
		return
	}

	lead := models.NewLead(listing.URL)
	lead.LeadType = classification.LeadType
	lead.Confidence = classification.Confidence
	if err := s.storage.LeadStorage().StoreLead(ctx, lead); err != nil {
		s.logger.Warn().Err(err).Str("url", listing.URL).Msg("Failed to store classified lead")
		return
	}

	s.logger.Info().
		Str("url", listing.URL).
		Str("lead_type", lead.LeadType).
		Msg("Listing captured as lead")
}

// analysisMap flattens the analysis result for persistence. A degraded
// result has no Raw payload, so one is built from the typed fields.
func analysisMap(analysis *models.AnalysisResult) map[string]interface{} {
	if analysis.Raw != nil {
		return analysis.Raw
	}
	return map[string]interface{}{
		"is_arbitrage_opportunity": analysis.IsArbitrageOpportunity,
		"profit_potential":         analysis.ProfitPotential,
		"suggested_platform":       analysis.SuggestedPlatform,
		"reasoning":                analysis.Reasoning,
	}
}
