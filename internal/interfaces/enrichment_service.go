package interfaces

import (
	"context"

	"github.com/papajo/clmonetizer-app/internal/models"
)

// EnrichmentService - interface for AI analysis of listings and leads
type EnrichmentService interface {
	// IsConfigured reports whether a provider with an API key was resolved
	// at startup. When false, analysis calls return degraded results.
	IsConfigured() bool

	// ProviderName returns the resolved provider ("claude", "gemini", or
	// "unconfigured")
	ProviderName() string

	// AnalyzeArbitrage assesses resale potential. It never returns an
	// error: failures produce a non-opportunity result whose reasoning
	// states the failure class, so ingestion is never blocked by the
	// AI layer.
	AnalyzeArbitrage(ctx context.Context, listing *models.Listing) *models.AnalysisResult

	// AnalyzeAdQuality scores the posting text and suggests improvements
	AnalyzeAdQuality(ctx context.Context, listing *models.Listing) (*models.AdQualityResult, error)

	// AnalyzeMarketResearch estimates comparable pricing
	AnalyzeMarketResearch(ctx context.Context, listing *models.Listing) (*models.MarketResearchResult, error)

	// ClassifyLead decides whether a listing is itself a business lead
	// (wanted ad, service request) rather than an item for sale
	ClassifyLead(ctx context.Context, listing *models.Listing) (*models.LeadClassification, error)

	// AnalyzeLead generates an outreach strategy for a lead's listing
	AnalyzeLead(ctx context.Context, listing *models.Listing) (*models.LeadResult, error)
}
