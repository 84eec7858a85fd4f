package enrichment

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
)

// Service runs AI analysis over listings using the provider resolved at
// startup
type Service struct {
	provider *provider
	logger   arbor.ILogger
}

// NewService resolves the AI provider and returns the enrichment service.
// An unconfigured provider is not an error: the service stays usable and
// produces degraded results.
func NewService(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.EnrichmentService, error) {
	p, err := resolveProvider(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve AI provider: %w", err)
	}

	return &Service{
		provider: p,
		logger:   logger,
	}, nil
}

// IsConfigured reports whether a usable provider was resolved at startup
func (s *Service) IsConfigured() bool {
	return s.provider.kind != kindUnconfigured
}

// ProviderName returns the resolved provider name
func (s *Service) ProviderName() string {
	return s.provider.kind.String()
}

// AnalyzeArbitrage is the required primary analysis. It never returns an
// error: any failure (unconfigured provider, auth, rate limit, malformed
// output) degrades to a non-opportunity result whose reasoning names the
// cause, so the orchestrator always has something to persist.
func (s *Service) AnalyzeArbitrage(ctx context.Context, listing *models.Listing) *models.AnalysisResult {
	text, err := s.provider.generate(ctx, arbitrageSystemPrompt, buildListingPrompt(listing))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("url", listing.URL).
			Str("cause", string(ClassifyError(err))).
			Msg("Arbitrage analysis degraded")
		return &models.AnalysisResult{
			IsArbitrageOpportunity: false,
			ProfitPotential:        0,
			SuggestedPlatform:      "None",
			Reasoning:              FailureReasoning(s.ProviderName(), err),
		}
	}

	decoded, err := decodeModelJSON(text)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", listing.URL).Msg("Arbitrage analysis returned unusable output")
		return &models.AnalysisResult{
			IsArbitrageOpportunity: false,
			ProfitPotential:        0,
			SuggestedPlatform:      "None",
			Reasoning:              fmt.Sprintf("AI analysis produced unusable output (%s): %v", s.ProviderName(), err),
		}
	}

	return &models.AnalysisResult{
		IsArbitrageOpportunity: jsonBool(decoded, "is_arbitrage_opportunity"),
		ProfitPotential:        jsonFloat(decoded, "profit_potential"),
		Category:               jsonString(decoded, "category"),
		Demand:                 jsonString(decoded, "demand"),
		RecommendedPrice:       jsonFloatPtr(decoded, "recommended_price"),
		SuggestedPlatform:      jsonString(decoded, "suggested_platform"),
		Reasoning:              jsonString(decoded, "reasoning"),
		Raw:                    decoded,
	}
}

// AnalyzeAdQuality is optional: callers log and continue on error
func (s *Service) AnalyzeAdQuality(ctx context.Context, listing *models.Listing) (*models.AdQualityResult, error) {
	text, err := s.provider.generate(ctx, adQualitySystemPrompt, buildListingPrompt(listing))
	if err != nil {
		return nil, err
	}

	decoded, err := decodeModelJSON(text)
	if err != nil {
		return nil, err
	}

	return &models.AdQualityResult{
		Score:       jsonFloat(decoded, "score"),
		Strengths:   jsonStringSlice(decoded, "strengths"),
		Weaknesses:  jsonStringSlice(decoded, "weaknesses"),
		Suggestions: jsonStringSlice(decoded, "suggestions"),
		Raw:         decoded,
	}, nil
}

// AnalyzeMarketResearch is optional: callers log and continue on error
func (s *Service) AnalyzeMarketResearch(ctx context.Context, listing *models.Listing) (*models.MarketResearchResult, error) {
	text, err := s.provider.generate(ctx, marketResearchSystemPrompt, buildListingPrompt(listing))
	if err != nil {
		return nil, err
	}

	decoded, err := decodeModelJSON(text)
	if err != nil {
		return nil, err
	}

	return &models.MarketResearchResult{
		MarketPriceLow:  jsonFloatPtr(decoded, "market_price_low"),
		MarketPriceHigh: jsonFloatPtr(decoded, "market_price_high"),
		Demand:          jsonString(decoded, "demand"),
		Summary:         jsonString(decoded, "summary"),
		Raw:             decoded,
	}, nil
}

// ClassifyLead decides whether a listing is a wanted/service lead; callers
// log and continue on error
func (s *Service) ClassifyLead(ctx context.Context, listing *models.Listing) (*models.LeadClassification, error) {
	text, err := s.provider.generate(ctx, leadClassificationSystemPrompt, buildListingPrompt(listing))
	if err != nil {
		return nil, err
	}

	decoded, err := decodeModelJSON(text)
	if err != nil {
		return nil, err
	}

	return &models.LeadClassification{
		IsLead:     jsonBool(decoded, "is_lead"),
		LeadType:   jsonString(decoded, "lead_type"),
		Confidence: jsonFloat(decoded, "confidence"),
		Raw:        decoded,
	}, nil
}

// AnalyzeLead builds an outreach strategy for a lead's listing
func (s *Service) AnalyzeLead(ctx context.Context, listing *models.Listing) (*models.LeadResult, error) {
	text, err := s.provider.generate(ctx, leadSystemPrompt, buildListingPrompt(listing))
	if err != nil {
		return nil, err
	}

	decoded, err := decodeModelJSON(text)
	if err != nil {
		return nil, err
	}

	return &models.LeadResult{
		OpeningMessage: jsonString(decoded, "opening_message"),
		TargetPrice:    jsonFloatPtr(decoded, "target_price"),
		TalkingPoints:  jsonStringSlice(decoded, "talking_points"),
		Raw:            decoded,
	}, nil
}
