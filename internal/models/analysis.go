package models

// AnalysisResult is the arbitrage assessment for a listing. A failed or
// unconfigured provider still yields a valid result: IsArbitrageOpportunity
// false, ProfitPotential zero, and Reasoning naming the failure cause.
// Raw holds the provider's full decoded response so callers can persist it
// without re-marshaling.
type AnalysisResult struct {
	IsArbitrageOpportunity bool     `json:"is_arbitrage_opportunity"`
	ProfitPotential        float64  `json:"profit_potential"`
	Category               string   `json:"category"`
	Demand                 string   `json:"demand"` // "low", "medium", "high"
	RecommendedPrice       *float64 `json:"recommended_price"`
	SuggestedPlatform      string   `json:"suggested_platform"`
	Reasoning              string   `json:"reasoning"`

	Raw map[string]interface{} `json:"-"`
}

// AdQualityResult scores how well a posting is written and suggests
// improvements for resale
type AdQualityResult struct {
	Score       float64  `json:"score"` // 1-10
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`

	Raw map[string]interface{} `json:"-"`
}

// MarketResearchResult estimates comparable pricing for a listing
type MarketResearchResult struct {
	MarketPriceLow  *float64 `json:"market_price_low"`
	MarketPriceHigh *float64 `json:"market_price_high"`
	Demand          string   `json:"demand"`
	Summary         string   `json:"summary"`

	Raw map[string]interface{} `json:"-"`
}

// LeadClassification decides whether a non-opportunity listing is itself a
// business lead, e.g. a wanted ad or a service request
type LeadClassification struct {
	IsLead     bool    `json:"is_lead"`
	LeadType   string  `json:"lead_type"` // "wanted", "service", "other"
	Confidence float64 `json:"confidence"`

	Raw map[string]interface{} `json:"-"`
}

// LeadResult is the AI-generated outreach strategy for a lead
type LeadResult struct {
	OpeningMessage string   `json:"opening_message"`
	TargetPrice    *float64 `json:"target_price"`
	TalkingPoints  []string `json:"talking_points"`

	Raw map[string]interface{} `json:"-"`
}
