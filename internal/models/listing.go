package models

import (
	"time"
)

// Listing represents a classified-ad posting captured from a marketplace.
// The normalized URL is the identity: two captures of the same URL are the
// same listing.
type Listing struct {
	// Identity
	URL    string `json:"url" badgerhold:"key"`
	Source string `json:"source"` // Origin marketplace tag, e.g. "craigslist"

	// Core fields from the category page
	Title    string   `json:"title"`
	Price    *float64 `json:"price"` // nil when the posting carries no parseable price
	Location string   `json:"location"`
	ImageURL string   `json:"image_url,omitempty"`

	// Detail fields from the posting page
	Description string            `json:"description"`
	Mileage     *int              `json:"mileage"` // nil when absent or unparseable
	Attributes  map[string]string `json:"attributes,omitempty"`
	IsFreeItem  bool              `json:"is_free_item"`

	// AI enrichment results (empty until analyzed)
	Category               string                 `json:"category,omitempty"` // enrichment-derived
	IsArbitrageOpportunity bool                   `json:"is_arbitrage_opportunity" badgerhold:"index"`
	ProfitPotential        *float64               `json:"profit_potential"`
	AdQualityScore         *float64               `json:"ad_quality_score"`
	Analysis               map[string]interface{} `json:"analysis,omitempty"`
	AdQuality              map[string]interface{} `json:"ad_quality,omitempty"`
	MarketResearch         map[string]interface{} `json:"market_research,omitempty"`

	// Timestamps
	DatePosted  *time.Time `json:"date_posted,omitempty"`
	DateScraped time.Time  `json:"date_scraped"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasAnalysis reports whether AI enrichment has run for this listing
func (l *Listing) HasAnalysis() bool {
	return len(l.Analysis) > 0
}

// Candidate is a listing reference lifted from a rendered category page,
// before the posting page itself has been fetched.
type Candidate struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Price    *float64 `json:"price"`
	Location string   `json:"location"`
	ImageURL string   `json:"image_url"`
}

// ListingDetail holds the fields extracted from a rendered posting page.
// Attributes carries "key: value" spans keyed by lower-cased label; bare
// condition tags accumulate under the "tag" key, comma separated.
type ListingDetail struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       *float64          `json:"price"`
	Location    string            `json:"location"`
	Mileage     *int              `json:"mileage"`
	Attributes  map[string]string `json:"attributes"`
}
