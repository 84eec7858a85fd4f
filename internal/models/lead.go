package models

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus tracks where a lead sits in the outreach funnel
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusNegotiating LeadStatus = "negotiating"
	LeadStatusClosed      LeadStatus = "closed"
	LeadStatusDead        LeadStatus = "dead"
)

// Lead represents a listing promoted to active pursuit. Leads carry their
// own AI strategy analysis separate from the listing's arbitrage analysis.
type Lead struct {
	ID         string                 `json:"id" badgerhold:"key"`
	ListingURL string                 `json:"listing_url" badgerhold:"index"`
	LeadType   string                 `json:"lead_type" badgerhold:"index"` // "wanted", "service", "other", or "" for manual leads
	Confidence float64                `json:"confidence"`
	Status     LeadStatus             `json:"status" badgerhold:"index"`
	Notes      string                 `json:"notes"`
	Strategy   map[string]interface{} `json:"strategy,omitempty"` // AI negotiation strategy
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// NewLead creates a lead for a listing with a generated ID
func NewLead(listingURL string) *Lead {
	now := time.Now()
	return &Lead{
		ID:         "lead_" + uuid.New().String(),
		ListingURL: listingURL,
		Status:     LeadStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsValidLeadStatus reports whether s is a recognized funnel status
func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusNegotiating, LeadStatusClosed, LeadStatusDead:
		return true
	}
	return false
}
