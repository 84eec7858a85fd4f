package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/interfaces"
)

// StatsHandler reports aggregate counts across the stores
type StatsHandler struct {
	storage interfaces.StorageManager
	enrich  interfaces.EnrichmentService
	logger  arbor.ILogger
}

// NewStatsHandler creates a stats handler
func NewStatsHandler(storage interfaces.StorageManager, enrich interfaces.EnrichmentService, logger arbor.ILogger) *StatsHandler {
	return &StatsHandler{storage: storage, enrich: enrich, logger: logger}
}

// GetStatsHandler returns aggregate counts: GET /api/stats
func (h *StatsHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()

	listings, err := h.storage.ListingStorage().CountListings(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count listings")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	opportunities, err := h.storage.ListingStorage().CountOpportunities(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count opportunities")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	leads, err := h.storage.LeadStorage().CountLeads(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count leads")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	totalProfit, err := h.storage.ListingStorage().SumProfitPotential(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to sum profit potential")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"listings":               listings,
		"opportunities":          opportunities,
		"leads":                  leads,
		"total_profit_potential": totalProfit,
		"ai_provider":            h.enrich.ProviderName(),
		"ai_configured":          h.enrich.IsConfigured(),
	})
}
