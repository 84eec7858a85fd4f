package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
	badgerstore "github.com/papajo/clmonetizer-app/internal/storage/badger"
)

// LeadHandler exposes lead tracking over HTTP. A lead is a listing the
// operator decided to pursue; creating one can generate an outreach
// strategy through the enrichment service.
type LeadHandler struct {
	leads    interfaces.LeadStorage
	listings interfaces.ListingStorage
	enrich   interfaces.EnrichmentService
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewLeadHandler creates a lead handler
func NewLeadHandler(leads interfaces.LeadStorage, listings interfaces.ListingStorage, enrich interfaces.EnrichmentService, logger arbor.ILogger) *LeadHandler {
	return &LeadHandler{
		leads:    leads,
		listings: listings,
		enrich:   enrich,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateLeadRequest is the POST /api/leads payload
type CreateLeadRequest struct {
	ListingURL string `json:"listing_url" validate:"required,url"`
	Notes      string `json:"notes"`
}

// UpdateLeadRequest is the PUT /api/leads/{id} payload. Nil fields are
// left unchanged.
type UpdateLeadRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// CreateHandler creates a lead for a stored listing: POST /api/leads.
// When the enrichment provider is configured, an outreach strategy is
// generated and attached; generation failures only log.
func (h *LeadHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	listing, err := h.listings.GetListing(r.Context(), req.ListingURL)
	if err != nil {
		if errors.Is(err, badgerstore.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No stored listing for that URL")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to look up listing for lead")
		WriteError(w, http.StatusInternalServerError, "Failed to look up listing")
		return
	}

	if existing, err := h.leads.GetLeadByListingURL(r.Context(), req.ListingURL); err == nil && existing != nil {
		WriteError(w, http.StatusConflict, "A lead already exists for that listing")
		return
	}

	lead := models.NewLead(req.ListingURL)
	lead.Notes = req.Notes

	if h.enrich.IsConfigured() {
		if strategy, err := h.enrich.AnalyzeLead(r.Context(), listing); err != nil {
			h.logger.Warn().Err(err).Str("url", req.ListingURL).Msg("Lead strategy generation skipped")
		} else {
			lead.Strategy = strategy.Raw
		}
	}

	if err := h.leads.StoreLead(r.Context(), lead); err != nil {
		h.logger.Error().Err(err).Msg("Failed to store lead")
		WriteError(w, http.StatusInternalServerError, "Failed to store lead")
		return
	}

	WriteJSON(w, http.StatusCreated, lead)
}

// ListHandler returns leads, optionally filtered by status:
// GET /api/leads?status=contacted
func (h *LeadHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var (
		leads []*models.Lead
		err   error
	)

	if status := r.URL.Query().Get("status"); status != "" {
		if !models.IsValidLeadStatus(models.LeadStatus(status)) {
			WriteError(w, http.StatusBadRequest, "Unknown lead status: "+status)
			return
		}
		leads, err = h.leads.GetLeadsByStatus(r.Context(), models.LeadStatus(status))
	} else {
		leads, err = h.leads.GetAllLeads(r.Context())
	}

	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list leads")
		WriteError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
		"count": len(leads),
	})
}

// LeadsHandler dispatches /api/leads by method
func (h *LeadHandler) LeadsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListHandler(w, r)
	case http.MethodPost:
		h.CreateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// LeadByIDHandler dispatches /api/leads/{id} by method
func (h *LeadHandler) LeadByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/leads/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Lead ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getLead(w, r, id)
	case http.MethodPut:
		h.updateLead(w, r, id)
	case http.MethodDelete:
		h.deleteLead(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LeadHandler) getLead(w http.ResponseWriter, r *http.Request, id string) {
	lead, err := h.leads.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, badgerstore.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error().Err(err).Str("lead_id", id).Msg("Failed to get lead")
		WriteError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}
	WriteJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) updateLead(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	lead, err := h.leads.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, badgerstore.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error().Err(err).Str("lead_id", id).Msg("Failed to get lead")
		WriteError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}

	if req.Status != nil {
		if !models.IsValidLeadStatus(models.LeadStatus(*req.Status)) {
			WriteError(w, http.StatusBadRequest, "Unknown lead status: "+*req.Status)
			return
		}
		lead.Status = models.LeadStatus(*req.Status)
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	lead.UpdatedAt = time.Now()

	if err := h.leads.StoreLead(r.Context(), lead); err != nil {
		h.logger.Error().Err(err).Str("lead_id", id).Msg("Failed to update lead")
		WriteError(w, http.StatusInternalServerError, "Failed to update lead")
		return
	}

	WriteJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) deleteLead(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.leads.DeleteLead(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("lead_id", id).Msg("Failed to delete lead")
		WriteError(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}
	WriteSuccess(w, "Lead deleted")
}
