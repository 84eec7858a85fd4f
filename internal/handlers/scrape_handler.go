package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/interfaces"
)

// ScrapeHandler exposes batch ingestion over HTTP
type ScrapeHandler struct {
	ingest   interfaces.IngestService
	batches  interfaces.BatchStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewScrapeHandler creates a scrape handler
func NewScrapeHandler(ingest interfaces.IngestService, batches interfaces.BatchStorage, logger arbor.ILogger) *ScrapeHandler {
	return &ScrapeHandler{
		ingest:   ingest,
		batches:  batches,
		validate: validator.New(),
		logger:   logger,
	}
}

// ScrapeRequest is the POST /api/scrape payload
type ScrapeRequest struct {
	URL      string `json:"url" validate:"required,url"`
	MaxItems int    `json:"max_items" validate:"gte=0"`
}

// ScrapeStartHandler accepts a category URL and starts a batch.
// Responds 202 with the batch ID before any scraping happens.
func (h *ScrapeHandler) ScrapeStartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	batchID, err := h.ingest.ScrapeCategory(r.Context(), req.URL, req.MaxItems)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":   "started",
		"batch_id": batchID,
	})
}

// GetBatchHandler returns a single batch by ID: GET /api/batches/{id}
func (h *ScrapeHandler) GetBatchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/batches/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Batch ID required")
		return
	}

	batch, err := h.ingest.GetBatch(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Batch not found")
		return
	}

	WriteJSON(w, http.StatusOK, batch)
}

// ListBatchesHandler returns recent batches: GET /api/batches
func (h *ScrapeHandler) ListBatchesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit, _ := GetPaginationParams(r)
	batches, err := h.batches.GetRecentBatches(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list batches")
		WriteError(w, http.StatusInternalServerError, "Failed to list batches")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"batches": batches,
		"count":   len(batches),
	})
}
