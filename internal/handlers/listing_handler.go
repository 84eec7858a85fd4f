package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/interfaces"
	badgerstore "github.com/papajo/clmonetizer-app/internal/storage/badger"
)

// ListingHandler exposes stored listings over HTTP
type ListingHandler struct {
	listings interfaces.ListingStorage
	logger   arbor.ILogger
}

// NewListingHandler creates a listing handler
func NewListingHandler(listings interfaces.ListingStorage, logger arbor.ILogger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger}
}

// ListHandler returns stored listings, newest first: GET /api/listings
func (h *ListingHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit, offset := GetPaginationParams(r)
	listings, err := h.listings.GetAllListings(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list listings")
		WriteError(w, http.StatusInternalServerError, "Failed to list listings")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"count":    len(listings),
		"limit":    limit,
		"offset":   offset,
	})
}

// OpportunitiesHandler returns listings flagged as arbitrage opportunities:
// GET /api/opportunities
func (h *ListingHandler) OpportunitiesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opportunities, err := h.listings.GetOpportunities(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list opportunities")
		WriteError(w, http.StatusInternalServerError, "Failed to list opportunities")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opportunities,
		"count":         len(opportunities),
	})
}

// GetHandler returns one listing by URL: GET /api/listing?url=...
// The listing key is itself a URL, so it travels as a query parameter
// rather than a path segment.
func (h *ListingHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		WriteError(w, http.StatusBadRequest, "url query parameter required")
		return
	}

	listing, err := h.listings.GetListing(r.Context(), url)
	if err != nil {
		if errors.Is(err, badgerstore.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Listing not found")
			return
		}
		h.logger.Error().Err(err).Str("url", url).Msg("Failed to get listing")
		WriteError(w, http.StatusInternalServerError, "Failed to get listing")
		return
	}

	WriteJSON(w, http.StatusOK, listing)
}

// DeleteHandler removes one listing by URL: DELETE /api/listing?url=...
func (h *ListingHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		WriteError(w, http.StatusBadRequest, "url query parameter required")
		return
	}

	if err := h.listings.DeleteListing(r.Context(), url); err != nil {
		h.logger.Error().Err(err).Str("url", url).Msg("Failed to delete listing")
		WriteError(w, http.StatusInternalServerError, "Failed to delete listing")
		return
	}

	WriteSuccess(w, "Listing deleted")
}
