package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Scraping
	mux.HandleFunc("/api/scrape", s.app.ScrapeHandler.ScrapeStartHandler) // POST - start a batch
	mux.HandleFunc("/api/batches", s.app.ScrapeHandler.ListBatchesHandler)
	mux.HandleFunc("/api/batches/", s.app.ScrapeHandler.GetBatchHandler) // GET /{id}

	// API routes - Listings
	mux.HandleFunc("/api/listings", s.app.ListingHandler.ListHandler)
	mux.HandleFunc("/api/listing", s.handleListingRoute) // GET/DELETE ?url=
	mux.HandleFunc("/api/opportunities", s.app.ListingHandler.OpportunitiesHandler)

	// API routes - Leads
	mux.HandleFunc("/api/leads", s.app.LeadHandler.LeadsHandler)     // GET (list), POST (create)
	mux.HandleFunc("/api/leads/", s.app.LeadHandler.LeadByIDHandler) // GET/PUT/DELETE /{id}

	// API routes - System
	mux.HandleFunc("/api/stats", s.app.StatsHandler.GetStatsHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}

// handleListingRoute dispatches /api/listing by method
func (s *Server) handleListingRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.ListingHandler.GetHandler(w, r)
	case http.MethodDelete:
		s.app.ListingHandler.DeleteHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
