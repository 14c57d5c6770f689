package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Redirect route (click counting)
	mux.HandleFunc("/go/", s.app.LinkHandler.RedirectHandler)

	// API routes - Links
	mux.HandleFunc("/api/links", s.app.LinkHandler.LinksHandler)          // GET (list), POST (create)
	mux.HandleFunc("/api/links/bulk", s.app.LinkHandler.BulkCreateHandler) // POST
	mux.HandleFunc("/api/links/", s.app.LinkHandler.LinkByIDHandler)       // GET/PUT/DELETE /{id}

	// API routes - Maintenance
	mux.HandleFunc("/api/maintenance/run", s.app.MaintenanceHandler.RunHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
