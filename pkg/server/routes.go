// Route registration for the agent server.

package server

import (
	"net/http"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Dashboard and health
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// ERC-8004 discovery
	mux.HandleFunc("GET /registration.json", s.handleRegistration)
	mux.HandleFunc("GET /.well-known/agent-card.json", s.handleAgentCard)
	mux.HandleFunc("GET /.well-known/agent-registration.json", s.handleDomainVerification)
	mux.HandleFunc("GET /oasf", s.handleOASF)

	// Static files (agent image etc.)
	mux.HandleFunc("GET /public/{filename}", s.handleStatic)

	// Agent protocols
	mux.Handle("POST /mcp", s.mcpHandler)
	mux.HandleFunc("POST /a2a/ask", s.handleA2AAsk)

	// Interaction log
	mux.HandleFunc("GET /api/interactions", s.handleListInteractions)
	mux.HandleFunc("GET /api/interactions/stats", s.handleInteractionStats)
	mux.HandleFunc("DELETE /api/interactions", s.handleClearInteractions)

	// Paid endpoints
	premium := http.HandlerFunc(s.handlePremium)
	if s.verifier != nil {
		mux.Handle("POST /api/premium", s.verifier.Middleware(premium))
	} else {
		mux.Handle("POST /api/premium", premium)
	}
}
