// Package server provides the agent's HTTP surface: discovery endpoints
// for ERC-8004 registration metadata, an MCP endpoint for tool calls, an
// A2A question endpoint, and an interaction log API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/config"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/interactionlog"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/logging"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/mcp"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/ratelimit"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/registration"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/x402"
)

// Server is the agent HTTP server.
type Server struct {
	cfg          *config.Config
	reg          *registration.Document
	interactions *interactionlog.Log
	mcpHandler   *mcp.Handler
	verifier     *x402.Verifier
	limiter      *ratelimit.PerIPLimiter
	httpServer   *http.Server
	version      string
	startTime    time.Time
	log          *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a server from configuration and a registration document.
func New(cfg *config.Config, reg *registration.Document, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if reg == nil {
		return nil, fmt.Errorf("registration document is required")
	}

	s := &Server{
		cfg:       cfg,
		reg:       reg,
		version:   "dev",
		startTime: time.Now(),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.interactions == nil {
		log, err := interactionlog.New(interactionlog.WithMaxSize(cfg.InteractionMaxSize))
		if err != nil {
			return nil, fmt.Errorf("interaction log: %w", err)
		}
		s.interactions = log
	}

	if s.verifier == nil && cfg.X402.Enabled {
		s.verifier = x402.NewVerifier(x402.Config{
			Price:         cfg.X402.Price,
			Network:       cfg.X402.Network,
			Asset:         cfg.X402.Asset,
			Recipient:     cfg.X402.Recipient,
			Facilitator:   cfg.X402.Facilitator,
			Description:   cfg.X402.Description,
			VerifyTimeout: cfg.X402.VerifyTimeout,
		}, x402.WithLogger(s.log))
	}

	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(ratelimit.Config{
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		})
	}

	s.mcpHandler = mcp.NewHandler(
		mcp.ServerInfo{Name: s.reg.Name, Version: s.version},
		s.buildToolRegistry(),
		mcp.WithLogger(s.log),
	)

	return s, nil
}

// Interactions returns the server's interaction log.
func (s *Server) Interactions() *interactionlog.Log {
	return s.interactions
}

// Handler returns the full HTTP handler with middleware applied.
// Useful for tests that don't need a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.withMiddleware(mux)
}

// Start begins serving. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("agent server listening",
		"addr", addr,
		"agent", s.reg.Name,
		"version", s.version,
		"x402", s.verifier != nil)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.limiter != nil {
		s.limiter.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.running = false
	return nil
}
