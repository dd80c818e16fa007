// Option functions for configuring the agent server.

package server

import (
	"log/slog"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/interactionlog"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/x402"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVersion sets the version reported by health, OASF, and MCP.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithInteractionLog uses an existing interaction log instead of
// creating one from config.
func WithInteractionLog(log *interactionlog.Log) Option {
	return func(s *Server) {
		s.interactions = log
	}
}

// WithVerifier uses a pre-built payment verifier. Overrides the one
// built from config; useful for pointing tests at a stub facilitator.
func WithVerifier(v *x402.Verifier) Option {
	return func(s *Server) {
		s.verifier = v
	}
}
