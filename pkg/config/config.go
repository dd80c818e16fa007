// Package config provides configuration types and loading for the agent
// server. Configuration comes from an optional agent.yaml (or .json) file
// with environment variable overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/interactionlog"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
	ErrEmptyFile    = errors.New("configuration file is empty")
)

// Environment variables honored by ApplyEnv. PORT matches the starter
// template convention; the X402_* variables configure payment gating.
const (
	EnvPort          = "PORT"
	EnvX402Network   = "X402_NETWORK"
	EnvX402Recipient = "X402_RECIPIENT"
)

// Config is the full server configuration.
type Config struct {
	// Port is the HTTP listen port
	Port int `json:"port" yaml:"port"`
	// Host is the bind address ("" binds all interfaces)
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// RegistrationPath is the path to registration.json
	RegistrationPath string `json:"registrationPath,omitempty" yaml:"registrationPath,omitempty"`
	// AgentCardPath is the path to the A2A agent card; empty falls back to RegistrationPath
	AgentCardPath string `json:"agentCardPath,omitempty" yaml:"agentCardPath,omitempty"`
	// PublicDir is the directory served under /public/
	PublicDir string `json:"publicDir,omitempty" yaml:"publicDir,omitempty"`
	// DashboardPath is an optional HTML file served at /
	DashboardPath string `json:"dashboardPath,omitempty" yaml:"dashboardPath,omitempty"`

	// InteractionMaxSize bounds the in-memory interaction log
	InteractionMaxSize int `json:"interactionMaxSize,omitempty" yaml:"interactionMaxSize,omitempty"`

	Log       LogConfig       `json:"log,omitempty" yaml:"log,omitempty"`
	CORS      CORSConfig      `json:"cors,omitempty" yaml:"cors,omitempty"`
	RateLimit RateLimitConfig `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	X402      X402Config      `json:"x402,omitempty" yaml:"x402,omitempty"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is "text" or "json"
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// CORSConfig controls cross-origin response headers.
type CORSConfig struct {
	// AllowedOrigins lists allowed Origin values; ["*"] allows any
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// RateLimitConfig controls per-client request throttling.
type RateLimitConfig struct {
	// Enabled turns rate limiting on
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Rate is sustained requests per second per client IP
	Rate float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	// Burst is the short-term allowance per client IP
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// X402Config controls x402 micropayment gating.
type X402Config struct {
	// Enabled turns payment gating on for protected routes
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Network is the payment network (base, avalanche, ethereum, ...)
	Network string `json:"network,omitempty" yaml:"network,omitempty"`
	// Recipient is the payout address; required when enabled
	Recipient string `json:"recipient,omitempty" yaml:"recipient,omitempty"`
	// Asset overrides the default USDC contract for the network
	Asset string `json:"asset,omitempty" yaml:"asset,omitempty"`
	// Price is the charge per request in asset base units
	Price int64 `json:"price,omitempty" yaml:"price,omitempty"`
	// Description is shown in the payment challenge
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Facilitator is the payment verification service base URL
	Facilitator string `json:"facilitator,omitempty" yaml:"facilitator,omitempty"`
	// VerifyTimeout bounds the facilitator verification call
	VerifyTimeout time.Duration `json:"verifyTimeout,omitempty" yaml:"verifyTimeout,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Port:               3000,
		RegistrationPath:   "registration.json",
		PublicDir:          "public",
		InteractionMaxSize: interactionlog.DefaultMaxSize,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Rate:  10,
			Burst: 30,
		},
		X402: X402Config{
			Network:       "avalanche",
			Price:         10000,
			VerifyTimeout: 30 * time.Second,
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path returns defaults with env overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvX402Network); v != "" {
		c.X402.Network = v
	}
	if v := os.Getenv(EnvX402Recipient); v != "" {
		c.X402.Recipient = v
		c.X402.Enabled = true
	}
	return nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 1-65535", c.Port)
	}
	if c.InteractionMaxSize <= 0 {
		return fmt.Errorf("invalid interactionMaxSize %d: must be positive", c.InteractionMaxSize)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			return fmt.Errorf("invalid rateLimit.rate %v: must be positive", c.RateLimit.Rate)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid rateLimit.burst %d: must be positive", c.RateLimit.Burst)
		}
	}
	if c.X402.Enabled && c.X402.Recipient == "" {
		return errors.New("x402 enabled but no recipient configured")
	}
	return nil
}
