// Package x402 gates HTTP endpoints behind x402 micropayments. Requests
// without an X-PAYMENT header receive a 402 challenge describing the
// required payment; requests with one are checked locally and then
// verified against a facilitator service.
package x402

import (
	"os"
	"time"
)

// DefaultFacilitator is the payment verification service used when none
// is configured.
const DefaultFacilitator = "https://facilitator.ultravioletadao.xyz"

// PaymentHeader is the request header carrying a base64-encoded payment.
const PaymentHeader = "X-PAYMENT"

// DefaultUSDC maps network names to their canonical USDC contract.
var DefaultUSDC = map[string]string{
	"avalanche": "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
	"base":      "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	"ethereum":  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	"arbitrum":  "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
	"optimism":  "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
	"polygon":   "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
}

// Environment variables honored by Config.ApplyDefaults.
const (
	EnvNetwork   = "X402_NETWORK"
	EnvRecipient = "X402_RECIPIENT"
)

// Config describes the payment requirement for a gated endpoint.
type Config struct {
	// Price is the required amount in asset base units
	Price int64
	// Network is the payment network
	Network string
	// Asset is the payment token contract; empty resolves to the
	// network's USDC
	Asset string
	// Recipient is the payout address
	Recipient string
	// Facilitator is the verification service base URL
	Facilitator string
	// Description is shown in the 402 challenge
	Description string
	// VerifyTimeout bounds the facilitator call
	VerifyTimeout time.Duration
}

// ApplyDefaults fills unset fields from the environment and package
// defaults, mirroring the starter template's resolution order.
func (c *Config) ApplyDefaults() {
	if c.Network == "" {
		c.Network = os.Getenv(EnvNetwork)
	}
	if c.Network == "" {
		c.Network = "avalanche"
	}
	if c.Asset == "" {
		if asset, ok := DefaultUSDC[c.Network]; ok {
			c.Asset = asset
		} else {
			c.Asset = DefaultUSDC["avalanche"]
		}
	}
	if c.Recipient == "" {
		c.Recipient = os.Getenv(EnvRecipient)
	}
	if c.Facilitator == "" {
		c.Facilitator = DefaultFacilitator
	}
	if c.Description == "" {
		c.Description = "Premium endpoint access"
	}
	if c.VerifyTimeout <= 0 {
		c.VerifyTimeout = 30 * time.Second
	}
}

// Challenge is the body of a 402 response.
type Challenge struct {
	Error string          `json:"error"`
	X402  ChallengeDetail `json:"x402"`
}

// ChallengeDetail describes what the client must pay.
type ChallengeDetail struct {
	Version     int    `json:"version"`
	Amount      string `json:"amount"`
	Asset       string `json:"asset"`
	Recipient   string `json:"recipient"`
	Network     string `json:"network"`
	Facilitator string `json:"facilitator"`
	Description string `json:"description"`
}

// Payment is the decoded X-PAYMENT header.
type Payment struct {
	X402Version int            `json:"x402Version"`
	Scheme      string         `json:"scheme,omitempty"`
	Network     string         `json:"network,omitempty"`
	Payload     PaymentPayload `json:"payload"`
}

// PaymentPayload wraps the signed transfer authorization.
type PaymentPayload struct {
	Signature string        `json:"signature,omitempty"`
	Payload   Authorization `json:"payload"`
}

// Authorization is the transfer the payer signed.
type Authorization struct {
	From        string `json:"from,omitempty"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	ValidBefore int64  `json:"validBefore"`
}
