package x402

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/httputil"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/logging"
)

// Verifier checks payments for gated endpoints.
type Verifier struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
	now    func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithHTTPClient sets the client used for facilitator calls.
func WithHTTPClient(client *http.Client) VerifierOption {
	return func(v *Verifier) {
		if client != nil {
			v.client = client
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if log != nil {
			v.log = log
		}
	}
}

// NewVerifier creates a payment verifier. Unset config fields are filled
// from the environment and package defaults.
func NewVerifier(cfg Config, opts ...VerifierOption) *Verifier {
	cfg.ApplyDefaults()
	v := &Verifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.VerifyTimeout,
		},
		log: logging.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Middleware gates the wrapped handler. Requests without a payment get
// a 402 challenge; requests with an invalid one get a 403.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(PaymentHeader)
		if header == "" {
			httputil.WriteJSON(w, http.StatusPaymentRequired, Challenge{
				Error: "Payment Required",
				X402: ChallengeDetail{
					Version:     1,
					Amount:      strconv.FormatInt(v.cfg.Price, 10),
					Asset:       v.cfg.Asset,
					Recipient:   v.cfg.Recipient,
					Network:     v.cfg.Network,
					Facilitator: v.cfg.Facilitator,
					Description: v.cfg.Description,
				},
			})
			return
		}

		if !v.Verify(r.Context(), header) {
			httputil.WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "Invalid or expired payment",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Verify decodes and checks a payment header. Local checks run first;
// only payments that pass them are sent to the facilitator.
func (v *Verifier) Verify(ctx context.Context, header string) bool {
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		v.log.Debug("payment header not base64", "error", err)
		return false
	}

	var payment Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		v.log.Debug("payment header not JSON", "error", err)
		return false
	}

	if payment.X402Version != 1 {
		v.log.Debug("unsupported x402 version", "version", payment.X402Version)
		return false
	}

	auth := payment.Payload.Payload
	if !strings.EqualFold(auth.To, v.cfg.Recipient) {
		v.log.Debug("payment recipient mismatch", "to", auth.To)
		return false
	}

	amount, err := strconv.ParseInt(auth.Amount, 10, 64)
	if err != nil || amount < v.cfg.Price {
		v.log.Debug("payment amount insufficient", "amount", auth.Amount, "required", v.cfg.Price)
		return false
	}

	if v.now().Unix() > auth.ValidBefore {
		v.log.Debug("payment expired", "validBefore", auth.ValidBefore)
		return false
	}

	return v.verifyRemote(ctx, raw)
}

// verifyRemote settles the payment with the facilitator. The original
// payment JSON is forwarded unchanged so signature bytes survive.
func (v *Verifier) verifyRemote(ctx context.Context, payment []byte) bool {
	url := strings.TrimSuffix(v.cfg.Facilitator, "/") + "/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payment))
	if err != nil {
		v.log.Error("building facilitator request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn("facilitator unreachable", "url", url, "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		v.log.Debug("facilitator rejected payment", "status", resp.StatusCode)
		return false
	}
	return true
}
