package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecipient = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

func testVerifier(t *testing.T, facilitatorStatus int) (*Verifier, *httptest.Server) {
	t.Helper()
	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/verify", r.URL.Path)
		w.WriteHeader(facilitatorStatus)
	}))
	t.Cleanup(facilitator.Close)

	v := NewVerifier(Config{
		Price:       10000,
		Network:     "base",
		Recipient:   testRecipient,
		Facilitator: facilitator.URL,
	})
	return v, facilitator
}

func encodePayment(t *testing.T, to string, amount string, validBefore int64) string {
	t.Helper()
	payment := Payment{
		X402Version: 1,
		Scheme:      "exact",
		Network:     "base",
		Payload: PaymentPayload{
			Signature: "0xsig",
			Payload: Authorization{
				From:        "0xPayer",
				To:          to,
				Amount:      amount,
				ValidBefore: validBefore,
			},
		},
	}
	data, err := json.Marshal(payment)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(data)
}

func gatedRequest(v *Verifier, header string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "premium")
	})
	req := httptest.NewRequest(http.MethodPost, "/api/premium", nil)
	if header != "" {
		req.Header.Set(PaymentHeader, header)
	}
	w := httptest.NewRecorder()
	v.Middleware(next).ServeHTTP(w, req)
	return w
}

func TestMissingPaymentChallenges(t *testing.T) {
	v, _ := testVerifier(t, http.StatusOK)

	w := gatedRequest(v, "")
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var challenge Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	assert.Equal(t, "Payment Required", challenge.Error)
	assert.Equal(t, 1, challenge.X402.Version)
	assert.Equal(t, "10000", challenge.X402.Amount)
	assert.Equal(t, testRecipient, challenge.X402.Recipient)
	assert.Equal(t, DefaultUSDC["base"], challenge.X402.Asset)
}

func TestValidPaymentPasses(t *testing.T) {
	v, _ := testVerifier(t, http.StatusOK)
	header := encodePayment(t, testRecipient, "10000", time.Now().Add(time.Hour).Unix())

	w := gatedRequest(v, header)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "premium", w.Body.String())
}

func TestRecipientCaseInsensitive(t *testing.T) {
	v, _ := testVerifier(t, http.StatusOK)
	header := encodePayment(t, "0xabcdef0123456789abcdef0123456789abcdef01", "10000", time.Now().Add(time.Hour).Unix())

	w := gatedRequest(v, header)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRejections(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"not base64", func(t *testing.T) string { return "!!!not-base64!!!" }},
		{"not json", func(t *testing.T) string { return base64.StdEncoding.EncodeToString([]byte("{no")) }},
		{"wrong version", func(t *testing.T) string {
			data, _ := json.Marshal(Payment{X402Version: 2})
			return base64.StdEncoding.EncodeToString(data)
		}},
		{"wrong recipient", func(t *testing.T) string {
			return encodePayment(t, "0x0000000000000000000000000000000000000000", "10000", future)
		}},
		{"amount too low", func(t *testing.T) string {
			return encodePayment(t, testRecipient, "9999", future)
		}},
		{"amount not numeric", func(t *testing.T) string {
			return encodePayment(t, testRecipient, "lots", future)
		}},
		{"expired", func(t *testing.T) string {
			return encodePayment(t, testRecipient, "10000", time.Now().Add(-time.Minute).Unix())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := testVerifier(t, http.StatusOK)
			w := gatedRequest(v, tt.header(t))
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid or expired payment")
		})
	}
}

func TestFacilitatorRejects(t *testing.T) {
	v, _ := testVerifier(t, http.StatusBadRequest)
	header := encodePayment(t, testRecipient, "10000", time.Now().Add(time.Hour).Unix())

	w := gatedRequest(v, header)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFacilitatorUnreachable(t *testing.T) {
	v, facilitator := testVerifier(t, http.StatusOK)
	facilitator.Close()
	header := encodePayment(t, testRecipient, "10000", time.Now().Add(time.Hour).Unix())

	w := gatedRequest(v, header)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv(EnvNetwork, "")
	t.Setenv(EnvRecipient, "")

	cfg := Config{Price: 500}
	cfg.ApplyDefaults()
	assert.Equal(t, "avalanche", cfg.Network)
	assert.Equal(t, DefaultUSDC["avalanche"], cfg.Asset)
	assert.Equal(t, DefaultFacilitator, cfg.Facilitator)
	assert.Equal(t, "Premium endpoint access", cfg.Description)
	assert.Equal(t, 30*time.Second, cfg.VerifyTimeout)
}

func TestApplyDefaultsFromEnv(t *testing.T) {
	t.Setenv(EnvNetwork, "polygon")
	t.Setenv(EnvRecipient, "0xEnvWallet")

	cfg := Config{Price: 500}
	cfg.ApplyDefaults()
	assert.Equal(t, "polygon", cfg.Network)
	assert.Equal(t, DefaultUSDC["polygon"], cfg.Asset)
	assert.Equal(t, "0xEnvWallet", cfg.Recipient)
}

func TestApplyDefaultsUnknownNetwork(t *testing.T) {
	cfg := Config{Price: 500, Network: "testnet-9000"}
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultUSDC["avalanche"], cfg.Asset)
}
