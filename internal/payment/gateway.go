// Package payment talks to the external payment provider.  The
// provider operates in the smallest currency unit; this package owns
// the conversion at the boundary so the rest of the system can stay in
// major units when talking to the adapter.  Verification is read-only
// against the provider; applying an outcome to local state is the
// booking service's reconciliation, never this package.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// GatewayError wraps any failure talking to the payment provider:
// network errors, timeouts, non-2xx responses and provider-side
// rejections all surface as this type so callers can treat the gateway
// as a single fallible dependency.
type GatewayError struct {
	Op      string // "initialize" or "verify"
	Message string // human-readable cause
	Err     error  // underlying error, if any
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("payment gateway %s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Authorization is the result of initialising a transaction: the URL
// the customer is redirected to and the reference used to correlate
// the eventual outcome.
type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the provider's view of a transaction.  Status is the
// provider's literal status string ("success", "failed", "abandoned",
// ...); RawResponse preserves the full payload for audit.
type VerifyResult struct {
	Reference   string
	Status      string
	AmountCents int64
	RawResponse string
}

// Success reports whether the provider considers the charge settled.
func (v *VerifyResult) Success() bool { return strings.EqualFold(v.Status, "success") }

// PaystackGateway is the HTTP client for the Paystack transaction API.
// The base URL is configurable so tests can point it at a local stub
// server.  All requests carry a bounded timeout; expiry is reported as
// a GatewayError like any other transport failure.
type PaystackGateway struct {
	secret  string
	baseURL string
	client  *http.Client
}

// NewPaystackGateway builds a gateway client.  An empty baseURL falls
// back to the public API endpoint.  A non-positive timeout defaults to
// ten seconds.
func NewPaystackGateway(secret, baseURL string, timeout time.Duration) *PaystackGateway {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaystackGateway{
		secret:  secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// MajorToMinor converts a major-unit amount (e.g. 200.00) to the
// smallest currency unit (20000), rounding to the nearest unit.
func MajorToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type initializePayload struct {
	Email     string            `json:"email"`
	Amount    int64             `json:"amount"` // smallest currency unit
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize creates a transaction with the provider and returns the
// authorization URL the customer must be redirected to.  The amount is
// supplied in major units and converted here.  Invalid input (amount
// ≤ 0, empty email) is rejected locally without a network call.
func (g *PaystackGateway) Initialize(ctx context.Context, email string, amountMajor float64, reference string, metadata map[string]string) (*Authorization, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &GatewayError{Op: "initialize", Message: "email is required"}
	}
	if amountMajor <= 0 {
		return nil, &GatewayError{Op: "initialize", Message: fmt.Sprintf("invalid amount %.2f", amountMajor)}
	}
	body, err := json.Marshal(initializePayload{
		Email:     email,
		Amount:    MajorToMinor(amountMajor),
		Reference: reference,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+g.secret)
	req.Header.Set("Content-Type", "application/json")

	var parsed initializeResponse
	if _, err := g.do(req, "initialize", &parsed); err != nil {
		return nil, err
	}
	if !parsed.Status {
		return nil, &GatewayError{Op: "initialize", Message: parsed.Message}
	}
	return &Authorization{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"` // smallest currency unit
	} `json:"data"`
}

// Verify fetches the provider's current view of a transaction.  It has
// no side effects on local state: callers feed the result into
// reconciliation, which owns idempotency.
func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, &GatewayError{Op: "verify", Message: "reference is required"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+g.secret)

	var parsed verifyResponse
	raw, err := g.do(req, "verify", &parsed)
	if err != nil {
		return nil, err
	}
	if !parsed.Status {
		return nil, &GatewayError{Op: "verify", Message: parsed.Message}
	}
	return &VerifyResult{
		Reference:   parsed.Data.Reference,
		Status:      parsed.Data.Status,
		AmountCents: parsed.Data.Amount,
		RawResponse: string(raw),
	}, nil
}

// do executes the request, enforces a 2xx status and decodes the body
// into out.  The raw body is returned for audit storage.
func (g *PaystackGateway) do(req *http.Request, op string, out interface{}) ([]byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &GatewayError{Op: op, Message: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Op: op, Message: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, &GatewayError{Op: op, Message: "decode response", Err: err}
	}
	return raw, nil
}
