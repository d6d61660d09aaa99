// Package paystack provides a minimal HTTP client for the Paystack payment gateway.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mediqhq/mediq_backend/config"
)

var (
	ErrInitializeFailed   = errors.New("paystack: transaction initialize failed")
	ErrVerifyFailed       = errors.New("paystack: transaction verify failed")
	ErrNotSuccessful      = errors.New("paystack: transaction not successful")
	ErrUnexpectedResponse = errors.New("paystack: unexpected response from gateway")
)

// Client is a lightweight Paystack HTTP client.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// New creates a Client from config.
func New(cfg config.PaystackConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Client{
		secretKey:  cfg.SecretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// InitializeResult is the outcome of a successful transaction initialize.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string

	// Raw is the gateway's full JSON response, stored alongside the payment.
	Raw json.RawMessage
}

// Initialize starts a transaction. Amount is in the currency's minor unit
// (kobo for NGN), so callers multiply a major-unit fee by 100 first.
func (c *Client) Initialize(ctx context.Context, email, reference string, amountMinor int64, callbackURL string) (*InitializeResult, error) {
	reqBody := map[string]any{
		"email":     email,
		"amount":    amountMinor,
		"reference": reference,
	}
	if callbackURL != "" {
		reqBody["callback_url"] = callbackURL
	}

	raw, err := c.post(ctx, "/transaction/initialize", reqBody)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	if !resp.Status {
		return nil, fmt.Errorf("%w: %s", ErrInitializeFailed, resp.Message)
	}
	if resp.Data.AuthorizationURL == "" {
		return nil, ErrUnexpectedResponse
	}

	return &InitializeResult{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
		Raw:              raw,
	}, nil
}

// VerifyResult is the outcome of a transaction verify call.
type VerifyResult struct {
	Status      string // "success", "failed", "abandoned", ...
	Reference   string
	AmountMinor int64
	Channel     string
	PaidAt      string

	Raw json.RawMessage
}

// Success reports whether the gateway settled the transaction.
func (r *VerifyResult) Success() bool {
	return r.Status == "success"
}

// Verify looks up a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	raw, err := c.get(ctx, "/transaction/verify/"+url.PathEscape(reference))
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Status    string `json:"status"`
			Reference string `json:"reference"`
			Amount    int64  `json:"amount"`
			Channel   string `json:"channel"`
			PaidAt    string `json:"paid_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	if !resp.Status {
		return nil, fmt.Errorf("%w: %s", ErrVerifyFailed, resp.Message)
	}

	return &VerifyResult{
		Status:      resp.Data.Status,
		Reference:   resp.Data.Reference,
		AmountMinor: resp.Data.Amount,
		Channel:     resp.Data.Channel,
		PaidAt:      resp.Data.PaidAt,
		Raw:         raw,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return raw, nil
}
