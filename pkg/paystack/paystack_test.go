package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediqhq/mediq_backend/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.PaystackConfig{
		SecretKey: "sk_test_xxx",
		BaseURL:   srv.URL,
	})
}

func TestInitialize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_xxx" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["amount"].(float64) != 500000 {
			t.Errorf("amount = %v, want 500000", body["amount"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         "MQ-DEADBEEF00112233AABB",
			},
		})
	})

	res, err := client.Initialize(context.Background(), "jane@example.com", "MQ-DEADBEEF00112233AABB", 500000, "")
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if res.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("AuthorizationURL = %q", res.AuthorizationURL)
	}
	if res.Reference != "MQ-DEADBEEF00112233AABB" {
		t.Errorf("Reference = %q", res.Reference)
	}
	if len(res.Raw) == 0 {
		t.Error("Raw response not captured")
	}
}

func TestInitializeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid key",
		})
	})

	_, err := client.Initialize(context.Background(), "jane@example.com", "MQ-X", 1000, "")
	if !errors.Is(err, ErrInitializeFailed) {
		t.Errorf("expected ErrInitializeFailed, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/MQ-DEADBEEF00112233AABB" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"status":    "success",
				"reference": "MQ-DEADBEEF00112233AABB",
				"amount":    500000,
				"channel":   "card",
				"paid_at":   "2026-03-01T10:00:00.000Z",
			},
		})
	})

	res, err := client.Verify(context.Background(), "MQ-DEADBEEF00112233AABB")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !res.Success() {
		t.Error("expected Success() = true")
	}
	if res.AmountMinor != 500000 {
		t.Errorf("AmountMinor = %d, want 500000", res.AmountMinor)
	}
}

func TestVerifyUnsuccessfulTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"status":    "abandoned",
				"reference": "MQ-ABANDONED0011223344",
				"amount":    500000,
			},
		})
	})

	res, err := client.Verify(context.Background(), "MQ-ABANDONED0011223344")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if res.Success() {
		t.Error("expected Success() = false for abandoned transaction")
	}
}
