package ref

import (
	"strings"
	"testing"
)

func TestNewPayment(t *testing.T) {
	r, err := NewPayment()
	if err != nil {
		t.Fatalf("NewPayment() error = %v", err)
	}

	if !strings.HasPrefix(r, PaymentPrefix) {
		t.Errorf("NewPayment() = %q, want %q prefix", r, PaymentPrefix)
	}
	if len(r) != len(PaymentPrefix)+PaymentByteLength*2 {
		t.Errorf("NewPayment() length = %d, want %d", len(r), len(PaymentPrefix)+PaymentByteLength*2)
	}
	if r != strings.ToUpper(r) {
		t.Errorf("NewPayment() = %q, want uppercase", r)
	}
}

func TestNewPaymentUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		r, err := NewPayment()
		if err != nil {
			t.Fatalf("NewPayment() error = %v", err)
		}
		if _, dup := seen[r]; dup {
			t.Fatalf("duplicate reference generated: %s", r)
		}
		seen[r] = struct{}{}
	}
}

func TestIsPayment(t *testing.T) {
	valid, err := NewPayment()
	if err != nil {
		t.Fatalf("NewPayment() error = %v", err)
	}

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"generated reference", valid, true},
		{"wrong prefix", "XX-0123456789ABCDEF0123", false},
		{"too short", "MQ-ABC", false},
		{"lowercase hex", "MQ-" + strings.ToLower(strings.TrimPrefix(valid, "MQ-")), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPayment(tt.in); got != tt.want {
				t.Errorf("IsPayment(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
