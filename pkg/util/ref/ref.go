// Package ref generates opaque references used for payment tracking.
package ref

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// PaymentPrefix marks references as originating from this system.
const PaymentPrefix = "MQ-"

// PaymentByteLength is the number of random bytes in a payment reference
// (produces 20 hex chars after the prefix).
const PaymentByteLength = 10

var ErrInvalidLength = errors.New("invalid reference length")

// NewPayment creates a payment reference like "MQ-3F9A0C...".
// References are unique per generation; transfer payments rotate to a fresh
// one on each retry while cash payments keep theirs.
func NewPayment() (string, error) {
	token, err := SecureToken(PaymentByteLength)
	if err != nil {
		return "", err
	}
	return PaymentPrefix + strings.ToUpper(token), nil
}

// SecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func SecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// IsPayment reports whether s looks like a reference minted by NewPayment.
func IsPayment(s string) bool {
	if !strings.HasPrefix(s, PaymentPrefix) {
		return false
	}
	rest := strings.TrimPrefix(s, PaymentPrefix)
	if len(rest) != PaymentByteLength*2 {
		return false
	}
	for _, r := range rest {
		if !((r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}
