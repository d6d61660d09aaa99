// Package reqctx provides centralized request context management.
//
// All context keys are private unexported types to prevent collisions.
// Access is provided through type-safe getter and setter functions.
//
// Contracts:
//
//   - RequestMeta is always set by HTTP middleware for all requests
//   - Actor is set only for authenticated requests (token present and valid)
package reqctx

import (
	"context"
	"time"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyActor
)

// Actor identifies who is performing an operation. Services receive it
// explicitly so authority checks never depend on ambient globals.
type Actor struct {
	// Role is one of model.RoleAdmin, model.RoleDoctor, model.RolePatient.
	Role string

	// ID is the actor's row ID in its role table.
	ID uint

	// SessionID is the server-side session key, when one exists.
	SessionID string
}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, keyActor, actor)
}

// ActorFromContext retrieves the actor from the context.
// Returns nil if the request is not authenticated.
func ActorFromContext(ctx context.Context) *Actor {
	v := ctx.Value(keyActor)
	if v == nil {
		return nil
	}
	actor, ok := v.(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// MustActor retrieves the actor from the context.
// Panics if not present. Use only behind auth middleware.
func MustActor(ctx context.Context) *Actor {
	actor := ActorFromContext(ctx)
	if actor == nil {
		panic("reqctx: actor not found in context")
	}
	return actor
}

// IsAuthenticated returns true if an actor exists in the context.
func IsAuthenticated(ctx context.Context) bool {
	return ActorFromContext(ctx) != nil
}

// RequestMeta holds per-request metadata set by HTTP middleware.
type RequestMeta struct {
	// RequestID is a unique identifier for this request.
	// Format: UUID v4 string.
	RequestID string

	// ClientIP is the client's IP address.
	// May be from X-Forwarded-For or direct connection.
	ClientIP string

	// UserAgent is the client's User-Agent header value.
	UserAgent string

	// RequestedAt is when the request was received.
	RequestedAt time.Time
}

// WithRequestMeta stores RequestMeta in the context.
func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

// RequestMetaFromContext retrieves RequestMeta from the context.
// Returns nil, false if not set.
func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	v := ctx.Value(keyRequestMeta)
	if v == nil {
		return nil, false
	}
	meta, ok := v.(*RequestMeta)
	return meta, ok
}

// RequestIDFromContext is a convenience function to get just the request ID.
// Returns empty string if RequestMeta is not set.
func RequestIDFromContext(ctx context.Context) string {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok || meta == nil {
		return ""
	}
	return meta.RequestID
}
