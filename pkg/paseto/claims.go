package pasetotoken

import "time"

// Claims is the app-facing token payload.
type Claims struct {
	Role      string
	UserID    uint
	SessionID string

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
	Subject   string
}

func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
