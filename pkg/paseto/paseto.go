package pasetotoken

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

type Config struct {
	Issuer   string
	Audience string

	AccessTTL time.Duration

	Implicit []byte
}

// Manager issues and verifies v4.local (encrypted) tokens.
type Manager struct {
	cfg   Config
	key   paseto.V4SymmetricKey
	parse paseto.Parser
}

func New(cfg Config, keyHex string) (*Manager, error) {
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.Audience == "" {
		return nil, ErrConfig{Msg: "Audience is required"}
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}

	key, err := paseto.V4SymmetricKeyFromHex(keyHex)
	if err != nil {
		return nil, ErrConfig{Msg: "invalid symmetric key hex: " + err.Error()}
	}

	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))
	p.AddRule(paseto.NotExpired())
	p.AddRule(paseto.ValidAt(time.Now()))

	return &Manager{cfg: cfg, key: key, parse: p}, nil
}

// NewKeyHex generates a fresh symmetric key as a hex string. Used by the
// system init command to bootstrap configuration.
func NewKeyHex() string {
	return paseto.NewV4SymmetricKey().ExportHex()
}

// Issue mints an access token for the given role, user, and session.
func (m *Manager) Issue(role string, userID uint, sessionID string) (string, error) {
	now := time.Now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(randHex(16))
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(m.cfg.AccessTTL))
	tok.SetSubject(strconv.FormatUint(uint64(userID), 10))

	tok.SetString("role", role)
	tok.SetString("uid", strconv.FormatUint(uint64(userID), 10))
	if sessionID != "" {
		tok.SetString("sid", sessionID)
	}

	return tok.V4Encrypt(m.key, m.cfg.Implicit), nil
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	tok, err := m.parse.ParseV4Local(m.key, tokenStr, m.cfg.Implicit)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	claims, err := extractClaims(tok, m.cfg.Issuer, m.cfg.Audience)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	return claims, nil
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func extractClaims(tok *paseto.Token, iss, aud string) (*Claims, error) {
	jti, err := tok.GetJti()
	if err != nil {
		return nil, err
	}

	sub, err := tok.GetSubject()
	if err != nil {
		return nil, err
	}

	iat, err := tok.GetIssuedAt()
	if err != nil {
		return nil, err
	}

	nbf, err := tok.GetNotBefore()
	if err != nil {
		return nil, err
	}

	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}

	out := &Claims{
		Issuer:    iss,
		Audience:  aud,
		TokenID:   jti,
		Subject:   sub,
		IssuedAt:  iat,
		NotBefore: nbf,
		ExpiresAt: exp,
	}

	role, err := tok.GetString("role")
	if err != nil {
		return nil, err
	}
	out.Role = role

	uidStr, err := tok.GetString("uid")
	if err != nil {
		return nil, err
	}
	uid, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil {
		return nil, err
	}
	out.UserID = uint(uid)

	// sid is optional
	if sid, err := tok.GetString("sid"); err == nil {
		out.SessionID = sid
	}

	return out, nil
}
