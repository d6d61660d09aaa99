package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/internal/model"
	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
	"github.com/mediqhq/mediq_backend/pkg/util/password"
	"github.com/mediqhq/mediq_backend/pkg/util/ref"
)

// defaultPhoneRegion is assumed when a phone number has no country prefix.
const defaultPhoneRegion = "NG"

// redisKeySession returns the Redis key for a session.
func redisKeySession(sessionID string) string { return "session:" + sessionID }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Gender      string
	DateOfBirth string // 2006-01-02, optional
	Address     string
	Password    string
}

type LoginRequest struct {
	Role     string // patient, doctor, admin
	Email    string
	Password string
}

type ChangePasswordRequest struct {
	Current string
	New     string
}

type AuthTokens struct {
	AccessToken string
	SessionID   string
	ExpiresIn   int64 // seconds until the access token expires
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// RegisterPatient creates a patient account. Doctors and admins are
	// provisioned by the back office, never self-registered.
	RegisterPatient(ctx context.Context, req RegisterRequest) (*model.Patient, error)

	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID string) error

	// SessionAlive reports whether a session still exists server-side.
	SessionAlive(ctx context.Context, sessionID string) (bool, error)

	ChangePassword(ctx context.Context, role string, userID uint, req ChangePasswordRequest) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	db     *gorm.DB
	rdb    *redis.Client
	paseto *pasetotoken.Manager
	cfg    *config.Config
}

func New(db *gorm.DB, rdb *redis.Client, paseto *pasetotoken.Manager, cfg *config.Config) Service {
	return &authService{db: db, rdb: rdb, paseto: paseto, cfg: cfg}
}

func (s *authService) RegisterPatient(ctx context.Context, req RegisterRequest) (*model.Patient, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&model.Patient{}).
		Where("email = ?", email).
		Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	patient := model.Patient{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Phone:        phone,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &patient, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var (
		userID uint
		hash   string
	)

	switch req.Role {
	case model.RolePatient:
		var p model.Patient
		if err := s.findByEmail(ctx, &p, email); err != nil {
			return nil, err
		}
		userID, hash = p.ID, p.PasswordHash
	case model.RoleDoctor:
		var d model.Doctor
		if err := s.findByEmail(ctx, &d, email); err != nil {
			return nil, err
		}
		userID, hash = d.ID, d.PasswordHash
	case model.RoleAdmin:
		var a model.Admin
		if err := s.findByEmail(ctx, &a, email); err != nil {
			return nil, err
		}
		userID, hash = a.ID, a.PasswordHash
	default:
		return nil, ErrUnknownRole
	}

	if err := password.Verify(hash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, req.Role, userID)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	deleted, err := s.rdb.Del(ctx, redisKeySession(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		// Session already expired — not an error from the client's perspective
		slog.Debug("logout: session not found in Redis (already expired)", "session_id", sessionID)
	}
	return nil
}

func (s *authService) SessionAlive(ctx context.Context, sessionID string) (bool, error) {
	err := s.rdb.Get(ctx, redisKeySession(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get session: %w", err)
	}
	return true, nil
}

func (s *authService) ChangePassword(ctx context.Context, role string, userID uint, req ChangePasswordRequest) error {
	if len(req.New) < 8 {
		return ErrPasswordTooShort
	}

	var table any
	switch role {
	case model.RolePatient:
		table = &model.Patient{}
	case model.RoleDoctor:
		table = &model.Doctor{}
	case model.RoleAdmin:
		table = &model.Admin{}
	default:
		return ErrUnknownRole
	}

	var current string
	if err := s.db.WithContext(ctx).Model(table).
		Select("password_hash").
		Where("id = ?", userID).
		Scan(&current).Error; err != nil {
		return fmt.Errorf("get password hash: %w", err)
	}
	if current == "" {
		return ErrInvalidCredentials
	}

	if err := password.Verify(current, req.Current); err != nil {
		return ErrWrongPassword
	}

	hash, err := password.Hash(req.New)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(table).
		Where("id = ?", userID).
		Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) findByEmail(ctx context.Context, dest any, email string) error {
	err := s.db.WithContext(ctx).Where("email = ?", email).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("find account: %w", err)
	}
	return nil
}

func (s *authService) createSession(ctx context.Context, role string, userID uint) (*AuthTokens, error) {
	sessionID, err := ref.SecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	sessionTTL := time.Duration(s.cfg.Authentication.SessionTTLMinutes) * time.Minute
	accessTTL := time.Duration(s.cfg.Authentication.Paseto.AccessTTLMinutes) * time.Minute

	value := role + ":" + strconv.FormatUint(uint64(userID), 10)
	if err := s.rdb.Set(ctx, redisKeySession(sessionID), value, sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	access, err := s.paseto.Issue(role, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: access,
		SessionID:   sessionID,
		ExpiresIn:   int64(accessTTL.Seconds()),
	}, nil
}

// NormalizePhone validates a phone number and returns it in E.164 form.
// Numbers without a country prefix are assumed to be local.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
