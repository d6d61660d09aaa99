package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return conflict(c, err.Error())
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrUnknownRole):
		return badRequest(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrWrongPassword):
		return unauthorized(c)
	default:
		return internalError(c)
	}
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Gender      string `json:"gender"`
		DateOfBirth string `json:"date_of_birth"`
		Address     string `json:"address"`
		Password    string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	patient, err := h.svc.RegisterPatient(c.Context(), auth.RegisterRequest{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Email:       body.Email,
		Phone:       body.Phone,
		Gender:      body.Gender,
		DateOfBirth: body.DateOfBirth,
		Address:     body.Address,
		Password:    body.Password,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return created(c, fiber.Map{
		"id":    patient.ID,
		"email": patient.Email,
	})
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Role     string `json:"role"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Role == "" {
		body.Role = model.RolePatient
	}

	tokens, err := h.svc.Login(c.Context(), auth.LoginRequest{
		Role:     body.Role,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	if err := h.svc.Logout(c.Context(), a.SessionID); err != nil {
		return internalError(c)
	}
	return noContent(c)
}

// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	err := h.svc.ChangePassword(c.Context(), a.Role, a.ID, auth.ChangePasswordRequest{
		Current: body.CurrentPassword,
		New:     body.NewPassword,
	})
	if err != nil {
		return mapAuthError(c, err)
	}
	return noContent(c)
}
