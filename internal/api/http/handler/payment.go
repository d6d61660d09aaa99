package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/billing"
	"github.com/mediqhq/mediq_backend/pkg/paystack"
)

type PaymentHandler struct {
	svc billing.Service
}

func NewPaymentHandler(svc billing.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func mapBillingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrConsultationNotFound),
		errors.Is(err, billing.ErrPaymentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, billing.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, billing.ErrNoFee),
		errors.Is(err, billing.ErrInvalidMethod),
		errors.Is(err, billing.ErrNotCash):
		return unprocessable(c, err.Error())
	case errors.Is(err, billing.ErrAlreadyPaid):
		return conflict(c, err.Error())
	case errors.Is(err, billing.ErrNotSettled):
		return paymentRequired(c, err.Error())
	case errors.Is(err, paystack.ErrInitializeFailed),
		errors.Is(err, paystack.ErrVerifyFailed),
		errors.Is(err, paystack.ErrUnexpectedResponse):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment gateway error"})
	default:
		return internalError(c)
	}
}

// POST /api/v1/payments
func (h *PaymentHandler) Initiate(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	var body struct {
		ConsultationID uint   `json:"consultation_id"`
		Method         string `json:"method"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.ConsultationID == 0 {
		return badRequest(c, "consultation_id is required")
	}

	res, err := h.svc.Initiate(c.Context(), a, billing.InitiateRequest{
		ConsultationID: body.ConsultationID,
		Method:         model.PaymentMethod(body.Method),
	})
	if err != nil {
		return mapBillingError(c, err)
	}

	out := fiber.Map{"payment": res.Payment}
	if res.AuthorizationURL != "" {
		out["authorization_url"] = res.AuthorizationURL
	}
	return ok(c, out)
}

// GET /api/v1/payments/verify?reference=MQ-...
//
// The gateway redirects the patient here after checkout, so the route is
// public; the reference alone identifies the payment.
func (h *PaymentHandler) Verify(c fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return badRequest(c, "reference is required")
	}

	payment, err := h.svc.Verify(c.Context(), reference)
	if err != nil {
		return mapBillingError(c, err)
	}
	return ok(c, payment)
}

// PATCH /api/v1/payments/:id/confirm-cash
func (h *PaymentHandler) ConfirmCash(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid payment id")
	}

	payment, err := h.svc.ConfirmCash(c.Context(), a, id)
	if err != nil {
		return mapBillingError(c, err)
	}
	return ok(c, payment)
}

// GET /api/v1/payments
func (h *PaymentHandler) History(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	payments, totals, err := h.svc.ListForPatient(c.Context(), a.ID)
	if err != nil {
		return mapBillingError(c, err)
	}
	return ok(c, fiber.Map{
		"payments": payments,
		"totals":   totals,
	})
}

// GET /api/v1/consultations/:id/payments
func (h *PaymentHandler) ListForConsultation(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	consultationID, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid consultation id")
	}

	payments, err := h.svc.ListForConsultation(c.Context(), a, consultationID)
	if err != nil {
		return mapBillingError(c, err)
	}
	return ok(c, payments)
}
