package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/paystack"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
	"github.com/mediqhq/mediq_backend/pkg/util/ref"
)

// Gateway is the slice of the Paystack client billing needs. Tests swap in
// a fake.
type Gateway interface {
	Initialize(ctx context.Context, email, reference string, amountMinor int64, callbackURL string) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type InitiateRequest struct {
	ConsultationID uint
	Method         model.PaymentMethod
}

// InitiateResult carries the payment row plus, for transfers, the gateway
// checkout URL the patient is redirected to.
type InitiateResult struct {
	Payment          *model.Payment
	AuthorizationURL string
}

// HistoryTotals summarise a payment list.
type HistoryTotals struct {
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Initiate starts (or resumes) payment for a billed consultation.
	// Calling it again while a payment is pending is safe: cash payments
	// keep their reference, transfer payments rotate to a fresh one so the
	// gateway never sees a reused reference. After a failed verify, a
	// transfer payment is replaced outright and a cash payment reopens
	// with its reference. A consultation with a successful payment
	// returns ErrAlreadyPaid.
	Initiate(ctx context.Context, actor *reqctx.Actor, req InitiateRequest) (*InitiateResult, error)

	// Verify settles a transfer payment after the patient returns from the
	// gateway. The raw gateway response is stored either way.
	Verify(ctx context.Context, reference string) (*model.Payment, error)

	// ConfirmCash marks a cash payment as paid. Cash is never settled
	// automatically; only back-office staff may confirm it.
	ConfirmCash(ctx context.Context, actor *reqctx.Actor, paymentID uint) (*model.Payment, error)

	GetByReference(ctx context.Context, reference string) (*model.Payment, error)
	ListForPatient(ctx context.Context, patientID uint) ([]model.Payment, HistoryTotals, error)
	ListForConsultation(ctx context.Context, actor *reqctx.Actor, consultationID uint) ([]model.Payment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type billingService struct {
	db          *gorm.DB
	gateway     Gateway
	callbackURL string
}

func New(db *gorm.DB, gateway Gateway, callbackURL string) Service {
	return &billingService{db: db, gateway: gateway, callbackURL: callbackURL}
}

func (s *billingService) Initiate(ctx context.Context, actor *reqctx.Actor, req InitiateRequest) (*InitiateResult, error) {
	if req.Method != model.PaymentMethodCash && req.Method != model.PaymentMethodTransfer {
		return nil, ErrInvalidMethod
	}

	var cons model.Consultation
	err := s.db.WithContext(ctx).First(&cons, req.ConsultationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, fmt.Errorf("get consultation: %w", err)
	}

	if actor.Role == model.RolePatient && actor.ID != cons.PatientID {
		return nil, ErrAccessDenied
	}
	if cons.Fee == nil || *cons.Fee <= 0 {
		return nil, ErrNoFee
	}

	var payment model.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One paid payment per consultation, enforced both here and by the
		// partial unique index.
		var paid int64
		err := tx.Model(&model.Payment{}).
			Where("consultation_id = ? AND status = ?", req.ConsultationID, model.PaymentPaid).
			Count(&paid).Error
		if err != nil {
			return fmt.Errorf("check paid payments: %w", err)
		}
		if paid > 0 {
			return ErrAlreadyPaid
		}

		// Pending and failed payments are both open for retry. Cash rows are
		// reused with their reference; failed transfer rows are deleted so
		// the retry starts clean with a reference Paystack has never seen.
		fresh := false
		err = tx.Where("consultation_id = ? AND status IN ?", req.ConsultationID,
			[]model.PaymentStatus{model.PaymentPending, model.PaymentFailed}).
			Order("id DESC").
			First(&payment).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh = true
		case err != nil:
			return fmt.Errorf("get open payment: %w", err)
		case payment.Status == model.PaymentFailed && payment.Method == model.PaymentMethodTransfer:
			if err := tx.Delete(&payment).Error; err != nil {
				return fmt.Errorf("drop failed transfer payment: %w", err)
			}
			fresh = true
		case payment.Status == model.PaymentFailed:
			if err := tx.Model(&payment).Update("status", model.PaymentPending).Error; err != nil {
				return fmt.Errorf("reopen payment: %w", err)
			}
			payment.Status = model.PaymentPending
		}

		if fresh {
			reference, err := ref.NewPayment()
			if err != nil {
				return fmt.Errorf("generate reference: %w", err)
			}
			payment = model.Payment{
				ConsultationID: req.ConsultationID,
				PatientID:      cons.PatientID,
				Amount:         *cons.Fee,
				Reference:      reference,
				Method:         model.PaymentMethodCash,
				Status:         model.PaymentPending,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return fmt.Errorf("create payment: %w", err)
			}
		}

		// Keep the amount in sync if the fee changed while pending.
		if payment.Amount != *cons.Fee {
			if err := tx.Model(&payment).Update("amount", *cons.Fee).Error; err != nil {
				return fmt.Errorf("update amount: %w", err)
			}
			payment.Amount = *cons.Fee
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Method == model.PaymentMethodCash {
		if payment.Method != model.PaymentMethodCash {
			if err := s.db.WithContext(ctx).Model(&payment).Update("method", model.PaymentMethodCash).Error; err != nil {
				return nil, fmt.Errorf("update method: %w", err)
			}
			payment.Method = model.PaymentMethodCash
		}
		return &InitiateResult{Payment: &payment}, nil
	}

	// Transfer: rotate the reference before every gateway call. A reference
	// Paystack has already seen cannot be initialized again.
	reference, err := ref.NewPayment()
	if err != nil {
		return nil, fmt.Errorf("generate reference: %w", err)
	}

	var email string
	if err := s.db.WithContext(ctx).Model(&model.Patient{}).
		Select("email").
		Where("id = ?", cons.PatientID).
		Scan(&email).Error; err != nil {
		return nil, fmt.Errorf("get patient email: %w", err)
	}

	amountMinor := int64(payment.Amount * 100)
	init, err := s.gateway.Initialize(ctx, email, reference, amountMinor, s.callbackURL)
	if err != nil {
		// The payment stays pending with its previous method and
		// reference; the patient can retry.
		return nil, err
	}

	updates := map[string]any{
		"reference":     reference,
		"method":        model.PaymentMethodTransfer,
		"provider_data": datatypes.JSON(init.Raw),
	}
	if err := s.db.WithContext(ctx).Model(&payment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	payment.Reference = reference
	payment.Method = model.PaymentMethodTransfer
	payment.ProviderData = datatypes.JSON(init.Raw)

	return &InitiateResult{Payment: &payment, AuthorizationURL: init.AuthorizationURL}, nil
}

func (s *billingService) Verify(ctx context.Context, reference string) (*model.Payment, error) {
	payment, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.Status == model.PaymentPaid {
		return payment, nil
	}

	res, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"provider_data": datatypes.JSON(res.Raw),
	}
	if res.Success() {
		now := time.Now()
		updates["status"] = model.PaymentPaid
		updates["paid_at"] = now
		payment.Status = model.PaymentPaid
		payment.PaidAt = &now
	} else {
		updates["status"] = model.PaymentFailed
		payment.Status = model.PaymentFailed
	}
	payment.ProviderData = datatypes.JSON(res.Raw)

	if err := s.db.WithContext(ctx).Model(payment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	if !res.Success() {
		return payment, ErrNotSettled
	}
	return payment, nil
}

func (s *billingService) ConfirmCash(ctx context.Context, actor *reqctx.Actor, paymentID uint) (*model.Payment, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	var payment model.Payment
	err := s.db.WithContext(ctx).First(&payment, paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	if payment.Method != model.PaymentMethodCash {
		return nil, ErrNotCash
	}
	if payment.Status == model.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentPending).
		Updates(map[string]any{"status": model.PaymentPaid, "paid_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("confirm payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyPaid
	}

	payment.Status = model.PaymentPaid
	payment.PaidAt = &now
	return &payment, nil
}

func (s *billingService) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var payment model.Payment
	err := s.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &payment, nil
}

func (s *billingService) ListForPatient(ctx context.Context, patientID uint) ([]model.Payment, HistoryTotals, error) {
	var payments []model.Payment
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, HistoryTotals{}, fmt.Errorf("list payments: %w", err)
	}

	var totals HistoryTotals
	for _, p := range payments {
		switch p.Status {
		case model.PaymentPaid:
			totals.TotalPaid += p.Amount
		case model.PaymentPending:
			totals.TotalPending += p.Amount
		}
	}
	return payments, totals, nil
}

func (s *billingService) ListForConsultation(ctx context.Context, actor *reqctx.Actor, consultationID uint) ([]model.Payment, error) {
	var cons model.Consultation
	err := s.db.WithContext(ctx).First(&cons, consultationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, fmt.Errorf("get consultation: %w", err)
	}

	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleDoctor:
		if actor.ID != cons.DoctorID {
			return nil, ErrAccessDenied
		}
	case model.RolePatient:
		if actor.ID != cons.PatientID {
			return nil, ErrAccessDenied
		}
	default:
		return nil, ErrAccessDenied
	}

	var payments []model.Payment
	err = s.db.WithContext(ctx).
		Where("consultation_id = ?", consultationID).
		Order("id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
