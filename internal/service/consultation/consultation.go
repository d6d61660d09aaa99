package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CompleteRequest struct {
	Diagnosis string
	Notes     string
	Fee       *float64 // optional; may be billed later via SetFee
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Complete records the consultation for an accepted appointment and
	// marks the appointment completed, atomically. A failed validation
	// (empty diagnosis, wrong doctor, wrong state) leaves the appointment
	// untouched and writes no consultation row.
	Complete(ctx context.Context, actor *reqctx.Actor, appointmentID uint, req CompleteRequest) (*model.Consultation, error)

	// SetFee bills a consultation. Only the consulting doctor may set it,
	// and only until a payment settles; after that the billed amount is
	// locked to what was paid.
	SetFee(ctx context.Context, actor *reqctx.Actor, consultationID uint, fee float64) (*model.Consultation, error)

	// AddNote appends follow-up notes without touching diagnosis or fee.
	AddNote(ctx context.Context, actor *reqctx.Actor, consultationID uint, note string) (*model.Consultation, error)

	Get(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Consultation, error)
	GetByAppointment(ctx context.Context, actor *reqctx.Actor, appointmentID uint) (*model.Consultation, error)
	ListForPatient(ctx context.Context, patientID uint) ([]model.Consultation, error)
	ListForDoctor(ctx context.Context, doctorID uint) ([]model.Consultation, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type consultationService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &consultationService{db: db}
}

func (s *consultationService) Complete(ctx context.Context, actor *reqctx.Actor, appointmentID uint, req CompleteRequest) (*model.Consultation, error) {
	diagnosis := strings.TrimSpace(req.Diagnosis)
	if diagnosis == "" {
		return nil, ErrEmptyDiagnosis
	}
	if req.Fee != nil && *req.Fee <= 0 {
		return nil, ErrInvalidFee
	}

	var cons model.Consultation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt model.Appointment
		err := tx.First(&appt, appointmentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("get appointment: %w", err)
		}

		if actor.Role != model.RoleDoctor || actor.ID != appt.DoctorID {
			return ErrAccessDenied
		}

		switch appt.Status {
		case model.AppointmentAccepted:
			// ok
		case model.AppointmentCompleted:
			return ErrAlreadyCompleted
		default:
			return ErrNotAccepted
		}

		// Guarded update: a concurrent Complete loses on RowsAffected and
		// never writes a second consultation.
		res := tx.Model(&model.Appointment{}).
			Where("id = ? AND status = ?", appointmentID, model.AppointmentAccepted).
			Update("status", model.AppointmentCompleted)
		if res.Error != nil {
			return fmt.Errorf("complete appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		cons = model.Consultation{
			AppointmentID: appointmentID,
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			Diagnosis:     diagnosis,
			Notes:         strings.TrimSpace(req.Notes),
			Fee:           req.Fee,
		}
		if err := tx.Create(&cons).Error; err != nil {
			return fmt.Errorf("create consultation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cons, nil
}

func (s *consultationService) SetFee(ctx context.Context, actor *reqctx.Actor, consultationID uint, fee float64) (*model.Consultation, error) {
	if fee <= 0 {
		return nil, ErrInvalidFee
	}

	cons, err := s.load(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleDoctor || actor.ID != cons.DoctorID {
		return nil, ErrAccessDenied
	}

	var paid int64
	err = s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("consultation_id = ? AND status = ?", consultationID, model.PaymentPaid).
		Count(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("check paid payments: %w", err)
	}
	if paid > 0 {
		return nil, ErrFeeLocked
	}

	if err := s.db.WithContext(ctx).Model(cons).Update("fee", fee).Error; err != nil {
		return nil, fmt.Errorf("set fee: %w", err)
	}
	cons.Fee = &fee
	return cons, nil
}

func (s *consultationService) AddNote(ctx context.Context, actor *reqctx.Actor, consultationID uint, note string) (*model.Consultation, error) {
	cons, err := s.load(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleDoctor || actor.ID != cons.DoctorID {
		return nil, ErrAccessDenied
	}

	note = strings.TrimSpace(note)
	if note == "" {
		return cons, nil
	}

	updated := cons.Notes
	if updated != "" {
		updated += "\n"
	}
	updated += note

	if err := s.db.WithContext(ctx).Model(cons).Update("notes", updated).Error; err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	cons.Notes = updated
	return cons, nil
}

func (s *consultationService) Get(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Consultation, error) {
	cons, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canSee(actor, cons); err != nil {
		return nil, err
	}
	return cons, nil
}

func (s *consultationService) GetByAppointment(ctx context.Context, actor *reqctx.Actor, appointmentID uint) (*model.Consultation, error) {
	var cons model.Consultation
	err := s.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&cons).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consultation: %w", err)
	}
	if err := canSee(actor, &cons); err != nil {
		return nil, err
	}
	return &cons, nil
}

func (s *consultationService) ListForPatient(ctx context.Context, patientID uint) ([]model.Consultation, error) {
	return s.list(ctx, "patient_id = ?", patientID)
}

func (s *consultationService) ListForDoctor(ctx context.Context, doctorID uint) ([]model.Consultation, error) {
	return s.list(ctx, "doctor_id = ?", doctorID)
}

func (s *consultationService) load(ctx context.Context, id uint) (*model.Consultation, error) {
	var cons model.Consultation
	err := s.db.WithContext(ctx).First(&cons, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consultation: %w", err)
	}
	return &cons, nil
}

func (s *consultationService) list(ctx context.Context, cond string, args ...any) ([]model.Consultation, error) {
	var out []model.Consultation
	err := s.db.WithContext(ctx).Where(cond, args...).Order("id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	return out, nil
}

func canSee(actor *reqctx.Actor, cons *model.Consultation) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDoctor:
		if actor.ID == cons.DoctorID {
			return nil
		}
	case model.RolePatient:
		if actor.ID == cons.PatientID {
			return nil
		}
	}
	return ErrAccessDenied
}
