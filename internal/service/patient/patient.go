package patient

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
	"github.com/mediqhq/mediq_backend/pkg/storage"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UpdateProfileRequest struct {
	FirstName   string
	LastName    string
	Phone       string
	Gender      string
	DateOfBirth string
	Address     string
}

// Dashboard summarises a patient's activity for the landing screen.
type Dashboard struct {
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	Completed int64 `json:"completed"`
	Payments  int64 `json:"unpaid_payments"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Get(ctx context.Context, id uint) (*model.Patient, error)
	UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*model.Patient, error)
	UpdatePicture(ctx context.Context, id uint, filename string, data []byte) (*model.Patient, error)
	Dashboard(ctx context.Context, id uint) (*Dashboard, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db    *gorm.DB
	files *storage.Store
}

func New(db *gorm.DB, files *storage.Store) Service {
	return &patientService{db: db, files: files}
}

func (s *patientService) Get(ctx context.Context, id uint) (*model.Patient, error) {
	var p model.Patient
	err := s.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (s *patientService) UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*model.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		p.FirstName = req.FirstName
	}
	if req.LastName != "" {
		p.LastName = req.LastName
	}
	if req.Phone != "" {
		phone, err := auth.NormalizePhone(req.Phone)
		if err != nil {
			return nil, err
		}
		p.Phone = phone
	}
	if req.Gender != "" {
		p.Gender = req.Gender
	}
	if req.DateOfBirth != "" {
		p.DateOfBirth = req.DateOfBirth
	}
	if req.Address != "" {
		p.Address = req.Address
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *patientService) UpdatePicture(ctx context.Context, id uint, filename string, data []byte) (*model.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.files.Save("patients", filename, data)
	if err != nil {
		return nil, err
	}

	old := p.Picture
	if err := s.db.WithContext(ctx).Model(p).Update("picture", name).Error; err != nil {
		return nil, fmt.Errorf("update picture: %w", err)
	}
	p.Picture = name

	if old != "" {
		_ = s.files.Remove("patients", old)
	}
	return p, nil
}

func (s *patientService) Dashboard(ctx context.Context, id uint) (*Dashboard, error) {
	var d Dashboard

	counts := []struct {
		status model.AppointmentStatus
		dest   *int64
	}{
		{model.AppointmentPending, &d.Pending},
		{model.AppointmentAccepted, &d.Accepted},
		{model.AppointmentCompleted, &d.Completed},
	}
	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(&model.Appointment{}).
			Where("patient_id = ? AND status = ?", id, c.status).
			Count(c.dest).Error
		if err != nil {
			return nil, fmt.Errorf("count appointments: %w", err)
		}
	}

	err := s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("patient_id = ? AND status = ?", id, model.PaymentPending).
		Count(&d.Payments).Error
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}

	return &d, nil
}
