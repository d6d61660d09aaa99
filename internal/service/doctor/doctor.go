package doctor

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

type ListFilter struct {
	DepartmentID uint // 0 means all
	SpecialtyID  uint
}

type UpdateProfileRequest struct {
	FirstName string
	LastName  string
	Phone     string
	Gender    string
	Bio       string
}

// Statistics summarises a doctor's practice for their dashboard.
type Statistics struct {
	Pending       int64   `json:"pending"`
	Accepted      int64   `json:"accepted"`
	Completed     int64   `json:"completed"`
	Consultations int64   `json:"consultations"`
	TotalEarned   float64 `json:"total_earned"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Get(ctx context.Context, id uint) (*model.Doctor, error)
	List(ctx context.Context, f ListFilter) ([]model.Doctor, error)
	UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*model.Doctor, error)
	UpdatePicture(ctx context.Context, id uint, filename string, data []byte) (*model.Doctor, error)

	// Statistics aggregates the doctor's appointments, consultations, and
	// settled earnings.
	Statistics(ctx context.Context, id uint) (*Statistics, error)

	// Patients lists the distinct patients this doctor has seen.
	Patients(ctx context.Context, id uint) ([]model.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type doctorService struct {
	db    *gorm.DB
	files *storage.Store
}

func New(db *gorm.DB, files *storage.Store) Service {
	return &doctorService{db: db, files: files}
}

func (s *doctorService) Get(ctx context.Context, id uint) (*model.Doctor, error) {
	var d model.Doctor
	err := s.db.WithContext(ctx).
		Preload("Department").
		Preload("Specialty").
		First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return &d, nil
}

func (s *doctorService) List(ctx context.Context, f ListFilter) ([]model.Doctor, error) {
	q := s.db.WithContext(ctx).Model(&model.Doctor{}).
		Preload("Department").
		Preload("Specialty")
	if f.DepartmentID != 0 {
		q = q.Where("department_id = ?", f.DepartmentID)
	}
	if f.SpecialtyID != 0 {
		q = q.Where("specialty_id = ?", f.SpecialtyID)
	}

	var doctors []model.Doctor
	if err := q.Order("last_name, first_name").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func (s *doctorService) UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*model.Doctor, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		d.FirstName = req.FirstName
	}
	if req.LastName != "" {
		d.LastName = req.LastName
	}
	if req.Phone != "" {
		phone, err := auth.NormalizePhone(req.Phone)
		if err != nil {
			return nil, err
		}
		d.Phone = phone
	}
	if req.Gender != "" {
		d.Gender = req.Gender
	}
	if req.Bio != "" {
		d.Bio = req.Bio
	}

	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	return d, nil
}

func (s *doctorService) UpdatePicture(ctx context.Context, id uint, filename string, data []byte) (*model.Doctor, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.files.Save("doctors", filename, data)
	if err != nil {
		return nil, err
	}

	old := d.Picture
	if err := s.db.WithContext(ctx).Model(d).Update("picture", name).Error; err != nil {
		return nil, fmt.Errorf("update picture: %w", err)
	}
	d.Picture = name

	if old != "" {
		_ = s.files.Remove("doctors", old)
	}
	return d, nil
}

func (s *doctorService) Statistics(ctx context.Context, id uint) (*Statistics, error) {
	var st Statistics

	counts := []struct {
		status model.AppointmentStatus
		dest   *int64
	}{
		{model.AppointmentPending, &st.Pending},
		{model.AppointmentAccepted, &st.Accepted},
		{model.AppointmentCompleted, &st.Completed},
	}
	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(&model.Appointment{}).
			Where("doctor_id = ? AND status = ?", id, c.status).
			Count(c.dest).Error
		if err != nil {
			return nil, fmt.Errorf("count appointments: %w", err)
		}
	}

	err := s.db.WithContext(ctx).Model(&model.Consultation{}).
		Where("doctor_id = ?", id).
		Count(&st.Consultations).Error
	if err != nil {
		return nil, fmt.Errorf("count consultations: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&model.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN consultations ON consultations.id = payments.consultation_id").
		Where("consultations.doctor_id = ? AND payments.status = ?", id, model.PaymentPaid).
		Scan(&st.TotalEarned).Error
	if err != nil {
		return nil, fmt.Errorf("sum earnings: %w", err)
	}

	return &st, nil
}

func (s *doctorService) Patients(ctx context.Context, id uint) ([]model.Patient, error) {
	var patients []model.Patient
	err := s.db.WithContext(ctx).
		Distinct("patients.*").
		Model(&model.Patient{}).
		Joins("JOIN appointments ON appointments.patient_id = patients.id").
		Where("appointments.doctor_id = ?", id).
		Order("patients.last_name, patients.first_name").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list doctor patients: %w", err)
	}
	return patients, nil
}
