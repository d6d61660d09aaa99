package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
	"github.com/mediqhq/mediq_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateDoctorRequest struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Gender       string
	Password     string
	DepartmentID *uint
	SpecialtyID  *uint
	Bio          string
}

type CatalogRequest struct {
	Name        string
	Description string
}

// Dashboard is the clinic-wide summary shown to back-office staff.
type Dashboard struct {
	Patients     int64 `json:"patients"`
	Doctors      int64 `json:"doctors"`
	Appointments struct {
		Pending   int64 `json:"pending"`
		Accepted  int64 `json:"accepted"`
		Completed int64 `json:"completed"`
		Cancelled int64 `json:"cancelled"`
	} `json:"appointments"`
	Payments struct {
		Pending   int64   `json:"pending"`
		Paid      int64   `json:"paid"`
		TotalPaid float64 `json:"total_paid"`
	} `json:"payments"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)

	CreateDoctor(ctx context.Context, req CreateDoctorRequest) (*model.Doctor, error)
	ListPatients(ctx context.Context) ([]model.Patient, error)

	CreateDepartment(ctx context.Context, req CatalogRequest) (*model.Department, error)
	UpdateDepartment(ctx context.Context, id uint, req CatalogRequest) (*model.Department, error)
	DeleteDepartment(ctx context.Context, id uint) error
	ListDepartments(ctx context.Context) ([]model.Department, error)

	CreateSpecialty(ctx context.Context, req CatalogRequest) (*model.Specialty, error)
	UpdateSpecialty(ctx context.Context, id uint, req CatalogRequest) (*model.Specialty, error)
	DeleteSpecialty(ctx context.Context, id uint) error
	ListSpecialties(ctx context.Context) ([]model.Specialty, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type adminService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &adminService{db: db}
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	if err := s.db.WithContext(ctx).Model(&model.Patient{}).Count(&d.Patients).Error; err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Doctor{}).Count(&d.Doctors).Error; err != nil {
		return nil, fmt.Errorf("count doctors: %w", err)
	}

	appts := []struct {
		status model.AppointmentStatus
		dest   *int64
	}{
		{model.AppointmentPending, &d.Appointments.Pending},
		{model.AppointmentAccepted, &d.Appointments.Accepted},
		{model.AppointmentCompleted, &d.Appointments.Completed},
		{model.AppointmentCancelled, &d.Appointments.Cancelled},
	}
	for _, c := range appts {
		err := s.db.WithContext(ctx).Model(&model.Appointment{}).
			Where("status = ?", c.status).
			Count(c.dest).Error
		if err != nil {
			return nil, fmt.Errorf("count appointments: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("status = ?", model.PaymentPending).
		Count(&d.Payments.Pending).Error; err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("status = ?", model.PaymentPaid).
		Count(&d.Payments.Paid).Error; err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", model.PaymentPaid).
		Scan(&d.Payments.TotalPaid).Error; err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	return &d, nil
}

func (s *adminService) CreateDoctor(ctx context.Context, req CreateDoctorRequest) (*model.Doctor, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var exists int64
	if err := s.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("email = ?", email).
		Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailAlreadyExists
	}

	phone, err := auth.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doctor := model.Doctor{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Phone:        phone,
		Gender:       req.Gender,
		PasswordHash: hash,
		DepartmentID: req.DepartmentID,
		SpecialtyID:  req.SpecialtyID,
		Bio:          req.Bio,
	}
	if err := s.db.WithContext(ctx).Create(&doctor).Error; err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return &doctor, nil
}

func (s *adminService) ListPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	err := s.db.WithContext(ctx).Order("last_name, first_name").Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// ---------------------------------------------------------------------------
// Departments
// ---------------------------------------------------------------------------

func (s *adminService) CreateDepartment(ctx context.Context, req CatalogRequest) (*model.Department, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, &model.Department{}, name, 0); err != nil {
		return nil, err
	}

	dep := model.Department{Name: name, Description: req.Description}
	if err := s.db.WithContext(ctx).Create(&dep).Error; err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	return &dep, nil
}

func (s *adminService) UpdateDepartment(ctx context.Context, id uint, req CatalogRequest) (*model.Department, error) {
	var dep model.Department
	if err := s.db.WithContext(ctx).First(&dep, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get department: %w", err)
	}

	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if err := s.checkNameFree(ctx, &model.Department{}, name, id); err != nil {
			return nil, err
		}
		dep.Name = name
	}
	if req.Description != "" {
		dep.Description = req.Description
	}

	if err := s.db.WithContext(ctx).Save(&dep).Error; err != nil {
		return nil, fmt.Errorf("update department: %w", err)
	}
	return &dep, nil
}

func (s *adminService) DeleteDepartment(ctx context.Context, id uint) error {
	var used int64
	if err := s.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("department_id = ?", id).
		Count(&used).Error; err != nil {
		return fmt.Errorf("check department usage: %w", err)
	}
	if used > 0 {
		return ErrInUse
	}

	res := s.db.WithContext(ctx).Delete(&model.Department{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete department: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *adminService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var deps []model.Department
	if err := s.db.WithContext(ctx).Order("name").Find(&deps).Error; err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return deps, nil
}

// ---------------------------------------------------------------------------
// Specialties
// ---------------------------------------------------------------------------

func (s *adminService) CreateSpecialty(ctx context.Context, req CatalogRequest) (*model.Specialty, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, &model.Specialty{}, name, 0); err != nil {
		return nil, err
	}

	sp := model.Specialty{Name: name, Description: req.Description}
	if err := s.db.WithContext(ctx).Create(&sp).Error; err != nil {
		return nil, fmt.Errorf("create specialty: %w", err)
	}
	return &sp, nil
}

func (s *adminService) UpdateSpecialty(ctx context.Context, id uint, req CatalogRequest) (*model.Specialty, error) {
	var sp model.Specialty
	if err := s.db.WithContext(ctx).First(&sp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get specialty: %w", err)
	}

	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if err := s.checkNameFree(ctx, &model.Specialty{}, name, id); err != nil {
			return nil, err
		}
		sp.Name = name
	}
	if req.Description != "" {
		sp.Description = req.Description
	}

	if err := s.db.WithContext(ctx).Save(&sp).Error; err != nil {
		return nil, fmt.Errorf("update specialty: %w", err)
	}
	return &sp, nil
}

func (s *adminService) DeleteSpecialty(ctx context.Context, id uint) error {
	var used int64
	if err := s.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("specialty_id = ?", id).
		Count(&used).Error; err != nil {
		return fmt.Errorf("check specialty usage: %w", err)
	}
	if used > 0 {
		return ErrInUse
	}

	res := s.db.WithContext(ctx).Delete(&model.Specialty{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete specialty: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *adminService) ListSpecialties(ctx context.Context) ([]model.Specialty, error) {
	var sps []model.Specialty
	if err := s.db.WithContext(ctx).Order("name").Find(&sps).Error; err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return sps, nil
}

func (s *adminService) checkNameFree(ctx context.Context, table any, name string, excludeID uint) error {
	q := s.db.WithContext(ctx).Model(table).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var exists int64
	if err := q.Count(&exists).Error; err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if exists > 0 {
		return ErrNameAlreadyExists
	}
	return nil
}
