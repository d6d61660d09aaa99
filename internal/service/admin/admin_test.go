package admin

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
	"github.com/mediqhq/mediq_backend/pkg/util/password"
)

func newTestService(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, New(db)
}

func TestCreateDoctor(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.CreateDoctor(ctx, CreateDoctorRequest{
		FirstName: " Ada ",
		LastName:  " Okafor ",
		Email:     " Ada@Clinic.Test ",
		Phone:     "08012345678",
		Password:  "s3cret-pass",
		Bio:       "Cardiologist",
	})
	if err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}

	if d.Email != "ada@clinic.test" {
		t.Errorf("Email = %q, want lowercased and trimmed", d.Email)
	}
	if d.FirstName != "Ada" || d.LastName != "Okafor" {
		t.Errorf("name = %q %q, want trimmed", d.FirstName, d.LastName)
	}
	if d.Phone != "+2348012345678" {
		t.Errorf("Phone = %q, want E.164", d.Phone)
	}
	if err := password.Verify(d.PasswordHash, "s3cret-pass"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestCreateDoctorDuplicateEmail(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	req := CreateDoctorRequest{
		FirstName: "Ada", LastName: "Okafor",
		Email: "ada@clinic.test", Phone: "08012345678", Password: "s3cret-pass",
	}
	if _, err := svc.CreateDoctor(ctx, req); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}

	req.Email = "ADA@clinic.test"
	if _, err := svc.CreateDoctor(ctx, req); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestCreateDoctorBadPhone(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.CreateDoctor(context.Background(), CreateDoctorRequest{
		FirstName: "Ada", LastName: "Okafor",
		Email: "ada@clinic.test", Phone: "not-a-phone", Password: "s3cret-pass",
	})
	if !errors.Is(err, auth.ErrInvalidPhone) {
		t.Fatalf("err = %v, want auth.ErrInvalidPhone", err)
	}
}

func TestDepartmentLifecycle(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	dep, err := svc.CreateDepartment(ctx, CatalogRequest{Name: " Cardiology ", Description: "Heart care"})
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	if dep.Name != "Cardiology" {
		t.Errorf("Name = %q, want trimmed", dep.Name)
	}

	if _, err := svc.CreateDepartment(ctx, CatalogRequest{Name: "Cardiology"}); !errors.Is(err, ErrNameAlreadyExists) {
		t.Fatalf("duplicate err = %v, want ErrNameAlreadyExists", err)
	}

	upd, err := svc.UpdateDepartment(ctx, dep.ID, CatalogRequest{Description: "Cardiac care"})
	if err != nil {
		t.Fatalf("UpdateDepartment: %v", err)
	}
	if upd.Name != "Cardiology" || upd.Description != "Cardiac care" {
		t.Errorf("after update: %q / %q", upd.Name, upd.Description)
	}

	// A doctor in the department blocks deletion.
	doctor := model.Doctor{
		FirstName: "Ada", LastName: "Okafor", Email: "ada@clinic.test",
		Phone: "+2348012345678", PasswordHash: "x", DepartmentID: &dep.ID,
	}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	if err := svc.DeleteDepartment(ctx, dep.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("delete err = %v, want ErrInUse", err)
	}

	if err := db.Model(&doctor).Update("department_id", nil).Error; err != nil {
		t.Fatalf("detach doctor: %v", err)
	}
	if err := svc.DeleteDepartment(ctx, dep.ID); err != nil {
		t.Fatalf("DeleteDepartment: %v", err)
	}
	if err := svc.DeleteDepartment(ctx, dep.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSpecialtyRename(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateSpecialty(ctx, CatalogRequest{Name: "Dermatology"})
	if err != nil {
		t.Fatalf("CreateSpecialty: %v", err)
	}
	if _, err := svc.CreateSpecialty(ctx, CatalogRequest{Name: "Neurology"}); err != nil {
		t.Fatalf("CreateSpecialty: %v", err)
	}

	// Renaming onto another specialty's name is rejected; keeping your own
	// name while editing the description is not.
	if _, err := svc.UpdateSpecialty(ctx, a.ID, CatalogRequest{Name: "Neurology"}); !errors.Is(err, ErrNameAlreadyExists) {
		t.Fatalf("rename err = %v, want ErrNameAlreadyExists", err)
	}
	if _, err := svc.UpdateSpecialty(ctx, a.ID, CatalogRequest{Name: "Dermatology", Description: "Skin"}); err != nil {
		t.Fatalf("self-rename err = %v", err)
	}

	list, err := svc.ListSpecialties(ctx)
	if err != nil {
		t.Fatalf("ListSpecialties: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Dermatology" || list[1].Name != "Neurology" {
		t.Errorf("list = %+v, want name-ordered pair", list)
	}
}

func TestDashboard(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	patient := model.Patient{FirstName: "Ben", LastName: "Eze", Email: "ben@mail.test", Phone: "+2348000000001", PasswordHash: "x"}
	doctor := model.Doctor{FirstName: "Ada", LastName: "Okafor", Email: "ada@clinic.test", Phone: "+2348012345678", PasswordHash: "x"}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	for i, st := range []model.AppointmentStatus{model.AppointmentPending, model.AppointmentCompleted} {
		a := model.Appointment{
			PatientID: patient.ID, DoctorID: doctor.ID,
			Date: "2026-03-02", TimeSlot: []string{"09:00", "09:30"}[i], Status: st,
		}
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("seed appointment: %v", err)
		}
	}

	completed := model.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, Date: "2026-03-01", TimeSlot: "10:00", Status: model.AppointmentCompleted}
	if err := db.Create(&completed).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	cons := model.Consultation{AppointmentID: completed.ID, PatientID: patient.ID, DoctorID: doctor.ID, Diagnosis: "flu"}
	if err := db.Create(&cons).Error; err != nil {
		t.Fatalf("seed consultation: %v", err)
	}
	for i, st := range []model.PaymentStatus{model.PaymentPaid, model.PaymentPending} {
		p := model.Payment{
			ConsultationID: cons.ID, PatientID: patient.ID, Amount: 4000,
			Reference: []string{"MQ-bbbb0001", "MQ-bbbb0002"}[i],
			Method:    model.PaymentMethodCash, Status: st,
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Patients != 1 || d.Doctors != 1 {
		t.Errorf("people = %d patients / %d doctors, want 1/1", d.Patients, d.Doctors)
	}
	if d.Appointments.Pending != 1 || d.Appointments.Completed != 2 {
		t.Errorf("appointments = %+v", d.Appointments)
	}
	if d.Payments.Pending != 1 || d.Payments.Paid != 1 || d.Payments.TotalPaid != 4000 {
		t.Errorf("payments = %+v", d.Payments)
	}
}
