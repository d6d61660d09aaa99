package doctor

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/storage"
)

type fixture struct {
	db     *gorm.DB
	svc    Service
	doctor model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := storage.New(config.StorageConfig{UploadDir: t.TempDir(), MaxUploadMB: 1})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	d := model.Doctor{
		FirstName:    "Ada",
		LastName:     "Okafor",
		Email:        "ada@clinic.test",
		Phone:        "+2348012345678",
		PasswordHash: "x",
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	return &fixture{db: db, svc: New(db, store), doctor: d}
}

func seedPatient(t *testing.T, db *gorm.DB, email string) *model.Patient {
	t.Helper()
	p := &model.Patient{
		FirstName:    "Ben",
		LastName:     "Eze",
		Email:        email,
		Phone:        "+2348000000001",
		PasswordHash: "x",
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestListFiltersByCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cardio := model.Department{Name: "Cardiology"}
	derm := model.Department{Name: "Dermatology"}
	if err := f.db.Create(&cardio).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	if err := f.db.Create(&derm).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}

	other := model.Doctor{
		FirstName: "Chi", LastName: "Bello", Email: "chi@clinic.test",
		Phone: "+2348000000002", PasswordHash: "x", DepartmentID: &cardio.ID,
	}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	all, err := f.svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	// Ordered by last name.
	if all[0].LastName != "Bello" || all[1].LastName != "Okafor" {
		t.Errorf("order = %s, %s", all[0].LastName, all[1].LastName)
	}

	inCardio, err := f.svc.List(ctx, ListFilter{DepartmentID: cardio.ID})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(inCardio) != 1 || inCardio[0].ID != other.ID {
		t.Fatalf("cardiology list = %+v, want only %d", inCardio, other.ID)
	}
	if inCardio[0].Department == nil || inCardio[0].Department.Name != "Cardiology" {
		t.Error("Department not preloaded")
	}

	inDerm, err := f.svc.List(ctx, ListFilter{DepartmentID: derm.ID})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(inDerm) != 0 {
		t.Errorf("dermatology list = %d doctors, want 0", len(inDerm))
	}
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.UpdateProfile(context.Background(), f.doctor.ID, UpdateProfileRequest{
		Bio:   "Cardiologist, 12 years in practice.",
		Phone: "08033334444",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Bio == "" {
		t.Error("Bio not updated")
	}
	if got.Phone != "+2348033334444" {
		t.Errorf("Phone = %q, want normalized E.164", got.Phone)
	}
	if got.LastName != "Okafor" {
		t.Errorf("LastName = %q, want untouched", got.LastName)
	}
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := seedPatient(t, f.db, "p1@mail.test")
	p2 := seedPatient(t, f.db, "p2@mail.test")

	seedAppt := func(patientID uint, slot string, st model.AppointmentStatus) *model.Appointment {
		a := &model.Appointment{
			PatientID: patientID, DoctorID: f.doctor.ID,
			Date: "2026-03-02", TimeSlot: slot, Status: st,
		}
		if err := f.db.Create(a).Error; err != nil {
			t.Fatalf("seed appointment: %v", err)
		}
		return a
	}

	seedAppt(p1.ID, "09:00", model.AppointmentPending)
	seedAppt(p1.ID, "09:30", model.AppointmentAccepted)
	done1 := seedAppt(p1.ID, "10:00", model.AppointmentCompleted)
	done2 := seedAppt(p2.ID, "10:30", model.AppointmentCompleted)

	fee := 5000.0
	for i, a := range []*model.Appointment{done1, done2} {
		cons := model.Consultation{
			AppointmentID: a.ID, PatientID: a.PatientID, DoctorID: f.doctor.ID,
			Diagnosis: "flu", Fee: &fee,
		}
		if err := f.db.Create(&cons).Error; err != nil {
			t.Fatalf("seed consultation: %v", err)
		}

		status := model.PaymentPaid
		var paidAt *time.Time
		if i == 1 {
			status = model.PaymentPending
		} else {
			now := time.Now()
			paidAt = &now
		}
		pay := model.Payment{
			ConsultationID: cons.ID, PatientID: a.PatientID,
			Amount: fee, Reference: []string{"MQ-aaaa0001", "MQ-aaaa0002"}[i],
			Method: model.PaymentMethodCash, Status: status, PaidAt: paidAt,
		}
		if err := f.db.Create(&pay).Error; err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}

	st, err := f.svc.Statistics(ctx, f.doctor.ID)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if st.Pending != 1 || st.Accepted != 1 || st.Completed != 2 {
		t.Errorf("appointments = %d/%d/%d, want 1/1/2", st.Pending, st.Accepted, st.Completed)
	}
	if st.Consultations != 2 {
		t.Errorf("Consultations = %d, want 2", st.Consultations)
	}
	// Only the settled payment counts toward earnings.
	if st.TotalEarned != 5000 {
		t.Errorf("TotalEarned = %v, want 5000", st.TotalEarned)
	}
}

func TestPatientsIsDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := seedPatient(t, f.db, "p1@mail.test")
	p2 := seedPatient(t, f.db, "p2@mail.test")
	seedPatient(t, f.db, "p3@mail.test")

	for _, slot := range []string{"09:00", "09:30"} {
		a := model.Appointment{PatientID: p1.ID, DoctorID: f.doctor.ID, Date: "2026-03-02", TimeSlot: slot, Status: model.AppointmentCompleted}
		if err := f.db.Create(&a).Error; err != nil {
			t.Fatalf("seed appointment: %v", err)
		}
	}
	a := model.Appointment{PatientID: p2.ID, DoctorID: f.doctor.ID, Date: "2026-03-02", TimeSlot: "10:00", Status: model.AppointmentPending}
	if err := f.db.Create(&a).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	patients, err := f.svc.Patients(ctx, f.doctor.ID)
	if err != nil {
		t.Fatalf("Patients: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("len(patients) = %d, want 2 (repeat visits collapse, strangers excluded)", len(patients))
	}
}
