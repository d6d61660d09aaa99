package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/appointment"
	"github.com/mediqhq/mediq_backend/internal/service/booking"
	"github.com/mediqhq/mediq_backend/internal/service/consultation"
	"github.com/mediqhq/mediq_backend/internal/service/schedule"
	"github.com/mediqhq/mediq_backend/pkg/paystack"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
	"github.com/mediqhq/mediq_backend/pkg/util/ref"
)

// fakeGateway records Initialize/Verify calls and returns canned results.
type fakeGateway struct {
	initCalls   int
	lastEmail   string
	lastRef     string
	lastAmount  int64
	initErr     error
	verifyState string // "success", "abandoned", ...
}

func (g *fakeGateway) Initialize(_ context.Context, email, reference string, amountMinor int64, _ string) (*paystack.InitializeResult, error) {
	g.initCalls++
	g.lastEmail = email
	g.lastRef = reference
	g.lastAmount = amountMinor
	if g.initErr != nil {
		return nil, g.initErr
	}
	raw, _ := json.Marshal(map[string]string{"access_code": "ac_" + reference})
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.test/" + reference,
		AccessCode:       "ac_" + reference,
		Reference:        reference,
		Raw:              raw,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*paystack.VerifyResult, error) {
	raw, _ := json.Marshal(map[string]string{"status": g.verifyState})
	return &paystack.VerifyResult{
		Status:    g.verifyState,
		Reference: reference,
		Raw:       raw,
	}, nil
}

type fixture struct {
	db      *gorm.DB
	svc     Service
	gateway *fakeGateway
	doctor  *model.Doctor
	patient *model.Patient
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

	doc := &model.Doctor{FirstName: "Ada", LastName: "Okafor", Email: "ada@clinic.test", PasswordHash: "x"}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	pat := &model.Patient{
		FirstName: "Ben", LastName: "Eze", Email: "ben@mail.test",
		Phone: "+2348000000001", Address: "5 Marina Road, Lagos", PasswordHash: "x",
	}
	if err := db.Create(pat).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	gw := &fakeGateway{verifyState: "success"}
	return &fixture{
		db:      db,
		svc:     New(db, gw, "https://mediq.test/payments/callback"),
		gateway: gw,
		doctor:  doc,
		patient: pat,
	}
}

// seedConsultation writes a completed appointment plus its consultation.
func (f *fixture) seedConsultation(t *testing.T, fee *float64) *model.Consultation {
	t.Helper()
	appt := &model.Appointment{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      "2026-03-02",
		TimeSlot:  "09:00",
		Status:    model.AppointmentCompleted,
	}
	if err := f.db.Create(appt).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	cons := &model.Consultation{
		AppointmentID: appt.ID,
		PatientID:     f.patient.ID,
		DoctorID:      f.doctor.ID,
		Diagnosis:     "seasonal flu",
		Fee:           fee,
	}
	if err := f.db.Create(cons).Error; err != nil {
		t.Fatalf("seed consultation: %v", err)
	}
	return cons
}

func (f *fixture) patientActor() *reqctx.Actor {
	return &reqctx.Actor{Role: model.RolePatient, ID: f.patient.ID}
}

func feePtr(v float64) *float64 { return &v }

func TestInitiateCash(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))

	res, err := f.svc.Initiate(context.Background(), f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID,
		Method:         model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}

	p := res.Payment
	if p.Status != model.PaymentPending || p.Method != model.PaymentMethodCash {
		t.Errorf("payment = %+v, want pending cash", p)
	}
	if p.Amount != 5000 {
		t.Errorf("amount = %v, want 5000", p.Amount)
	}
	if !ref.IsPayment(p.Reference) {
		t.Errorf("reference %q is not a valid payment reference", p.Reference)
	}
	if res.AuthorizationURL != "" {
		t.Error("cash payments must not produce a checkout URL")
	}
	if f.gateway.initCalls != 0 {
		t.Error("cash payments must not touch the gateway")
	}
}

func TestInitiateCashIsIdempotent(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()
	req := InitiateRequest{ConsultationID: cons.ID, Method: model.PaymentMethodCash}

	first, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("first Initiate() error = %v", err)
	}
	second, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("second Initiate() error = %v", err)
	}

	if second.Payment.ID != first.Payment.ID {
		t.Error("repeated Initiate must reuse the pending payment")
	}
	if second.Payment.Reference != first.Payment.Reference {
		t.Error("cash payments keep their reference across retries")
	}

	var count int64
	f.db.Model(&model.Payment{}).Where("consultation_id = ?", cons.ID).Count(&count)
	if count != 1 {
		t.Errorf("payment rows = %d, want 1", count)
	}
}

func TestInitiateTransfer(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))

	res, err := f.svc.Initiate(context.Background(), f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID,
		Method:         model.PaymentMethodTransfer,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}

	if res.AuthorizationURL == "" {
		t.Error("transfer must return the checkout URL")
	}
	if res.Payment.Method != model.PaymentMethodTransfer {
		t.Errorf("method = %q, want transfer", res.Payment.Method)
	}
	if f.gateway.lastEmail != "ben@mail.test" {
		t.Errorf("gateway email = %q", f.gateway.lastEmail)
	}
	// Fee is in major units; the gateway gets minor units.
	if f.gateway.lastAmount != 500000 {
		t.Errorf("gateway amount = %d, want 500000", f.gateway.lastAmount)
	}
	if len(res.Payment.ProviderData) == 0 {
		t.Error("raw gateway response not stored")
	}
}

func TestInitiateTransferRotatesReference(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()
	req := InitiateRequest{ConsultationID: cons.ID, Method: model.PaymentMethodTransfer}

	first, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("first Initiate() error = %v", err)
	}
	second, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("second Initiate() error = %v", err)
	}

	if second.Payment.ID != first.Payment.ID {
		t.Error("retry must reuse the pending payment row")
	}
	if second.Payment.Reference == first.Payment.Reference {
		t.Error("each transfer attempt must get a fresh reference")
	}
	if f.gateway.initCalls != 2 {
		t.Errorf("gateway calls = %d, want 2", f.gateway.initCalls)
	}
}

func TestInitiateAfterFailedTransferStartsClean(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()
	req := InitiateRequest{ConsultationID: cons.ID, Method: model.PaymentMethodTransfer}

	first, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("first Initiate() error = %v", err)
	}
	f.gateway.verifyState = "abandoned"
	if _, err := f.svc.Verify(ctx, first.Payment.Reference); !errors.Is(err, ErrNotSettled) {
		t.Fatalf("Verify() = %v, want ErrNotSettled", err)
	}

	second, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("retry Initiate() error = %v", err)
	}
	if second.Payment.ID == first.Payment.ID {
		t.Error("failed transfer must be replaced, not reused")
	}
	if second.Payment.Reference == first.Payment.Reference {
		t.Error("retry must not reuse the failed reference")
	}
	if second.Payment.Status != model.PaymentPending {
		t.Errorf("status = %q, want pending", second.Payment.Status)
	}

	// The failed row is gone; retries never pile up extra rows.
	var count int64
	f.db.Model(&model.Payment{}).Where("consultation_id = ?", cons.ID).Count(&count)
	if count != 1 {
		t.Errorf("payment rows = %d, want 1", count)
	}
	if _, err := f.svc.GetByReference(ctx, first.Payment.Reference); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("GetByReference(failed ref) = %v, want ErrPaymentNotFound", err)
	}
}

func TestInitiateAfterFailedCashReopens(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()
	req := InitiateRequest{ConsultationID: cons.ID, Method: model.PaymentMethodCash}

	first, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("first Initiate() error = %v", err)
	}
	if err := f.db.Model(&model.Payment{}).Where("id = ?", first.Payment.ID).
		Update("status", model.PaymentFailed).Error; err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	second, err := f.svc.Initiate(ctx, f.patientActor(), req)
	if err != nil {
		t.Fatalf("retry Initiate() error = %v", err)
	}
	if second.Payment.ID != first.Payment.ID {
		t.Error("failed cash payment must be reused")
	}
	if second.Payment.Reference != first.Payment.Reference {
		t.Error("cash retries keep the original reference")
	}
	if second.Payment.Status != model.PaymentPending {
		t.Errorf("status = %q, want pending", second.Payment.Status)
	}
}

func TestInitiateGatewayFailureLeavesPaymentRetryable(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()

	f.gateway.initErr = paystack.ErrInitializeFailed
	_, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	})
	if !errors.Is(err, paystack.ErrInitializeFailed) {
		t.Fatalf("Initiate() = %v, want gateway error", err)
	}

	// The pending payment survives untouched and a later attempt succeeds.
	var p model.Payment
	if err := f.db.Where("consultation_id = ?", cons.ID).First(&p).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if p.Status != model.PaymentPending || p.Method != model.PaymentMethodCash {
		t.Errorf("payment after failure = %+v, want untouched pending cash", p)
	}

	f.gateway.initErr = nil
	if _, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	}); err != nil {
		t.Errorf("retry Initiate() error = %v", err)
	}
}

func TestInitiateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unbilled := f.seedConsultation(t, nil)
	if _, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: unbilled.ID, Method: model.PaymentMethodCash,
	}); !errors.Is(err, ErrNoFee) {
		t.Errorf("Initiate(no fee) = %v, want ErrNoFee", err)
	}

	billed := f.seedConsultation(t, feePtr(5000))
	if _, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: billed.ID, Method: "card",
	}); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Initiate(bad method) = %v, want ErrInvalidMethod", err)
	}

	if _, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: 9999, Method: model.PaymentMethodCash,
	}); !errors.Is(err, ErrConsultationNotFound) {
		t.Errorf("Initiate(missing) = %v, want ErrConsultationNotFound", err)
	}

	stranger := &reqctx.Actor{Role: model.RolePatient, ID: f.patient.ID + 100}
	if _, err := f.svc.Initiate(ctx, stranger, InitiateRequest{
		ConsultationID: billed.ID, Method: model.PaymentMethodCash,
	}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Initiate by stranger = %v, want ErrAccessDenied", err)
	}
}

func TestInitiateAfterPaid(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()

	res, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if _, err := f.svc.Verify(ctx, res.Payment.Reference); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if _, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	}); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("Initiate after paid = %v, want ErrAlreadyPaid", err)
	}
}

func TestVerifySuccess(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()

	res, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}

	p, err := f.svc.Verify(ctx, res.Payment.Reference)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if p.Status != model.PaymentPaid {
		t.Errorf("status = %q, want paid", p.Status)
	}
	if p.PaidAt == nil || time.Since(*p.PaidAt) > time.Minute {
		t.Errorf("paid_at not set: %v", p.PaidAt)
	}
	if !strings.Contains(string(p.ProviderData), "success") {
		t.Errorf("verify response not stored: %s", p.ProviderData)
	}

	// Verifying again short-circuits without another gateway round trip.
	again, err := f.svc.Verify(ctx, res.Payment.Reference)
	if err != nil {
		t.Fatalf("second Verify() error = %v", err)
	}
	if again.Status != model.PaymentPaid {
		t.Errorf("second verify status = %q", again.Status)
	}
}

func TestVerifyFailure(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()

	res, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}

	f.gateway.verifyState = "abandoned"
	p, err := f.svc.Verify(ctx, res.Payment.Reference)
	if !errors.Is(err, ErrNotSettled) {
		t.Fatalf("Verify() = %v, want ErrNotSettled", err)
	}
	if p.Status != model.PaymentFailed {
		t.Errorf("status = %q, want failed", p.Status)
	}
	if !strings.Contains(string(p.ProviderData), "abandoned") {
		t.Error("failed verify response must still be stored")
	}
}

func TestVerifyUnknownReference(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Verify(context.Background(), "MQ-DEADBEEFDEADBEEFDEAD"); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("Verify(unknown) = %v, want ErrPaymentNotFound", err)
	}
}

func TestConfirmCash(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()
	admin := &reqctx.Actor{Role: model.RoleAdmin, ID: 1}

	res, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	id := res.Payment.ID

	// Only back-office staff may confirm.
	if _, err := f.svc.ConfirmCash(ctx, f.patientActor(), id); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("ConfirmCash by patient = %v, want ErrAccessDenied", err)
	}
	doctor := &reqctx.Actor{Role: model.RoleDoctor, ID: f.doctor.ID}
	if _, err := f.svc.ConfirmCash(ctx, doctor, id); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("ConfirmCash by doctor = %v, want ErrAccessDenied", err)
	}

	p, err := f.svc.ConfirmCash(ctx, admin, id)
	if err != nil {
		t.Fatalf("ConfirmCash() error = %v", err)
	}
	if p.Status != model.PaymentPaid || p.PaidAt == nil {
		t.Errorf("payment = %+v, want paid with paid_at", p)
	}

	if _, err := f.svc.ConfirmCash(ctx, admin, id); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("second ConfirmCash = %v, want ErrAlreadyPaid", err)
	}
}

func TestConfirmCashRejectsTransfers(t *testing.T) {
	f := newFixture(t)
	cons := f.seedConsultation(t, feePtr(5000))
	ctx := context.Background()

	res, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{
		ConsultationID: cons.ID, Method: model.PaymentMethodTransfer,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}

	admin := &reqctx.Actor{Role: model.RoleAdmin, ID: 1}
	if _, err := f.svc.ConfirmCash(ctx, admin, res.Payment.ID); !errors.Is(err, ErrNotCash) {
		t.Errorf("ConfirmCash(transfer) = %v, want ErrNotCash", err)
	}
}

func TestListForPatientTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := &reqctx.Actor{Role: model.RoleAdmin, ID: 1}

	a := f.seedConsultation(t, feePtr(5000))
	b := f.seedConsultation(t, feePtr(3000))

	resA, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{ConsultationID: a.ID, Method: model.PaymentMethodCash})
	if err != nil {
		t.Fatalf("Initiate(a) error = %v", err)
	}
	if _, err := f.svc.Initiate(ctx, f.patientActor(), InitiateRequest{ConsultationID: b.ID, Method: model.PaymentMethodCash}); err != nil {
		t.Fatalf("Initiate(b) error = %v", err)
	}
	if _, err := f.svc.ConfirmCash(ctx, admin, resA.Payment.ID); err != nil {
		t.Fatalf("ConfirmCash() error = %v", err)
	}

	payments, totals, err := f.svc.ListForPatient(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("ListForPatient() error = %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}
	if totals.TotalPaid != 5000 || totals.TotalPending != 3000 {
		t.Errorf("totals = %+v, want paid 5000 pending 3000", totals)
	}
}

// TestConsultationPaymentFlow walks the full path from booking a slot to a
// pending payment for the consultation fee.
func TestConsultationPaymentFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.db.Create(&model.DoctorSchedule{
		DoctorID:     f.doctor.ID,
		WorkStart:    "09:00",
		WorkEnd:      "12:00",
		Monday:       true,
		SlotDuration: 30,
		MaxPerSlot:   1,
	}).Error; err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	// 2026-03-02 is a Monday.
	now := func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	bookings := booking.NewWithNow(f.db, schedule.New(f.db), now)
	appointments := appointment.New(f.db, bookings)
	consultations := consultation.New(f.db)

	patient := f.patientActor()
	doctor := &reqctx.Actor{Role: model.RoleDoctor, ID: f.doctor.ID}

	appt, err := bookings.Book(ctx, patient, booking.BookRequest{
		DoctorID: f.doctor.ID,
		Date:     "2026-03-02",
		TimeSlot: "09:30",
		Reason:   "fever and chills",
	})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if _, err := appointments.Accept(ctx, doctor, appt.ID); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	fee := 5000.0
	cons, err := consultations.Complete(ctx, doctor, appt.ID, consultation.CompleteRequest{
		Diagnosis: "flu",
		Fee:       &fee,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	res, err := f.svc.Initiate(ctx, patient, InitiateRequest{
		ConsultationID: cons.ID,
		Method:         model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if res.Payment.Status != model.PaymentPending || res.Payment.Amount != 5000 {
		t.Errorf("payment = %+v, want pending for 5000", res.Payment)
	}

	var finalAppt model.Appointment
	if err := f.db.First(&finalAppt, appt.ID).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if finalAppt.Status != model.AppointmentCompleted {
		t.Errorf("appointment status = %q, want completed", finalAppt.Status)
	}
}
