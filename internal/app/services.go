package app

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/internal/service/admin"
	"github.com/mediqhq/mediq_backend/internal/service/appointment"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
	"github.com/mediqhq/mediq_backend/internal/service/billing"
	"github.com/mediqhq/mediq_backend/internal/service/booking"
	"github.com/mediqhq/mediq_backend/internal/service/consultation"
	"github.com/mediqhq/mediq_backend/internal/service/doctor"
	"github.com/mediqhq/mediq_backend/internal/service/patient"
	"github.com/mediqhq/mediq_backend/internal/service/schedule"
	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
	"github.com/mediqhq/mediq_backend/pkg/paystack"
	"github.com/mediqhq/mediq_backend/pkg/storage"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAuthService,
		ProvideScheduleService,
		ProvideBookingService,
		ProvideAppointmentService,
		ProvideConsultationService,
		ProvideBillingService,
		ProvidePatientService,
		ProvideDoctorService,
		ProvideAdminService,
	),
)

func ProvideAuthService(
	db *gorm.DB,
	rdb *redis.Client,
	paseto *pasetotoken.Manager,
	cfg *config.Config,
) auth.Service {
	return auth.New(db, rdb, paseto, cfg)
}

func ProvideScheduleService(db *gorm.DB) schedule.Service {
	return schedule.New(db)
}

func ProvideBookingService(db *gorm.DB, schedules schedule.Service) booking.Service {
	return booking.New(db, schedules)
}

func ProvideAppointmentService(db *gorm.DB, bookings booking.Service) appointment.Service {
	return appointment.New(db, bookings)
}

func ProvideConsultationService(db *gorm.DB) consultation.Service {
	return consultation.New(db)
}

func ProvideBillingService(db *gorm.DB, gateway *paystack.Client, cfg *config.Config) billing.Service {
	return billing.New(db, gateway, cfg.Paystack.CallbackURL)
}

func ProvidePatientService(db *gorm.DB, files *storage.Store) patient.Service {
	return patient.New(db, files)
}

func ProvideDoctorService(db *gorm.DB, files *storage.Store) doctor.Service {
	return doctor.New(db, files)
}

func ProvideAdminService(db *gorm.DB) admin.Service {
	return admin.New(db)
}
