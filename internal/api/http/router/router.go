package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/internal/api/http/middleware"
	"github.com/mediqhq/mediq_backend/internal/service/admin"
	"github.com/mediqhq/mediq_backend/internal/service/appointment"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
	"github.com/mediqhq/mediq_backend/internal/service/billing"
	"github.com/mediqhq/mediq_backend/internal/service/booking"
	"github.com/mediqhq/mediq_backend/internal/service/consultation"
	"github.com/mediqhq/mediq_backend/internal/service/doctor"
	"github.com/mediqhq/mediq_backend/internal/service/patient"
	"github.com/mediqhq/mediq_backend/internal/service/schedule"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	Auth            authorize.IAuthorization
	AuthSvc         auth.Service
	PatientSvc      patient.Service
	DoctorSvc       doctor.Service
	ScheduleSvc     schedule.Service
	BookingSvc      booking.Service
	AppointmentSvc  appointment.Service
	ConsultationSvc consultation.Service
	BillingSvc      billing.Service
	AdminSvc        admin.Service
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	authH := handler.NewAuthHandler(r.p.AuthSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	doctorH := handler.NewDoctorHandler(r.p.DoctorSvc)
	scheduleH := handler.NewScheduleHandler(r.p.ScheduleSvc, r.p.BookingSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.BookingSvc, r.p.AppointmentSvc)
	consultationH := handler.NewConsultationHandler(r.p.ConsultationSvc)
	paymentH := handler.NewPaymentHandler(r.p.BillingSvc)
	adminH := handler.NewAdminHandler(r.p.AdminSvc)

	api := app.Group("/api/v1")

	r.registerAuthRoutes(api, authH, authRequired)
	r.registerPatientRoutes(api, patientH, authRequired)
	r.registerDoctorRoutes(api, doctorH, scheduleH, authRequired, requirePerm)
	r.registerAppointmentRoutes(api, appointmentH, consultationH, authRequired, requirePerm)
	r.registerConsultationRoutes(api, consultationH, paymentH, authRequired, requirePerm)
	r.registerPaymentRoutes(api, paymentH, authRequired, requirePerm)
	r.registerAdminRoutes(api, adminH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Metrics.Enabled {
		path := r.p.Cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
