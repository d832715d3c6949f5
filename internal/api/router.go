package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medimind/medimind-server/internal/observability/metrics"
	"github.com/medimind/medimind-server/pkg/logging"
)

// RouterConfig carries everything the HTTP layer depends on. Optional
// fields (Pool, Redis, BookingMetrics) may be nil in tests.
type RouterConfig struct {
	Logger         *logging.Logger
	Appointments   AppointmentService
	Doctors        DoctorService
	Chat           ChatService
	News           NewsService
	BookingMetrics *metrics.BookingMetrics
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	Env            string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware)

	health := NewHealthHandler(cfg.Pool, cfg.Redis, cfg.Env)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/book", bookAppointmentHandler(cfg.Appointments, cfg.BookingMetrics, cfg.Logger))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments, cfg.Logger))
		r.Put("/appointments/{id}", updateAppointmentHandler(cfg.Appointments, cfg.Logger))
		r.Post("/appointments/{id}/confirm", transitionHandler(cfg.Appointments.Confirm, "Appointment confirmed", cfg.Logger))
		r.Post("/appointments/{id}/complete", transitionHandler(cfg.Appointments.Complete, "Appointment completed", cfg.Logger))
		r.Post("/appointments/{id}/cancel", transitionHandler(cfg.Appointments.Cancel, "Appointment cancelled", cfg.Logger))

		r.Post("/doctor/register", registerDoctorHandler(cfg.Doctors, cfg.Logger))
		r.Post("/doctor/login", loginDoctorHandler(cfg.Doctors, cfg.Logger))
		r.Get("/doctors", listDoctorsHandler(cfg.Doctors, cfg.Logger))
		r.Get("/doctor/profile/{id}", getDoctorProfileHandler(cfg.Doctors, cfg.Logger))
		r.Put("/doctor/profile/{id}", updateDoctorProfileHandler(cfg.Doctors, cfg.Logger))

		r.Post("/chat", chatHandler(cfg.Chat, cfg.Logger))
		r.Get("/chat/history/{sessionID}", chatHistoryHandler(cfg.Chat, cfg.Logger))

		r.Get("/news", newsHandler(cfg.News, cfg.Logger))
	})

	return r
}
