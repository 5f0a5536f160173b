package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

type RouterConfig struct {
	Service *agenda.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
	Log     zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	svc := cfg.Service

	r.Route("/patients", func(r chi.Router) {
		r.Post("/", createPatientHandler(svc))
		r.Get("/", listPatientsHandler(svc))
		r.Get("/{id}", getPatientHandler(svc))
		r.Patch("/{id}", updatePatientHandler(svc))
		r.Get("/{id}/appointments", patientAppointmentsHandler(svc))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(svc))
		r.Get("/{id}", getAppointmentHandler(svc))
		r.Patch("/{id}", updateAppointmentHandler(svc))
		r.Delete("/{id}", deleteAppointmentHandler(svc))
		r.Post("/{id}/status", transitionHandler(svc))

		// Waiting-room kanban verbs.
		r.Post("/{id}/confirm", kanbanVerbHandler(svc, svc.ConfirmAppointment))
		r.Post("/{id}/check-in", kanbanVerbHandler(svc, svc.CheckIn))
		r.Post("/{id}/start", kanbanVerbHandler(svc, svc.StartVisit))
		r.Post("/{id}/finish", kanbanVerbHandler(svc, svc.FinishVisit))
		r.Post("/{id}/cancel", kanbanVerbHandler(svc, svc.CancelAppointment))
	})

	r.Route("/agenda", func(r chi.Router) {
		r.Get("/day", dayViewHandler(svc))
		r.Get("/week", weekViewHandler(svc))
		r.Get("/month", monthViewHandler(svc))
		r.Get("/occupancy", occupancyHandler(svc))
		r.Get("/slots", slotsHandler(svc))
		r.Post("/sweep-no-shows", sweepNoShowsHandler(svc))
	})

	r.Route("/waitlist", func(r chi.Router) {
		r.Get("/", listWaitlistHandler(svc))
		r.Post("/", addToWaitlistHandler(svc))
		r.Patch("/{id}", updateWaitlistHandler(svc))
		r.Delete("/{id}", removeFromWaitlistHandler(svc))
		r.Post("/{id}/convert", convertWaitlistHandler(svc))
	})

	r.Get("/professionals", listProfessionalsHandler(svc))
	r.Get("/specialties", listSpecialtiesHandler(svc))
	r.Get("/consultation-types", listConsultationTypesHandler(svc))
	r.Get("/rooms", listRoomsHandler(svc))

	return r
}
