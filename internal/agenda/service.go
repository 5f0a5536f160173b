package agenda

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vidaclinic/clinic-agenda/internal/config"
	redisclient "github.com/vidaclinic/clinic-agenda/internal/redis"
)

const (
	EventAppointmentCreated     = "APPOINTMENT_CREATED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentDeleted     = "APPOINTMENT_DELETED"
	EventStatusChanged          = "STATUS_CHANGED"
	EventWaitlistConverted      = "WAITLIST_CONVERTED"
	EventNoShowMarked           = "NO_SHOW_MARKED"
)

var (
	ErrAgendaBusy = errors.New("agenda is currently being updated, please retry")
)

// Service drives the engine for the HTTP layer and the worker: it serializes
// writes to a professional's day behind the Redis lock, writes mutations
// through to the Persister and records audit events. Reads go straight to
// the Store.
type Service struct {
	store     *Store
	persister Persister          // nil disables write-through (tests, ephemeral runs)
	locker    redisclient.Locker // nil disables cross-instance locking
	cfg       config.Config
	log       zerolog.Logger
}

func NewService(store *Store, persister Persister, locker redisclient.Locker, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		persister: persister,
		locker:    locker,
		cfg:       cfg,
		log:       log,
	}
}

// Store exposes the read side for projections and lookups.
func (s *Service) Store() *Store { return s.store }

func (s *Service) withAgendaLock(ctx context.Context, professionalID uuid.UUID, date string, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	err := s.locker.WithAgendaLock(ctx, professionalID, date, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrAgendaBusy
	}
	return err
}

// Patients

func (s *Service) RegisterPatient(ctx context.Context, in PatientInput) (Patient, error) {
	p, err := s.store.AddPatient(in)
	if err != nil {
		return Patient{}, err
	}
	s.persistPatient(ctx, p)
	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient registered")
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, patch PatientPatch) (Patient, error) {
	p, err := s.store.UpdatePatient(id, patch)
	if err != nil {
		return Patient{}, err
	}
	s.persistPatient(ctx, p)
	return p, nil
}

// Appointments

// CreateAppointment books a visit under the professional's day lock so two
// concurrent requests for the same agenda cannot both pass the overlap check.
func (s *Service) CreateAppointment(ctx context.Context, in AppointmentInput) (Appointment, error) {
	var created Appointment

	err := s.withAgendaLock(ctx, in.ProfessionalID, in.Date, func(lockCtx context.Context) error {
		appt, err := s.store.AddAppointment(in)
		if err != nil {
			return err
		}
		created = appt
		s.persistAppointment(lockCtx, appt)
		s.logEvent(lockCtx, appt.ID, EventAppointmentCreated, map[string]any{
			"professional_id": appt.ProfessionalID.String(),
			"date":            appt.Date,
			"time":            appt.Time,
			"duration":        appt.Duration,
		})
		return nil
	})
	if err != nil {
		return Appointment{}, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("date", created.Date).
		Str("time", created.Time).
		Msg("appointment created")
	return created, nil
}

// RescheduleAppointment merges the patch under the target agenda's lock.
// When the patch moves the visit to another professional or day, the lock
// covers the destination: that is where a conflicting booking could race in.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch) (Appointment, error) {
	existing, ok := s.store.GetAppointmentByID(id)
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}

	lockProf := existing.ProfessionalID
	if patch.ProfessionalID != nil {
		lockProf = *patch.ProfessionalID
	}
	lockDate := existing.Date
	if patch.Date != nil {
		lockDate = *patch.Date
	}

	var updated Appointment
	err := s.withAgendaLock(ctx, lockProf, lockDate, func(lockCtx context.Context) error {
		appt, err := s.store.UpdateAppointment(id, patch)
		if err != nil {
			return err
		}
		updated = appt
		s.persistAppointment(lockCtx, appt)
		s.logEvent(lockCtx, appt.ID, EventAppointmentRescheduled, map[string]any{
			"date": appt.Date,
			"time": appt.Time,
		})
		return nil
	})
	if err != nil {
		return Appointment{}, err
	}
	return updated, nil
}

// TransitionStatus applies one state-machine edge and records it.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, to Status) (Appointment, error) {
	appt, err := s.store.TransitionStatus(id, to)
	if err != nil {
		return Appointment{}, err
	}
	s.persistAppointment(ctx, appt)
	s.logEvent(ctx, appt.ID, EventStatusChanged, map[string]any{
		"status": string(to),
	})
	return appt, nil
}

// Kanban verbs used by the waiting-room board.

func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (Appointment, error) {
	return s.TransitionStatus(ctx, id, StatusConfirmed)
}

func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (Appointment, error) {
	return s.TransitionStatus(ctx, id, StatusWaiting)
}

func (s *Service) StartVisit(ctx context.Context, id uuid.UUID) (Appointment, error) {
	return s.TransitionStatus(ctx, id, StatusInProgress)
}

func (s *Service) FinishVisit(ctx context.Context, id uuid.UUID) (Appointment, error) {
	return s.TransitionStatus(ctx, id, StatusCompleted)
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (Appointment, error) {
	return s.TransitionStatus(ctx, id, StatusCancelled)
}

// DeleteAppointment removes a visit outright. Admin-only flow; cancellation
// is a status, not a deletion.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteAppointment(id); err != nil {
		return err
	}
	if s.persister != nil {
		if err := s.persister.DeleteAppointment(ctx, id); err != nil {
			s.log.Error().Err(err).Str("appointment_id", id.String()).Msg("delete write-through failed")
		}
	}
	s.logEvent(ctx, id, EventAppointmentDeleted, map[string]any{})
	return nil
}

// Waitlist

func (s *Service) AddToWaitlist(ctx context.Context, in WaitlistInput) (WaitlistItem, error) {
	item, err := s.store.AddToWaitlist(in)
	if err != nil {
		return WaitlistItem{}, err
	}
	s.persistWaitlistItem(ctx, item)
	return item, nil
}

func (s *Service) UpdateWaitlistItem(ctx context.Context, id uuid.UUID, patch WaitlistPatch) (WaitlistItem, error) {
	item, err := s.store.UpdateWaitlistItem(id, patch)
	if err != nil {
		return WaitlistItem{}, err
	}
	s.persistWaitlistItem(ctx, item)
	return item, nil
}

func (s *Service) RemoveFromWaitlist(ctx context.Context, id uuid.UUID) error {
	if err := s.store.RemoveFromWaitlist(id); err != nil {
		return err
	}
	if s.persister != nil {
		if err := s.persister.DeleteWaitlistItem(ctx, id); err != nil {
			s.log.Error().Err(err).Str("waitlist_id", id.String()).Msg("waitlist delete write-through failed")
		}
	}
	return nil
}

// ConvertWaitlistItem turns a waitlist entry into a booked visit. Creation
// and removal happen atomically in the Store; the agenda lock keeps a
// concurrent booking from claiming the slot mid-conversion.
func (s *Service) ConvertWaitlistItem(ctx context.Context, itemID uuid.UUID, in AppointmentInput) (Appointment, error) {
	item, ok := s.store.GetWaitlistItemByID(itemID)
	if !ok {
		return Appointment{}, ErrWaitlistItemNotFound
	}

	lockProf := in.ProfessionalID
	if lockProf == uuid.Nil && item.ProfessionalID != nil {
		lockProf = *item.ProfessionalID
	}

	var created Appointment
	err := s.withAgendaLock(ctx, lockProf, in.Date, func(lockCtx context.Context) error {
		appt, err := s.store.ConvertWaitlistItem(itemID, in)
		if err != nil {
			return err
		}
		created = appt
		s.persistAppointment(lockCtx, appt)
		if s.persister != nil {
			if err := s.persister.DeleteWaitlistItem(lockCtx, itemID); err != nil {
				s.log.Error().Err(err).Str("waitlist_id", itemID.String()).Msg("waitlist delete write-through failed")
			}
		}
		s.logEvent(lockCtx, appt.ID, EventWaitlistConverted, map[string]any{
			"waitlist_id": itemID.String(),
		})
		return nil
	})
	if err != nil {
		return Appointment{}, err
	}

	s.log.Info().
		Str("waitlist_id", itemID.String()).
		Str("appointment_id", created.ID.String()).
		Msg("waitlist item converted")
	return created, nil
}

// SweepNoShows marks overdue visits as missed. The worker calls it on its
// interval and the API exposes it for on-demand sweeps. The grace period is
// configuration; there is no implicit no-show logic anywhere else.
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	marked := s.store.MarkNoShows(s.store.now(), s.cfg.NoShowGrace)
	for _, appt := range marked {
		s.persistAppointment(ctx, appt)
		s.logEvent(ctx, appt.ID, EventNoShowMarked, map[string]any{
			"date": appt.Date,
			"time": appt.Time,
		})
	}
	if len(marked) > 0 {
		s.log.Info().Int("count", len(marked)).Msg("marked missed visits as no-show")
	}
	return len(marked), nil
}

// Write-through helpers. Persistence failures are logged and do not roll
// back the in-memory mutation; the backend is assumed durable and the
// snapshot reload reconciles on restart.

func (s *Service) persistPatient(ctx context.Context, p Patient) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SavePatient(ctx, p); err != nil {
		s.log.Error().Err(err).Str("patient_id", p.ID.String()).Msg("patient write-through failed")
	}
}

func (s *Service) persistAppointment(ctx context.Context, a Appointment) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveAppointment(ctx, a); err != nil {
		s.log.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("appointment write-through failed")
	}
}

func (s *Service) persistWaitlistItem(ctx context.Context, item WaitlistItem) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveWaitlistItem(ctx, item); err != nil {
		s.log.Error().Err(err).Str("waitlist_id", item.ID.String()).Msg("waitlist write-through failed")
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	if s.persister == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("marshal event payload")
		data = nil
	}

	apptID := appointmentID
	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.store.now(),
	}

	if err := s.persister.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("insert event log failed")
	}
}
