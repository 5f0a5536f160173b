package api

import (
	"errors"
	"net/http"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

// handleDomainError maps engine sentinels to HTTP responses. Everything the
// engine rejects is recoverable by the caller retrying with corrected input;
// only unknown errors become a 500.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agenda.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, agenda.ErrProfessionalNotFound):
		writeError(w, http.StatusNotFound, "professional_not_found", err.Error())
	case errors.Is(err, agenda.ErrSpecialtyNotFound):
		writeError(w, http.StatusNotFound, "specialty_not_found", err.Error())
	case errors.Is(err, agenda.ErrConsultationTypeNotFound):
		writeError(w, http.StatusNotFound, "consultation_type_not_found", err.Error())
	case errors.Is(err, agenda.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, agenda.ErrWaitlistItemNotFound):
		writeError(w, http.StatusNotFound, "waitlist_item_not_found", err.Error())
	case errors.Is(err, agenda.ErrDuplicateNIF):
		writeError(w, http.StatusConflict, "duplicate_nif", err.Error())
	case errors.Is(err, agenda.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, agenda.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, agenda.ErrAgendaBusy):
		writeError(w, http.StatusConflict, "agenda_busy", "agenda is currently being updated, please retry shortly")
	case errors.Is(err, agenda.ErrInvalidNIF),
		errors.Is(err, agenda.ErrInvalidDate),
		errors.Is(err, agenda.ErrInvalidTime),
		errors.Is(err, agenda.ErrInvalidDuration),
		errors.Is(err, agenda.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
