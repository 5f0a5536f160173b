package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

func createAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in, err := appointmentInputFromRequest(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), in)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(svc.Store(), appt))
	}
}

func appointmentInputFromRequest(req CreateAppointmentRequest) (agenda.AppointmentInput, error) {
	var in agenda.AppointmentInput

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return in, errInvalidField("patient_id")
	}
	professionalID, err := uuid.Parse(req.ProfessionalID)
	if err != nil {
		return in, errInvalidField("professional_id")
	}

	in = agenda.AppointmentInput{
		PatientID:      patientID,
		ProfessionalID: professionalID,
		Date:           req.Date,
		Time:           req.Time,
		Duration:       req.Duration,
		Status:         agenda.Status(req.Status),
		Notes:          req.Notes,
	}

	if req.SpecialtyID != "" {
		id, err := uuid.Parse(req.SpecialtyID)
		if err != nil {
			return in, errInvalidField("specialty_id")
		}
		in.SpecialtyID = id
	}
	if req.ConsultationTypeID != "" {
		id, err := uuid.Parse(req.ConsultationTypeID)
		if err != nil {
			return in, errInvalidField("consultation_type_id")
		}
		in.ConsultationTypeID = id
	}
	if req.RoomID != nil {
		id, err := uuid.Parse(*req.RoomID)
		if err != nil {
			return in, errInvalidField("room_id")
		}
		in.RoomID = &id
	}

	return in, nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) + " must be a valid UUID" }

func errInvalidField(name string) error { return fieldError(name) }

func getAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, ok := svc.Store().GetAppointmentByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(svc.Store(), appt))
	}
}

func updateAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patch := agenda.AppointmentPatch{
			Date:     req.Date,
			Time:     req.Time,
			Duration: req.Duration,
			Notes:    req.Notes,
		}
		if req.ProfessionalID != nil {
			pid, err := uuid.Parse(*req.ProfessionalID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "professional_id must be a valid UUID")
				return
			}
			patch.ProfessionalID = &pid
		}
		if req.SpecialtyID != nil {
			sid, err := uuid.Parse(*req.SpecialtyID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "specialty_id must be a valid UUID")
				return
			}
			patch.SpecialtyID = &sid
		}
		if req.ConsultationTypeID != nil {
			cid, err := uuid.Parse(*req.ConsultationTypeID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "consultation_type_id must be a valid UUID")
				return
			}
			patch.ConsultationTypeID = &cid
		}
		if req.RoomID != nil {
			rid, err := uuid.Parse(*req.RoomID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "room_id must be a valid UUID")
				return
			}
			patch.RoomID = &rid
		}

		appt, err := svc.RescheduleAppointment(r.Context(), id, patch)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(svc.Store(), appt))
	}
}

func deleteAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// transitionHandler handles POST /appointments/{id}/status with an explicit
// target status in the body.
func transitionHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.TransitionStatus(r.Context(), id, agenda.Status(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(svc.Store(), appt))
	}
}

// kanbanVerbHandler builds a handler for the fixed waiting-room transitions:
// confirm, check-in, start, finish, cancel.
func kanbanVerbHandler(svc *agenda.Service, apply func(ctx context.Context, id uuid.UUID) (agenda.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := apply(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(svc.Store(), appt))
	}
}
