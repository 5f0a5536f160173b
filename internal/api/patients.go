package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

func createPatientHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.RegisterPatient(r.Context(), agenda.PatientInput{
			NIF:       req.NIF,
			Name:      req.Name,
			Phone:     req.Phone,
			Email:     req.Email,
			BirthDate: req.BirthDate,
			Notes:     req.Notes,
			Tags:      req.Tags,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

// listPatientsHandler returns all patients, or resolves a single one when
// the ?nif= query is present: the appointment wizard's "existing patient?"
// lookup.
func listPatientsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if nif := r.URL.Query().Get("nif"); nif != "" {
			p, ok := svc.Store().FindPatientByNif(nif)
			if !ok {
				writeError(w, http.StatusNotFound, "patient_not_found", "no patient with this NIF")
				return
			}
			writeJSON(w, http.StatusOK, toPatientResponse(p))
			return
		}

		patients := svc.Store().ListPatients()
		out := make([]PatientResponse, 0, len(patients))
		for _, p := range patients {
			out = append(out, toPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPatientHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		p, ok := svc.Store().GetPatientByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "patient_not_found", "patient not found")
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func updatePatientHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		var req UpdatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.UpdatePatient(r.Context(), id, agenda.PatientPatch{
			Name:      req.Name,
			Phone:     req.Phone,
			Email:     req.Email,
			BirthDate: req.BirthDate,
			Notes:     req.Notes,
			Tags:      req.Tags,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

func patientAppointmentsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		if _, ok := svc.Store().GetPatientByID(id); !ok {
			writeError(w, http.StatusNotFound, "patient_not_found", "patient not found")
			return
		}

		appts := svc.Store().AppointmentsByPatient(id)
		writeJSON(w, http.StatusOK, toAppointmentResponses(svc.Store(), appts))
	}
}
