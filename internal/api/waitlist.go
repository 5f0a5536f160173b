package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

func listWaitlistHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := svc.Store().Waitlist()
		out := make([]WaitlistItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, toWaitlistResponse(svc.Store(), item))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func addToWaitlistHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WaitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		in := agenda.WaitlistInput{
			PatientID:      patientID,
			TimePreference: agenda.TimePreference(req.TimePreference),
			PreferredDates: req.PreferredDates,
			Priority:       agenda.Priority(req.Priority),
			Reason:         req.Reason,
		}
		if req.SpecialtyID != nil {
			id, err := uuid.Parse(*req.SpecialtyID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "specialty_id must be a valid UUID")
				return
			}
			in.SpecialtyID = &id
		}
		if req.ProfessionalID != nil {
			id, err := uuid.Parse(*req.ProfessionalID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "professional_id must be a valid UUID")
				return
			}
			in.ProfessionalID = &id
		}

		item, err := svc.AddToWaitlist(r.Context(), in)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toWaitlistResponse(svc.Store(), item))
	}
}

func updateWaitlistHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_waitlist_id", "id must be a valid UUID")
			return
		}

		var req UpdateWaitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patch := agenda.WaitlistPatch{
			PreferredDates: req.PreferredDates,
			Reason:         req.Reason,
		}
		if req.TimePreference != nil {
			pref := agenda.TimePreference(*req.TimePreference)
			patch.TimePreference = &pref
		}
		if req.Priority != nil {
			prio := agenda.Priority(*req.Priority)
			patch.Priority = &prio
		}
		if req.SpecialtyID != nil {
			sid, err := uuid.Parse(*req.SpecialtyID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "specialty_id must be a valid UUID")
				return
			}
			patch.SpecialtyID = &sid
		}
		if req.ProfessionalID != nil {
			pid, err := uuid.Parse(*req.ProfessionalID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "professional_id must be a valid UUID")
				return
			}
			patch.ProfessionalID = &pid
		}

		item, err := svc.UpdateWaitlistItem(r.Context(), id, patch)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toWaitlistResponse(svc.Store(), item))
	}
}

func removeFromWaitlistHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_waitlist_id", "id must be a valid UUID")
			return
		}

		if err := svc.RemoveFromWaitlist(r.Context(), id); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// convertWaitlistHandler books the chosen slot for the waitlisted patient
// and removes the entry in one shot.
func convertWaitlistHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_waitlist_id", "id must be a valid UUID")
			return
		}

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		// patient_id may be omitted: conversion fills it from the entry.
		if req.PatientID == "" {
			req.PatientID = uuid.Nil.String()
		}
		if req.ProfessionalID == "" {
			req.ProfessionalID = uuid.Nil.String()
		}

		in, err := appointmentInputFromRequest(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		appt, err := svc.ConvertWaitlistItem(r.Context(), id, in)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(svc.Store(), appt))
	}
}
