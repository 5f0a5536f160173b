package api

import (
	"net/http"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

// Reference data consumed by the appointment wizard's pickers.

func listProfessionalsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Store().ListProfessionals())
	}
}

func listSpecialtiesHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Store().ListSpecialties())
	}
}

func listConsultationTypesHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Store().ListConsultationTypes())
	}
}

func listRoomsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Store().ListRooms())
	}
}
