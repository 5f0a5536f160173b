package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

func filterFromQuery(r *http.Request) agenda.Filter {
	q := r.URL.Query()
	return agenda.Filter{
		ProfessionalID: q.Get("professional"),
		Status:         q.Get("status"),
		Query:          q.Get("q"),
	}
}

func dayViewHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		appts := svc.Store().DayView(date, filterFromQuery(r))
		writeJSON(w, http.StatusOK, toAppointmentResponses(svc.Store(), appts))
	}
}

func weekViewHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anchor := r.URL.Query().Get("anchor")
		if anchor == "" {
			writeError(w, http.StatusBadRequest, "missing_anchor", "anchor query parameter is required")
			return
		}

		appts, err := svc.Store().WeekView(anchor, filterFromQuery(r))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_anchor", "anchor must be a yyyy-MM-dd date")
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(svc.Store(), appts))
	}
}

func monthViewHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		anchor := r.URL.Query().Get("anchor")
		if anchor == "" {
			writeError(w, http.StatusBadRequest, "missing_anchor", "anchor query parameter is required")
			return
		}

		appts, err := svc.Store().MonthView(anchor, filterFromQuery(r))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_anchor", "anchor must be a yyyy-MM-dd date")
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(svc.Store(), appts))
	}
}

// occupancyHandler renders one professional's day grid: every slot, claimed
// or not, with the claiming appointment attached on its start slot.
func occupancyHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}
		professionalID, err := uuid.Parse(r.URL.Query().Get("professional"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional", "professional must be a valid UUID")
			return
		}

		store := svc.Store()
		occupancy := store.Occupancy(date, professionalID)

		resp := OccupancyResponse{
			Date:           date,
			ProfessionalID: professionalID,
		}
		for _, slot := range store.Slots() {
			entry := SlotOccupancyResponse{Slot: slot}
			if occ, ok := occupancy[slot]; ok {
				appt := toAppointmentResponse(store, occ.Appointment)
				entry.Appointment = &appt
				entry.IsStart = occ.IsStart
			}
			resp.Slots = append(resp.Slots, entry)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func slotsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Store().Slots())
	}
}

// sweepNoShowsHandler runs the no-show sweep on the live in-memory state, so
// operators can mark missed visits without waiting for the worker interval.
func sweepNoShowsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marked, err := svc.SweepNoShows(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SweepResponse{Marked: marked})
	}
}
