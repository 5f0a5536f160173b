package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidaclinic/clinic-agenda/internal/agenda"
)

type CreatePatientRequest struct {
	NIF       string   `json:"nif"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Email     *string  `json:"email,omitempty"`
	BirthDate *string  `json:"birth_date,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type UpdatePatientRequest struct {
	Name      *string  `json:"name,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	Email     *string  `json:"email,omitempty"`
	BirthDate *string  `json:"birth_date,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type PatientResponse struct {
	ID        uuid.UUID `json:"id"`
	NIF       string    `json:"nif"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	BirthDate *string   `json:"birth_date,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toPatientResponse(p agenda.Patient) PatientResponse {
	return PatientResponse{
		ID:        p.ID,
		NIF:       p.NIF,
		Name:      p.Name,
		Phone:     p.Phone,
		Email:     p.Email,
		BirthDate: p.BirthDate,
		Notes:     p.Notes,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
	}
}

type CreateAppointmentRequest struct {
	PatientID          string  `json:"patient_id"`
	ProfessionalID     string  `json:"professional_id"`
	SpecialtyID        string  `json:"specialty_id,omitempty"`
	ConsultationTypeID string  `json:"consultation_type_id,omitempty"`
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	Duration           int     `json:"duration"`
	Status             string  `json:"status,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	RoomID             *string `json:"room_id,omitempty"`
}

type UpdateAppointmentRequest struct {
	ProfessionalID     *string `json:"professional_id,omitempty"`
	SpecialtyID        *string `json:"specialty_id,omitempty"`
	ConsultationTypeID *string `json:"consultation_type_id,omitempty"`
	Date               *string `json:"date,omitempty"`
	Time               *string `json:"time,omitempty"`
	Duration           *int    `json:"duration,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	RoomID             *string `json:"room_id,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PatientID          uuid.UUID  `json:"patient_id"`
	PatientName        string     `json:"patient_name,omitempty"`
	ProfessionalID     uuid.UUID  `json:"professional_id"`
	ProfessionalName   string     `json:"professional_name,omitempty"`
	SpecialtyID        uuid.UUID  `json:"specialty_id,omitempty"`
	ConsultationTypeID uuid.UUID  `json:"consultation_type_id,omitempty"`
	Date               string     `json:"date"`
	Time               string     `json:"time"`
	Duration           int        `json:"duration"`
	Status             string     `json:"status"`
	Notes              *string    `json:"notes,omitempty"`
	RoomID             *uuid.UUID `json:"room_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toAppointmentResponse(store *agenda.Store, a agenda.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		ProfessionalID:     a.ProfessionalID,
		SpecialtyID:        a.SpecialtyID,
		ConsultationTypeID: a.ConsultationTypeID,
		Date:               a.Date,
		Time:               a.Time,
		Duration:           a.Duration,
		Status:             string(a.Status),
		Notes:              a.Notes,
		RoomID:             a.RoomID,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if p, ok := store.GetPatientByID(a.PatientID); ok {
		resp.PatientName = p.Name
	}
	if p, ok := store.GetProfessionalByID(a.ProfessionalID); ok {
		resp.ProfessionalName = p.Name
	}
	return resp
}

func toAppointmentResponses(store *agenda.Store, appts []agenda.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(store, a))
	}
	return out
}

type WaitlistRequest struct {
	PatientID      string   `json:"patient_id"`
	SpecialtyID    *string  `json:"specialty_id,omitempty"`
	ProfessionalID *string  `json:"professional_id,omitempty"`
	TimePreference string   `json:"time_preference,omitempty"`
	PreferredDates []string `json:"preferred_dates,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Reason         *string  `json:"reason,omitempty"`
}

type UpdateWaitlistRequest struct {
	SpecialtyID    *string  `json:"specialty_id,omitempty"`
	ProfessionalID *string  `json:"professional_id,omitempty"`
	TimePreference *string  `json:"time_preference,omitempty"`
	PreferredDates []string `json:"preferred_dates,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	Reason         *string  `json:"reason,omitempty"`
}

type WaitlistItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	PatientName    string     `json:"patient_name,omitempty"`
	SpecialtyID    *uuid.UUID `json:"specialty_id,omitempty"`
	ProfessionalID *uuid.UUID `json:"professional_id,omitempty"`
	TimePreference string     `json:"time_preference"`
	PreferredDates []string   `json:"preferred_dates,omitempty"`
	Priority       string     `json:"priority"`
	Reason         *string    `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toWaitlistResponse(store *agenda.Store, item agenda.WaitlistItem) WaitlistItemResponse {
	resp := WaitlistItemResponse{
		ID:             item.ID,
		PatientID:      item.PatientID,
		SpecialtyID:    item.SpecialtyID,
		ProfessionalID: item.ProfessionalID,
		TimePreference: string(item.TimePreference),
		PreferredDates: item.PreferredDates,
		Priority:       string(item.Priority),
		Reason:         item.Reason,
		CreatedAt:      item.CreatedAt,
	}
	if p, ok := store.GetPatientByID(item.PatientID); ok {
		resp.PatientName = p.Name
	}
	return resp
}

type SlotOccupancyResponse struct {
	Slot        string               `json:"slot"`
	IsStart     bool                 `json:"is_start"`
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
}

type OccupancyResponse struct {
	Date           string                  `json:"date"`
	ProfessionalID uuid.UUID               `json:"professional_id"`
	Slots          []SlotOccupancyResponse `json:"slots"`
}

type SweepResponse struct {
	Marked int `json:"marked"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
