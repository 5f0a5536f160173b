package agenda

import (
	"time"

	"github.com/google/uuid"
)

// Canonical formats used across the engine. Dates compare correctly as
// strings because both layouts are zero-padded.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusWaiting, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for waitlist sorting. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

type TimePreference string

const (
	PreferMorning   TimePreference = "morning"
	PreferAfternoon TimePreference = "afternoon"
	PreferAny       TimePreference = "any"
)

type Patient struct {
	ID        uuid.UUID
	NIF       string // 9-digit tax id, unique per patient
	Name      string
	Phone     string
	Email     *string
	BirthDate *string
	Notes     *string
	Tags      []string
	CreatedAt time.Time
}

type Professional struct {
	ID        uuid.UUID
	Name      string
	Specialty string
	Color     string
	Avatar    *string
}

type Specialty struct {
	ID   uuid.UUID
	Name string
}

type ConsultationType struct {
	ID              uuid.UUID
	Name            string
	DefaultDuration int // minutes
	Color           *string
}

type Room struct {
	ID   uuid.UUID
	Name string
}

type Appointment struct {
	ID                 uuid.UUID
	PatientID          uuid.UUID
	ProfessionalID     uuid.UUID
	SpecialtyID        uuid.UUID
	ConsultationTypeID uuid.UUID
	Date               string // yyyy-MM-dd
	Time               string // HH:mm, may carry seconds when loaded from storage
	Duration           int    // minutes, > 0
	Status             Status
	Notes              *string
	RoomID             *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Occupies reports whether the appointment claims calendar slots. Cancelled
// and no-show visits release their slots for rebooking.
func (a Appointment) Occupies() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

type WaitlistItem struct {
	ID             uuid.UUID
	PatientID      uuid.UUID
	SpecialtyID    *uuid.UUID
	ProfessionalID *uuid.UUID
	TimePreference TimePreference
	PreferredDates []string
	Priority       Priority
	Reason         *string
	CreatedAt      time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
