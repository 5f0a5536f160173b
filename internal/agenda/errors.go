package agenda

import "errors"

var (
	ErrPatientNotFound          = errors.New("patient not found")
	ErrProfessionalNotFound     = errors.New("professional not found")
	ErrSpecialtyNotFound        = errors.New("specialty not found")
	ErrConsultationTypeNotFound = errors.New("consultation type not found")
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrWaitlistItemNotFound     = errors.New("waitlist item not found")

	ErrDuplicateNIF = errors.New("a patient with this NIF already exists")
	ErrInvalidNIF   = errors.New("NIF must be exactly 9 digits")

	ErrSlotConflict            = errors.New("professional already has an appointment in this slot")
	ErrInvalidDate             = errors.New("date must be a yyyy-MM-dd calendar date")
	ErrInvalidTime             = errors.New("time must be a zero-padded 24h HH:mm value")
	ErrInvalidDuration         = errors.New("appointment duration must be positive")
	ErrInvalidStatus           = errors.New("unknown appointment status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
