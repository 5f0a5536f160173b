package agenda

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FilterAll is the sentinel that bypasses a professional or status filter.
const FilterAll = "all"

// Filter narrows a calendar projection. Zero values and the "all" sentinel
// leave the corresponding dimension unfiltered.
type Filter struct {
	ProfessionalID string // uuid string or "all"
	Status         string // Status value or "all"
	Query          string // matched against patient name, phone and NIF
}

// WeekRange returns the Monday-start seven day window containing anchor.
func WeekRange(anchor string) (start, end string, err error) {
	day, err := time.Parse(DateLayout, anchor)
	if err != nil {
		return "", "", fmt.Errorf("parse anchor date: %w", err)
	}

	monday := day.AddDate(0, 0, -mondayOffset(day.Weekday()))
	return monday.Format(DateLayout), monday.AddDate(0, 0, 6).Format(DateLayout), nil
}

// MonthRange returns the full calendar grid for anchor's month: from the
// Monday on or before the 1st to the Sunday on or after the last day, so
// partial weeks from adjacent months fill the grid.
func MonthRange(anchor string) (start, end string, err error) {
	day, err := time.Parse(DateLayout, anchor)
	if err != nil {
		return "", "", fmt.Errorf("parse anchor date: %w", err)
	}

	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	gridStart := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
	gridEnd := last.AddDate(0, 0, 6-mondayOffset(last.Weekday()))
	return gridStart.Format(DateLayout), gridEnd.Format(DateLayout), nil
}

// mondayOffset is the number of days since the most recent Monday.
func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// PatientLookup resolves a patient for free-text matching. The projection
// stays a pure read: the Store hands in its own lookup.
type PatientLookup func(id uuid.UUID) (Patient, bool)

// FilterAppointments applies the professional, status and free-text filters
// and returns the survivors sorted by time of day. Time labels are
// zero-padded so plain string comparison orders them correctly.
func FilterAppointments(appts []Appointment, f Filter, lookup PatientLookup) []Appointment {
	var out []Appointment
	for _, appt := range appts {
		if !matchesProfessional(appt, f.ProfessionalID) {
			continue
		}
		if !matchesStatus(appt, f.Status) {
			continue
		}
		if !matchesQuery(appt, f.Query, lookup) {
			continue
		}
		out = append(out, appt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return NormalizeTime(out[i].Time) < NormalizeTime(out[j].Time)
	})

	return out
}

func matchesProfessional(appt Appointment, filter string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return appt.ProfessionalID.String() == filter
}

func matchesStatus(appt Appointment, filter string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return string(appt.Status) == filter
}

func matchesQuery(appt Appointment, query string, lookup PatientLookup) bool {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return true
	}
	if lookup == nil {
		return false
	}
	patient, ok := lookup(appt.PatientID)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(patient.Name), query) ||
		strings.Contains(patient.Phone, query) ||
		strings.Contains(patient.NIF, query)
}
