package agenda

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekRange(t *testing.T) {
	tests := []struct {
		anchor string
		start  string
		end    string
	}{
		{"2026-09-02", "2026-08-31", "2026-09-06"}, // Wednesday
		{"2026-08-31", "2026-08-31", "2026-09-06"}, // Monday anchors its own week
		{"2026-09-06", "2026-08-31", "2026-09-06"}, // Sunday closes the week
	}

	for _, tc := range tests {
		start, end, err := WeekRange(tc.anchor)
		require.NoError(t, err)
		assert.Equal(t, tc.start, start, "anchor %s", tc.anchor)
		assert.Equal(t, tc.end, end, "anchor %s", tc.anchor)
	}
}

func TestWeekRangeBadAnchor(t *testing.T) {
	_, _, err := WeekRange("02/09/2026")
	assert.Error(t, err)
}

func TestMonthRangeCoversFullWeeks(t *testing.T) {
	// September 2026 starts on a Tuesday and ends on a Wednesday; the grid
	// pads with the surrounding Monday and Sunday.
	start, end, err := MonthRange("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", start)
	assert.Equal(t, "2026-10-04", end)
}

func TestMonthRangeMonthStartingOnMonday(t *testing.T) {
	// June 2026 starts on a Monday: no leading pad.
	start, end, err := MonthRange("2026-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", start)
	assert.Equal(t, "2026-07-05", end)
}

func calendarFixture() ([]Appointment, PatientLookup, uuid.UUID, uuid.UUID) {
	ana := Patient{ID: uuid.New(), NIF: "912345678", Name: "Ana Martins", Phone: "911222333"}
	bruno := Patient{ID: uuid.New(), NIF: "255000111", Name: "Bruno Costa", Phone: "933444555"}
	patients := map[uuid.UUID]Patient{ana.ID: ana, bruno.ID: bruno}

	profA := uuid.New()
	profB := uuid.New()

	appts := []Appointment{
		{ID: uuid.New(), PatientID: bruno.ID, ProfessionalID: profB, Date: "2026-09-07", Time: "11:00", Duration: 30, Status: StatusConfirmed},
		{ID: uuid.New(), PatientID: ana.ID, ProfessionalID: profA, Date: "2026-09-07", Time: "09:00", Duration: 30, Status: StatusScheduled},
		{ID: uuid.New(), PatientID: ana.ID, ProfessionalID: profA, Date: "2026-09-07", Time: "15:30:00", Duration: 60, Status: StatusCancelled},
	}

	lookup := func(id uuid.UUID) (Patient, bool) {
		p, ok := patients[id]
		return p, ok
	}
	return appts, lookup, profA, profB
}

func TestFilterAppointmentsSortsByTime(t *testing.T) {
	appts, lookup, _, _ := calendarFixture()

	out := FilterAppointments(appts, Filter{}, lookup)

	require.Len(t, out, 3)
	assert.Equal(t, "09:00", out[0].Time)
	assert.Equal(t, "11:00", out[1].Time)
	assert.Equal(t, "15:30:00", out[2].Time)
}

func TestFilterAppointmentsByProfessional(t *testing.T) {
	appts, lookup, profA, _ := calendarFixture()

	out := FilterAppointments(appts, Filter{ProfessionalID: profA.String()}, lookup)
	require.Len(t, out, 2)
	for _, appt := range out {
		assert.Equal(t, profA, appt.ProfessionalID)
	}

	all := FilterAppointments(appts, Filter{ProfessionalID: FilterAll}, lookup)
	assert.Len(t, all, 3)
}

func TestFilterAppointmentsByStatus(t *testing.T) {
	appts, lookup, _, _ := calendarFixture()

	out := FilterAppointments(appts, Filter{Status: string(StatusConfirmed)}, lookup)
	require.Len(t, out, 1)
	assert.Equal(t, StatusConfirmed, out[0].Status)

	all := FilterAppointments(appts, Filter{Status: FilterAll}, lookup)
	assert.Len(t, all, 3)
}

func TestFilterAppointmentsQuery(t *testing.T) {
	appts, lookup, _, _ := calendarFixture()

	byName := FilterAppointments(appts, Filter{Query: "ana"}, lookup)
	require.Len(t, byName, 2)

	byNameUpper := FilterAppointments(appts, Filter{Query: "ANA"}, lookup)
	assert.Len(t, byNameUpper, 2)

	byPhone := FilterAppointments(appts, Filter{Query: "9334"}, lookup)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "11:00", byPhone[0].Time)

	byNIF := FilterAppointments(appts, Filter{Query: "912345"}, lookup)
	assert.Len(t, byNIF, 2)

	none := FilterAppointments(appts, Filter{Query: "99999"}, lookup)
	assert.Empty(t, none)
}

func TestFilterAppointmentsCombined(t *testing.T) {
	appts, lookup, profA, _ := calendarFixture()

	out := FilterAppointments(appts, Filter{
		ProfessionalID: profA.String(),
		Status:         string(StatusScheduled),
		Query:          "martins",
	}, lookup)

	require.Len(t, out, 1)
	assert.Equal(t, "09:00", out[0].Time)
}
