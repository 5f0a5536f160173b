package agenda

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	opts := DefaultStoreOptions()
	opts.Clock = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return NewStore(opts)
}

func mustAddPatient(t *testing.T, s *Store, nif, name string) Patient {
	t.Helper()
	p, err := s.AddPatient(PatientInput{NIF: nif, Name: name, Phone: "911000000"})
	require.NoError(t, err)
	return p
}

func mustAddProfessional(t *testing.T, s *Store, name string) Professional {
	t.Helper()
	return s.PutProfessional(Professional{Name: name, Specialty: "Medicina Geral", Color: "#4F46E5"})
}

func TestAddPatientRejectsInvalidNIF(t *testing.T) {
	s := newTestStore(t)

	for _, nif := range []string{"", "12345678", "1234567890", "12345678a"} {
		_, err := s.AddPatient(PatientInput{NIF: nif, Name: "x", Phone: "911"})
		assert.ErrorIs(t, err, ErrInvalidNIF, "nif %q", nif)
	}
}

func TestAddPatientRejectsDuplicateNIF(t *testing.T) {
	s := newTestStore(t)

	mustAddPatient(t, s, "123456789", "Ana")
	_, err := s.AddPatient(PatientInput{NIF: "123456789", Name: "Outra Ana", Phone: "922"})
	assert.ErrorIs(t, err, ErrDuplicateNIF)
}

func TestFindPatientByNif(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")

	found, ok := s.FindPatientByNif("123456789")
	require.True(t, ok)
	assert.Equal(t, ana.ID, found.ID)

	_, ok = s.FindPatientByNif("999999999")
	assert.False(t, ok)
}

func TestUpdatePatientMergesPatch(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")

	name := "Ana Martins"
	email := "ana@example.pt"
	updated, err := s.UpdatePatient(ana.ID, PatientPatch{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ana Martins", updated.Name)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "ana@example.pt", *updated.Email)
	assert.Equal(t, "911000000", updated.Phone)

	_, err = s.UpdatePatient(uuid.New(), PatientPatch{Name: &name})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestAddAppointmentValidation(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	base := AppointmentInput{
		PatientID:      ana.ID,
		ProfessionalID: prof.ID,
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       30,
	}

	t.Run("zero duration", func(t *testing.T) {
		in := base
		in.Duration = 0
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("unknown patient", func(t *testing.T) {
		in := base
		in.PatientID = uuid.New()
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("unknown professional", func(t *testing.T) {
		in := base
		in.ProfessionalID = uuid.New()
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrProfessionalNotFound)
	})

	t.Run("unknown specialty", func(t *testing.T) {
		in := base
		in.SpecialtyID = uuid.New()
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrSpecialtyNotFound)
	})

	t.Run("unknown consultation type", func(t *testing.T) {
		in := base
		in.ConsultationTypeID = uuid.New()
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrConsultationTypeNotFound)
	})

	t.Run("known specialty and consultation type", func(t *testing.T) {
		sp := s.PutSpecialty(Specialty{Name: "Cardiologia"})
		ct := s.PutConsultationType(ConsultationType{Name: "Primeira Consulta", DefaultDuration: 60})

		in := base
		in.Time = "12:00"
		in.SpecialtyID = sp.ID
		in.ConsultationTypeID = ct.ID
		_, err := s.AddAppointment(in)
		assert.NoError(t, err)
	})

	t.Run("creation status restricted", func(t *testing.T) {
		in := base
		in.Status = StatusCompleted
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("defaults to scheduled and normalizes time", func(t *testing.T) {
		in := base
		in.Time = "09:00:00"
		appt, err := s.AddAppointment(in)
		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, appt.Status)
		assert.Equal(t, "09:00", appt.Time)
	})
}

func TestAddAppointmentRejectsOverlap(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	bruno := mustAddPatient(t, s, "987654321", "Bruno")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	_, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	// Off-grid start inside the booked span still collides.
	_, err = s.AddAppointment(AppointmentInput{
		PatientID: bruno.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:15", Duration: 30,
	})
	assert.ErrorIs(t, err, ErrSlotConflict)

	// The slot right after is free.
	_, err = s.AddAppointment(AppointmentInput{
		PatientID: bruno.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:30", Duration: 30,
	})
	assert.NoError(t, err)
}

func TestAddAppointmentRejectsMalformedDateAndTime(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	base := AppointmentInput{
		PatientID:      ana.ID,
		ProfessionalID: prof.ID,
		Date:           "2026-09-07",
		Time:           "09:00",
		Duration:       30,
	}

	_, err := s.AddAppointment(base)
	require.NoError(t, err)

	// An unpadded hour never matches a grid label, so if it were stored it
	// would be invisible to the overlap check. It must be rejected, not
	// booked alongside the 09:00 visit.
	in := base
	in.Time = "9:00"
	_, err = s.AddAppointment(in)
	assert.ErrorIs(t, err, ErrInvalidTime)

	for _, tm := range []string{"", "0900", "24:00", "09:60", "9:0"} {
		in := base
		in.Time = tm
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrInvalidTime, "time %q", tm)
	}

	for _, d := range []string{"", "07-09-2026", "2026-9-7", "2026-13-01"} {
		in := base
		in.Date = d
		in.Time = "10:00"
		_, err := s.AddAppointment(in)
		assert.ErrorIs(t, err, ErrInvalidDate, "date %q", d)
	}

	// Reads with seconds remain fine.
	in = base
	in.Time = "10:00:00"
	_, err = s.AddAppointment(in)
	assert.NoError(t, err)
}

func TestUpdateAppointmentRejectsMalformedDateAndTime(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	appt, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	badTime := "9:30"
	_, err = s.UpdateAppointment(appt.ID, AppointmentPatch{Time: &badTime})
	assert.ErrorIs(t, err, ErrInvalidTime)

	badDate := "next tuesday"
	_, err = s.UpdateAppointment(appt.ID, AppointmentPatch{Date: &badDate})
	assert.ErrorIs(t, err, ErrInvalidDate)

	kept, ok := s.GetAppointmentByID(appt.ID)
	require.True(t, ok)
	assert.Equal(t, "09:00", kept.Time)
	assert.Equal(t, "2026-09-07", kept.Date)
}

func TestAddAppointmentAllowsOtherProfessionalSameSlot(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	silva := mustAddProfessional(t, s, "Dr. Silva")
	costa := mustAddProfessional(t, s, "Dra. Costa")

	_, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: silva.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	_, err = s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: costa.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	assert.NoError(t, err)
}

func TestCancelledVisitReleasesSlot(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	bruno := mustAddPatient(t, s, "987654321", "Bruno")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	appt, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	_, err = s.TransitionStatus(appt.ID, StatusCancelled)
	require.NoError(t, err)

	_, err = s.AddAppointment(AppointmentInput{
		PatientID: bruno.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	assert.NoError(t, err)
}

func TestUpdateAppointmentReschedule(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	bruno := mustAddPatient(t, s, "987654321", "Bruno")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	_, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	second, err := s.AddAppointment(AppointmentInput{
		PatientID: bruno.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "10:00", Duration: 30,
	})
	require.NoError(t, err)

	// Moving onto the other visit's slot is rejected and nothing changes.
	conflictTime := "09:00"
	_, err = s.UpdateAppointment(second.ID, AppointmentPatch{Time: &conflictTime})
	assert.ErrorIs(t, err, ErrSlotConflict)

	kept, ok := s.GetAppointmentByID(second.ID)
	require.True(t, ok)
	assert.Equal(t, "10:00", kept.Time)

	// A free slot works and the time is normalized.
	freeTime := "11:30:00"
	moved, err := s.UpdateAppointment(second.ID, AppointmentPatch{Time: &freeTime})
	require.NoError(t, err)
	assert.Equal(t, "11:30", moved.Time)
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	s := newTestStore(t)
	d := "2026-09-07"
	_, err := s.UpdateAppointment(uuid.New(), AppointmentPatch{Date: &d})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestTransitionStatusEnforcesMachine(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	appt, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	// Skipping confirmed is rejected.
	_, err = s.TransitionStatus(appt.ID, StatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	for _, next := range []Status{StatusConfirmed, StatusWaiting, StatusInProgress, StatusCompleted} {
		appt, err = s.TransitionStatus(appt.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, appt.Status)
	}

	// Terminal.
	_, err = s.TransitionStatus(appt.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = s.TransitionStatus(appt.ID, Status("bogus"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.TransitionStatus(uuid.New(), StatusConfirmed)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDeleteAppointment(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	appt, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAppointment(appt.ID))
	_, ok := s.GetAppointmentByID(appt.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, s.DeleteAppointment(appt.ID), ErrAppointmentNotFound)
}

func TestOccupancyProjection(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	appt, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 60,
	})
	require.NoError(t, err)

	occ := s.Occupancy("2026-09-07", prof.ID)
	require.Len(t, occ, 2)
	assert.True(t, occ["09:00"].IsStart)
	assert.False(t, occ["09:30"].IsStart)
	assert.Equal(t, appt.ID, occ["09:30"].Appointment.ID)

	assert.Empty(t, s.Occupancy("2026-09-08", prof.ID))
	assert.Empty(t, s.Occupancy("2026-09-07", uuid.New()))
}

func TestCalendarViews(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana Martins")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	// Monday, Wednesday and the following Monday.
	for _, d := range []string{"2026-09-07", "2026-09-09", "2026-09-14"} {
		_, err := s.AddAppointment(AppointmentInput{
			PatientID: ana.ID, ProfessionalID: prof.ID,
			Date: d, Time: "09:00", Duration: 30,
		})
		require.NoError(t, err)
	}

	day := s.DayView("2026-09-09", Filter{})
	require.Len(t, day, 1)
	assert.Equal(t, "2026-09-09", day[0].Date)

	week, err := s.WeekView("2026-09-09", Filter{})
	require.NoError(t, err)
	assert.Len(t, week, 2)

	month, err := s.MonthView("2026-09-09", Filter{})
	require.NoError(t, err)
	assert.Len(t, month, 3)

	_, err = s.WeekView("not-a-date", Filter{})
	assert.Error(t, err)

	named := s.DayView("2026-09-09", Filter{Query: "martins"})
	assert.Len(t, named, 1)
	none := s.DayView("2026-09-09", Filter{Query: "zzz"})
	assert.Empty(t, none)
}

func TestWaitlistLifecycle(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")

	_, err := s.AddToWaitlist(WaitlistInput{PatientID: uuid.New()})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	item, err := s.AddToWaitlist(WaitlistInput{PatientID: ana.ID})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, item.Priority)
	assert.Equal(t, PreferAny, item.TimePreference)

	prio := PriorityHigh
	pref := PreferMorning
	updated, err := s.UpdateWaitlistItem(item.ID, WaitlistPatch{Priority: &prio, TimePreference: &pref})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, updated.Priority)
	assert.Equal(t, PreferMorning, updated.TimePreference)

	require.NoError(t, s.RemoveFromWaitlist(item.ID))
	assert.ErrorIs(t, s.RemoveFromWaitlist(item.ID), ErrWaitlistItemNotFound)

	_, err = s.UpdateWaitlistItem(item.ID, WaitlistPatch{Priority: &prio})
	assert.ErrorIs(t, err, ErrWaitlistItemNotFound)
}

func TestConvertWaitlistItem(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	item, err := s.AddToWaitlist(WaitlistInput{
		PatientID:      ana.ID,
		ProfessionalID: &prof.ID,
		Priority:       PriorityHigh,
	})
	require.NoError(t, err)

	// Patient and professional come from the entry when omitted.
	appt, err := s.ConvertWaitlistItem(item.ID, AppointmentInput{
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, appt.PatientID)
	assert.Equal(t, prof.ID, appt.ProfessionalID)

	_, ok := s.GetWaitlistItemByID(item.ID)
	assert.False(t, ok, "converted entry should leave the waitlist")
}

func TestConvertWaitlistItemKeepsEntryOnConflict(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	bruno := mustAddPatient(t, s, "987654321", "Bruno")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	_, err := s.AddAppointment(AppointmentInput{
		PatientID: bruno.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	item, err := s.AddToWaitlist(WaitlistInput{PatientID: ana.ID, ProfessionalID: &prof.ID})
	require.NoError(t, err)

	_, err = s.ConvertWaitlistItem(item.ID, AppointmentInput{
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Failed conversion leaves the entry untouched.
	_, ok := s.GetWaitlistItemByID(item.ID)
	assert.True(t, ok)

	_, err = s.ConvertWaitlistItem(uuid.New(), AppointmentInput{
		Date: "2026-09-07", Time: "10:00", Duration: 30,
	})
	assert.ErrorIs(t, err, ErrWaitlistItemNotFound)
}

func TestMarkNoShows(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	bruno := mustAddPatient(t, s, "987654321", "Bruno")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	missed, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	upcoming, err := s.AddAppointment(AppointmentInput{
		PatientID: bruno.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "11:00", Duration: 30,
	})
	require.NoError(t, err)

	arrived, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "08:00", Duration: 30, Status: StatusConfirmed,
	})
	require.NoError(t, err)
	_, err = s.TransitionStatus(arrived.ID, StatusWaiting)
	require.NoError(t, err)

	now := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	marked := s.MarkNoShows(now, 30*time.Minute)

	require.Len(t, marked, 1)
	assert.Equal(t, missed.ID, marked[0].ID)

	got, _ := s.GetAppointmentByID(missed.ID)
	assert.Equal(t, StatusNoShow, got.Status)

	got, _ = s.GetAppointmentByID(upcoming.ID)
	assert.Equal(t, StatusScheduled, got.Status)

	got, _ = s.GetAppointmentByID(arrived.ID)
	assert.Equal(t, StatusWaiting, got.Status)

	// Idempotent: a second sweep finds nothing new.
	assert.Empty(t, s.MarkNoShows(now, 30*time.Minute))
}

func TestMarkNoShowsRespectsGrace(t *testing.T) {
	s := newTestStore(t)
	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	_, err := s.AddAppointment(AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)

	// 20 minutes late is still inside a 30 minute grace window.
	now := time.Date(2026, 9, 7, 9, 20, 0, 0, time.UTC)
	assert.Empty(t, s.MarkNoShows(now, 30*time.Minute))

	// 40 minutes late is not.
	assert.Len(t, s.MarkNoShows(now.Add(20*time.Minute), 30*time.Minute), 1)
}

func TestStoreOverlapPreventionCanBeDisabled(t *testing.T) {
	opts := DefaultStoreOptions()
	opts.PreventOverlap = false
	s := NewStore(opts)

	ana := mustAddPatient(t, s, "123456789", "Ana")
	prof := mustAddProfessional(t, s, "Dr. Silva")

	in := AppointmentInput{
		PatientID: ana.ID, ProfessionalID: prof.ID,
		Date: "2026-09-07", Time: "09:00", Duration: 30,
	}
	_, err := s.AddAppointment(in)
	require.NoError(t, err)
	_, err = s.AddAppointment(in)
	assert.NoError(t, err)
}
