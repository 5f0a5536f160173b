package agenda

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoreOptions configures a Store. Zero values fall back to the clinic
// defaults (08:00-20:00 grid at 30 minutes, real clock).
type StoreOptions struct {
	Clock          func() time.Time
	StartHour      int
	EndHour        int
	StepMinutes    int
	PreventOverlap bool
}

// DefaultStoreOptions returns the production configuration: standard grid,
// overlap prevention on.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		StartHour:      8,
		EndHour:        20,
		StepMinutes:    30,
		PreventOverlap: true,
	}
}

// Store is the single source of truth for every scheduling entity. It is an
// explicitly constructed handle passed to whoever needs it, never ambient
// state, so tests build isolated instances. The engine itself is a
// single-session model; the RWMutex only guards the maps against the HTTP
// layer's concurrent handlers.
type Store struct {
	mu             sync.RWMutex
	now            func() time.Time
	slots          []string
	stepMinutes    int
	preventOverlap bool

	patients      map[uuid.UUID]Patient
	nifIndex      map[string]uuid.UUID
	professionals map[uuid.UUID]Professional
	specialties   map[uuid.UUID]Specialty
	consultTypes  map[uuid.UUID]ConsultationType
	rooms         map[uuid.UUID]Room
	appointments  map[uuid.UUID]Appointment
	waitlist      map[uuid.UUID]WaitlistItem
}

func NewStore(opts StoreOptions) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.StepMinutes <= 0 {
		opts.StepMinutes = 30
	}
	if opts.EndHour <= opts.StartHour {
		opts.StartHour, opts.EndHour = 8, 20
	}

	return &Store{
		now:            opts.Clock,
		slots:          GenerateSlots(opts.StartHour, opts.EndHour, opts.StepMinutes),
		stepMinutes:    opts.StepMinutes,
		preventOverlap: opts.PreventOverlap,
		patients:       make(map[uuid.UUID]Patient),
		nifIndex:       make(map[string]uuid.UUID),
		professionals:  make(map[uuid.UUID]Professional),
		specialties:    make(map[uuid.UUID]Specialty),
		consultTypes:   make(map[uuid.UUID]ConsultationType),
		rooms:          make(map[uuid.UUID]Room),
		appointments:   make(map[uuid.UUID]Appointment),
		waitlist:       make(map[uuid.UUID]WaitlistItem),
	}
}

// Slots returns the configured day grid.
func (s *Store) Slots() []string {
	out := make([]string, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *Store) StepMinutes() int { return s.stepMinutes }

// Patients

type PatientInput struct {
	NIF       string
	Name      string
	Phone     string
	Email     *string
	BirthDate *string
	Notes     *string
	Tags      []string
}

func validNIF(nif string) bool {
	if len(nif) != 9 {
		return false
	}
	for _, r := range nif {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AddPatient registers a patient. NIF uniqueness is enforced here, at the
// write path, so every caller gets the same rejection instead of each UI
// surface re-checking on its own.
func (s *Store) AddPatient(in PatientInput) (Patient, error) {
	if !validNIF(in.NIF) {
		return Patient{}, ErrInvalidNIF
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nifIndex[in.NIF]; exists {
		return Patient{}, ErrDuplicateNIF
	}

	p := Patient{
		ID:        uuid.New(),
		NIF:       in.NIF,
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		Notes:     in.Notes,
		Tags:      append([]string(nil), in.Tags...),
		CreatedAt: s.now(),
	}
	s.patients[p.ID] = p
	s.nifIndex[p.NIF] = p.ID
	return p, nil
}

func (s *Store) GetPatientByID(id uuid.UUID) (Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	return p, ok
}

// FindPatientByNif looks a patient up by the 9-digit tax id, exact match.
func (s *Store) FindPatientByNif(nif string) (Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nifIndex[nif]
	if !ok {
		return Patient{}, false
	}
	p, ok := s.patients[id]
	return p, ok
}

func (s *Store) ListPatients() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	return out
}

type PatientPatch struct {
	Name      *string
	Phone     *string
	Email     *string
	BirthDate *string
	Notes     *string
	Tags      []string
}

func (s *Store) UpdatePatient(id uuid.UUID, patch PatientPatch) (Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok {
		return Patient{}, ErrPatientNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Email != nil {
		p.Email = patch.Email
	}
	if patch.BirthDate != nil {
		p.BirthDate = patch.BirthDate
	}
	if patch.Notes != nil {
		p.Notes = patch.Notes
	}
	if patch.Tags != nil {
		p.Tags = append([]string(nil), patch.Tags...)
	}
	s.patients[id] = p
	return p, nil
}

// Reference data. Professionals, specialties, consultation types and rooms
// are seed data decorating appointments; they have no lifecycle of their own.

func (s *Store) PutProfessional(p Professional) Professional {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.professionals[p.ID] = p
	return p
}

func (s *Store) GetProfessionalByID(id uuid.UUID) (Professional, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.professionals[id]
	return p, ok
}

func (s *Store) ListProfessionals() []Professional {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Professional, 0, len(s.professionals))
	for _, p := range s.professionals {
		out = append(out, p)
	}
	return out
}

func (s *Store) PutSpecialty(sp Specialty) Specialty {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	s.specialties[sp.ID] = sp
	return sp
}

func (s *Store) GetSpecialtyByID(id uuid.UUID) (Specialty, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.specialties[id]
	return sp, ok
}

func (s *Store) ListSpecialties() []Specialty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Specialty, 0, len(s.specialties))
	for _, sp := range s.specialties {
		out = append(out, sp)
	}
	return out
}

func (s *Store) PutConsultationType(ct ConsultationType) ConsultationType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	s.consultTypes[ct.ID] = ct
	return ct
}

func (s *Store) GetConsultationTypeByID(id uuid.UUID) (ConsultationType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ct, ok := s.consultTypes[id]
	return ct, ok
}

func (s *Store) ListConsultationTypes() []ConsultationType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConsultationType, 0, len(s.consultTypes))
	for _, ct := range s.consultTypes {
		out = append(out, ct)
	}
	return out
}

func (s *Store) PutRoom(r Room) Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.rooms[r.ID] = r
	return r
}

func (s *Store) GetRoomByID(id uuid.UUID) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

func (s *Store) ListRooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// Appointments

type AppointmentInput struct {
	PatientID          uuid.UUID
	ProfessionalID     uuid.UUID
	SpecialtyID        uuid.UUID
	ConsultationTypeID uuid.UUID
	Date               string
	Time               string
	Duration           int
	Status             Status // empty defaults to scheduled; confirmed allowed at creation
	Notes              *string
	RoomID             *uuid.UUID
}

// AddAppointment books a visit. Overlap prevention runs here, on the write
// path, when enabled: the same professional cannot hold two visits with
// intersecting slot spans on one day.
func (s *Store) AddAppointment(in AppointmentInput) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAppointmentLocked(in)
}

// validDate reports whether d is a well-formed yyyy-MM-dd calendar date.
func validDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// addAppointmentLocked must be called with the write lock held.
func (s *Store) addAppointmentLocked(in AppointmentInput) (Appointment, error) {
	if !validDate(in.Date) {
		return Appointment{}, ErrInvalidDate
	}
	// Off-canonical times ("9:00") would never match a grid label and would
	// slip past the overlap check entirely, so they are rejected up front.
	if minutesOfDay(in.Time) < 0 {
		return Appointment{}, ErrInvalidTime
	}
	if in.Duration <= 0 {
		return Appointment{}, ErrInvalidDuration
	}
	status := in.Status
	if status == "" {
		status = StatusScheduled
	}
	if status != StatusScheduled && status != StatusConfirmed {
		return Appointment{}, ErrInvalidStatus
	}

	if _, ok := s.patients[in.PatientID]; !ok {
		return Appointment{}, ErrPatientNotFound
	}
	if _, ok := s.professionals[in.ProfessionalID]; !ok {
		return Appointment{}, ErrProfessionalNotFound
	}
	if in.SpecialtyID != uuid.Nil {
		if _, ok := s.specialties[in.SpecialtyID]; !ok {
			return Appointment{}, ErrSpecialtyNotFound
		}
	}
	if in.ConsultationTypeID != uuid.Nil {
		if _, ok := s.consultTypes[in.ConsultationTypeID]; !ok {
			return Appointment{}, ErrConsultationTypeNotFound
		}
	}

	appt := Appointment{
		ID:                 uuid.New(),
		PatientID:          in.PatientID,
		ProfessionalID:     in.ProfessionalID,
		SpecialtyID:        in.SpecialtyID,
		ConsultationTypeID: in.ConsultationTypeID,
		Date:               in.Date,
		Time:               NormalizeTime(in.Time),
		Duration:           in.Duration,
		Status:             status,
		Notes:              in.Notes,
		RoomID:             in.RoomID,
		CreatedAt:          s.now(),
		UpdatedAt:          s.now(),
	}

	if err := s.checkConflict(appt); err != nil {
		return Appointment{}, err
	}

	s.appointments[appt.ID] = appt
	return appt, nil
}

// checkConflict must be called with the write lock held.
func (s *Store) checkConflict(candidate Appointment) error {
	if !s.preventOverlap || !candidate.Occupies() {
		return nil
	}
	for _, other := range s.appointments {
		if other.ID == candidate.ID || !other.Occupies() {
			continue
		}
		if Overlaps(candidate, other, s.stepMinutes) {
			return ErrSlotConflict
		}
	}
	return nil
}

type AppointmentPatch struct {
	ProfessionalID     *uuid.UUID
	SpecialtyID        *uuid.UUID
	ConsultationTypeID *uuid.UUID
	Date               *string
	Time               *string
	Duration           *int
	Notes              *string
	RoomID             *uuid.UUID
}

// UpdateAppointment merges the patch and bumps UpdatedAt. Changing date,
// time, duration or professional re-derives slot occupancy and re-runs the
// conflict check before anything is stored.
func (s *Store) UpdateAppointment(id uuid.UUID, patch AppointmentPatch) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}

	if patch.ProfessionalID != nil {
		if _, ok := s.professionals[*patch.ProfessionalID]; !ok {
			return Appointment{}, ErrProfessionalNotFound
		}
		appt.ProfessionalID = *patch.ProfessionalID
	}
	if patch.SpecialtyID != nil {
		appt.SpecialtyID = *patch.SpecialtyID
	}
	if patch.ConsultationTypeID != nil {
		appt.ConsultationTypeID = *patch.ConsultationTypeID
	}
	if patch.Date != nil {
		if !validDate(*patch.Date) {
			return Appointment{}, ErrInvalidDate
		}
		appt.Date = *patch.Date
	}
	if patch.Time != nil {
		if minutesOfDay(*patch.Time) < 0 {
			return Appointment{}, ErrInvalidTime
		}
		appt.Time = NormalizeTime(*patch.Time)
	}
	if patch.Duration != nil {
		if *patch.Duration <= 0 {
			return Appointment{}, ErrInvalidDuration
		}
		appt.Duration = *patch.Duration
	}
	if patch.Notes != nil {
		appt.Notes = patch.Notes
	}
	if patch.RoomID != nil {
		appt.RoomID = patch.RoomID
	}

	if err := s.checkConflict(appt); err != nil {
		return Appointment{}, err
	}

	appt.UpdatedAt = s.now()
	s.appointments[id] = appt
	return appt, nil
}

// TransitionStatus moves a visit through its lifecycle. Illegal edges,
// including anything out of a terminal state, are rejected rather than
// silently applied.
func (s *Store) TransitionStatus(id uuid.UUID, to Status) (Appointment, error) {
	if !to.IsValid() {
		return Appointment{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	if !appt.Status.CanTransitionTo(to) {
		return Appointment{}, ErrInvalidStatusTransition
	}

	appt.Status = to
	appt.UpdatedAt = s.now()
	s.appointments[id] = appt
	return appt, nil
}

func (s *Store) DeleteAppointment(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) GetAppointmentByID(id uuid.UUID) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appt, ok := s.appointments[id]
	return appt, ok
}

// AppointmentsByDate returns the day's appointments unordered; callers sort
// by time as needed.
func (s *Store) AppointmentsByDate(date string) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, appt := range s.appointments {
		if appt.Date == date {
			out = append(out, appt)
		}
	}
	return out
}

// AppointmentsByDateRange returns appointments with start <= date <= end.
// ISO dates compare correctly as strings.
func (s *Store) AppointmentsByDateRange(start, end string) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, appt := range s.appointments {
		if appt.Date >= start && appt.Date <= end {
			out = append(out, appt)
		}
	}
	return out
}

func (s *Store) AppointmentsByPatient(patientID uuid.UUID) []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, appt := range s.appointments {
		if appt.PatientID == patientID {
			out = append(out, appt)
		}
	}
	return out
}

// Occupancy projects one professional's day onto the slot grid.
func (s *Store) Occupancy(date string, professionalID uuid.UUID) map[string]SlotOccupancy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var appts []Appointment
	for _, appt := range s.appointments {
		if appt.Date == date && appt.ProfessionalID == professionalID {
			appts = append(appts, appt)
		}
	}
	return ResolveOccupancy(s.slots, appts, s.stepMinutes)
}

// Calendar projections. Pure reads over the collection.

func (s *Store) DayView(date string, f Filter) []Appointment {
	return FilterAppointments(s.AppointmentsByDate(date), f, s.GetPatientByID)
}

func (s *Store) WeekView(anchor string, f Filter) ([]Appointment, error) {
	start, end, err := WeekRange(anchor)
	if err != nil {
		return nil, err
	}
	return FilterAppointments(s.AppointmentsByDateRange(start, end), f, s.GetPatientByID), nil
}

func (s *Store) MonthView(anchor string, f Filter) ([]Appointment, error) {
	start, end, err := MonthRange(anchor)
	if err != nil {
		return nil, err
	}
	return FilterAppointments(s.AppointmentsByDateRange(start, end), f, s.GetPatientByID), nil
}

// Waitlist

type WaitlistInput struct {
	PatientID      uuid.UUID
	SpecialtyID    *uuid.UUID
	ProfessionalID *uuid.UUID
	TimePreference TimePreference
	PreferredDates []string
	Priority       Priority
	Reason         *string
}

func (s *Store) AddToWaitlist(in WaitlistInput) (WaitlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[in.PatientID]; !ok {
		return WaitlistItem{}, ErrPatientNotFound
	}

	pref := in.TimePreference
	if pref == "" {
		pref = PreferAny
	}
	prio := in.Priority
	if prio == "" {
		prio = PriorityMedium
	}

	item := WaitlistItem{
		ID:             uuid.New(),
		PatientID:      in.PatientID,
		SpecialtyID:    in.SpecialtyID,
		ProfessionalID: in.ProfessionalID,
		TimePreference: pref,
		PreferredDates: append([]string(nil), in.PreferredDates...),
		Priority:       prio,
		Reason:         in.Reason,
		CreatedAt:      s.now(),
	}
	s.waitlist[item.ID] = item
	return item, nil
}

type WaitlistPatch struct {
	SpecialtyID    *uuid.UUID
	ProfessionalID *uuid.UUID
	TimePreference *TimePreference
	PreferredDates []string
	Priority       *Priority
	Reason         *string
}

func (s *Store) UpdateWaitlistItem(id uuid.UUID, patch WaitlistPatch) (WaitlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.waitlist[id]
	if !ok {
		return WaitlistItem{}, ErrWaitlistItemNotFound
	}
	if patch.SpecialtyID != nil {
		item.SpecialtyID = patch.SpecialtyID
	}
	if patch.ProfessionalID != nil {
		item.ProfessionalID = patch.ProfessionalID
	}
	if patch.TimePreference != nil {
		item.TimePreference = *patch.TimePreference
	}
	if patch.PreferredDates != nil {
		item.PreferredDates = append([]string(nil), patch.PreferredDates...)
	}
	if patch.Priority != nil {
		item.Priority = *patch.Priority
	}
	if patch.Reason != nil {
		item.Reason = patch.Reason
	}
	s.waitlist[id] = item
	return item, nil
}

func (s *Store) RemoveFromWaitlist(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.waitlist[id]; !ok {
		return ErrWaitlistItemNotFound
	}
	delete(s.waitlist, id)
	return nil
}

func (s *Store) GetWaitlistItemByID(id uuid.UUID) (WaitlistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.waitlist[id]
	return item, ok
}

// Waitlist returns the list in processing order: priority first, oldest
// first within a priority.
func (s *Store) Waitlist() []WaitlistItem {
	s.mu.RLock()
	items := make([]WaitlistItem, 0, len(s.waitlist))
	for _, item := range s.waitlist {
		items = append(items, item)
	}
	s.mu.RUnlock()
	return SortWaitlist(items)
}

// ConvertWaitlistItem books the chosen slot and removes the waitlist entry
// in one operation. The two mutations used to be separate caller
// responsibilities, which could strand an entry or double-book on partial
// failure; bundling them makes conversion all-or-nothing.
func (s *Store) ConvertWaitlistItem(itemID uuid.UUID, in AppointmentInput) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.waitlist[itemID]
	if !ok {
		return Appointment{}, ErrWaitlistItemNotFound
	}

	if in.PatientID == uuid.Nil {
		in.PatientID = item.PatientID
	}
	if in.SpecialtyID == uuid.Nil && item.SpecialtyID != nil {
		in.SpecialtyID = *item.SpecialtyID
	}
	if in.ProfessionalID == uuid.Nil && item.ProfessionalID != nil {
		in.ProfessionalID = *item.ProfessionalID
	}

	appt, err := s.addAppointmentLocked(in)
	if err != nil {
		return Appointment{}, err
	}

	delete(s.waitlist, itemID)
	return appt, nil
}

// MarkNoShows flips scheduled and confirmed visits whose start time is more
// than grace past to no_show. It is an explicit maintenance operation driven
// by the worker, never implicit logic inside read paths. Returns the visits
// it changed.
func (s *Store) MarkNoShows(now time.Time, grace time.Duration) []Appointment {
	cutoff := now.Add(-grace)

	s.mu.Lock()
	defer s.mu.Unlock()

	var marked []Appointment
	for id, appt := range s.appointments {
		if appt.Status != StatusScheduled && appt.Status != StatusConfirmed {
			continue
		}
		start, err := time.ParseInLocation(DateLayout+" "+TimeLayout,
			appt.Date+" "+NormalizeTime(appt.Time), now.Location())
		if err != nil {
			continue
		}
		if start.Before(cutoff) {
			appt.Status = StatusNoShow
			appt.UpdatedAt = s.now()
			s.appointments[id] = appt
			marked = append(marked, appt)
		}
	}
	return marked
}
