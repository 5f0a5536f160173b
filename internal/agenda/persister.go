package agenda

import (
	"context"

	"github.com/google/uuid"
)

// Persister is the durable backend behind the in-memory Store. The engine
// treats it as a plain CRUD collaborator: the Store stays the source of
// truth, the service writes through after each successful mutation and loads
// a snapshot at startup.
type Persister interface {
	SavePatient(ctx context.Context, p Patient) error
	SaveAppointment(ctx context.Context, a Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	SaveWaitlistItem(ctx context.Context, item WaitlistItem) error
	DeleteWaitlistItem(ctx context.Context, id uuid.UUID) error
	InsertEvent(ctx context.Context, ev EventLog) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is everything the Store needs to rebuild its collections.
type Snapshot struct {
	Patients          []Patient
	Professionals     []Professional
	Specialties       []Specialty
	ConsultationTypes []ConsultationType
	Rooms             []Room
	Appointments      []Appointment
	Waitlist          []WaitlistItem
}

// Restore seeds the Store from a snapshot, bypassing write-path validation:
// stored data is trusted as-is, including historical rows that would fail
// today's checks.
func (s *Store) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range snap.Patients {
		s.patients[p.ID] = p
		s.nifIndex[p.NIF] = p.ID
	}
	for _, p := range snap.Professionals {
		s.professionals[p.ID] = p
	}
	for _, sp := range snap.Specialties {
		s.specialties[sp.ID] = sp
	}
	for _, ct := range snap.ConsultationTypes {
		s.consultTypes[ct.ID] = ct
	}
	for _, r := range snap.Rooms {
		s.rooms[r.ID] = r
	}
	for _, a := range snap.Appointments {
		a.Time = NormalizeTime(a.Time)
		s.appointments[a.ID] = a
	}
	for _, item := range snap.Waitlist {
		s.waitlist[item.ID] = item
	}
}
