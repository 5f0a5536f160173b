package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgPersister is the Postgres-backed Persister. All writes are upserts keyed
// by id so write-through after an in-memory mutation is idempotent.
type PgPersister struct {
	pool *pgxpool.Pool
}

func NewPgPersister(pool *pgxpool.Pool) *PgPersister {
	return &PgPersister{pool: pool}
}

func (r *PgPersister) SavePatient(ctx context.Context, p Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, nif, name, phone, email, birth_date, notes, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    email = EXCLUDED.email,
		    birth_date = EXCLUDED.birth_date,
		    notes = EXCLUDED.notes,
		    tags = EXCLUDED.tags
	`, p.ID, p.NIF, p.Name, p.Phone, p.Email, p.BirthDate, p.Notes, p.Tags, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save patient: %w", err)
	}
	return nil
}

func (r *PgPersister) SaveAppointment(ctx context.Context, a Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, patient_id, professional_id, specialty_id, consultation_type_id,
			 date, time, duration, status, notes, room_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE
		SET professional_id = EXCLUDED.professional_id,
		    specialty_id = EXCLUDED.specialty_id,
		    consultation_type_id = EXCLUDED.consultation_type_id,
		    date = EXCLUDED.date,
		    time = EXCLUDED.time,
		    duration = EXCLUDED.duration,
		    status = EXCLUDED.status,
		    notes = EXCLUDED.notes,
		    room_id = EXCLUDED.room_id,
		    updated_at = EXCLUDED.updated_at
	`, a.ID, a.PatientID, a.ProfessionalID, a.SpecialtyID, a.ConsultationTypeID,
		a.Date, a.Time, a.Duration, a.Status, a.Notes, a.RoomID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	return nil
}

func (r *PgPersister) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func (r *PgPersister) SaveWaitlistItem(ctx context.Context, item WaitlistItem) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO waitlist_items
			(id, patient_id, specialty_id, professional_id, time_preference,
			 preferred_dates, priority, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET specialty_id = EXCLUDED.specialty_id,
		    professional_id = EXCLUDED.professional_id,
		    time_preference = EXCLUDED.time_preference,
		    preferred_dates = EXCLUDED.preferred_dates,
		    priority = EXCLUDED.priority,
		    reason = EXCLUDED.reason
	`, item.ID, item.PatientID, item.SpecialtyID, item.ProfessionalID,
		item.TimePreference, item.PreferredDates, item.Priority, item.Reason, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("save waitlist item: %w", err)
	}
	return nil
}

func (r *PgPersister) DeleteWaitlistItem(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM waitlist_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete waitlist item: %w", err)
	}
	return nil
}

func (r *PgPersister) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Load reads the full dataset for the startup snapshot. Appointment times
// come back from the time column with seconds; Restore normalizes them.
func (r *PgPersister) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := r.loadPatients(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadReferenceData(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadAppointments(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadWaitlist(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *PgPersister) loadPatients(ctx context.Context, snap *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, nif, name, phone, email, birth_date, notes, tags, created_at
		FROM patients
	`)
	if err != nil {
		return fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.NIF, &p.Name, &p.Phone, &p.Email,
			&p.BirthDate, &p.Notes, &p.Tags, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan patient: %w", err)
		}
		snap.Patients = append(snap.Patients, p)
	}
	return rows.Err()
}

func (r *PgPersister) loadReferenceData(ctx context.Context, snap *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialty, color, avatar FROM professionals
	`)
	if err != nil {
		return fmt.Errorf("load professionals: %w", err)
	}
	for rows.Next() {
		var p Professional
		if err := rows.Scan(&p.ID, &p.Name, &p.Specialty, &p.Color, &p.Avatar); err != nil {
			rows.Close()
			return fmt.Errorf("scan professional: %w", err)
		}
		snap.Professionals = append(snap.Professionals, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, name FROM specialties`)
	if err != nil {
		return fmt.Errorf("load specialties: %w", err)
	}
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan specialty: %w", err)
		}
		snap.Specialties = append(snap.Specialties, sp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, name, default_duration, color FROM consultation_types
	`)
	if err != nil {
		return fmt.Errorf("load consultation types: %w", err)
	}
	for rows.Next() {
		var ct ConsultationType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.DefaultDuration, &ct.Color); err != nil {
			rows.Close()
			return fmt.Errorf("scan consultation type: %w", err)
		}
		snap.ConsultationTypes = append(snap.ConsultationTypes, ct)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, name FROM rooms`)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan room: %w", err)
		}
		snap.Rooms = append(snap.Rooms, rm)
	}
	rows.Close()
	return rows.Err()
}

func (r *PgPersister) loadAppointments(ctx context.Context, snap *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, professional_id, specialty_id, consultation_type_id,
		       date, time, duration, status, notes, room_id, created_at, updated_at
		FROM appointments
	`)
	if err != nil {
		return fmt.Errorf("load appointments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return err
		}
		snap.Appointments = append(snap.Appointments, *a)
	}
	return rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ProfessionalID, &a.SpecialtyID,
		&a.ConsultationTypeID, &a.Date, &a.Time, &a.Duration, &a.Status,
		&a.Notes, &a.RoomID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	return &a, nil
}

func (r *PgPersister) loadWaitlist(ctx context.Context, snap *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, specialty_id, professional_id, time_preference,
		       preferred_dates, priority, reason, created_at
		FROM waitlist_items
	`)
	if err != nil {
		return fmt.Errorf("load waitlist: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item WaitlistItem
		if err := rows.Scan(&item.ID, &item.PatientID, &item.SpecialtyID,
			&item.ProfessionalID, &item.TimePreference, &item.PreferredDates,
			&item.Priority, &item.Reason, &item.CreatedAt); err != nil {
			return fmt.Errorf("scan waitlist item: %w", err)
		}
		snap.Waitlist = append(snap.Waitlist, item)
	}
	return rows.Err()
}
