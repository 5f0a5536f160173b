package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidaclinic/clinic-agenda/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedSpecialties(context.Background(), pool); err != nil {
		log.Fatalf("seed specialties: %v", err)
	}
	if err := seedProfessionals(context.Background(), pool, 12); err != nil {
		log.Fatalf("seed professionals: %v", err)
	}
	if err := seedConsultationTypes(context.Background(), pool); err != nil {
		log.Fatalf("seed consultation types: %v", err)
	}
	if err := seedRooms(context.Background(), pool, 6); err != nil {
		log.Fatalf("seed rooms: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

var specialtyNames = []string{
	"Medicina Geral",
	"Cardiologia",
	"Dermatologia",
	"Pediatria",
	"Ortopedia",
	"Psicologia",
	"Nutrição",
	"Fisioterapia",
}

var professionalColors = []string{
	"#2563eb", "#16a34a", "#d97706", "#dc2626",
	"#7c3aed", "#0891b2", "#be185d", "#65a30d",
}

func seedSpecialties(ctx context.Context, pool *pgxpool.Pool) error {
	log.Printf("seeding %d specialties", len(specialtyNames))

	for _, name := range specialtyNames {
		_, err := pool.Exec(ctx, `
			INSERT INTO specialties (id, name)
			VALUES ($1, $2)
		`, uuid.New(), name)
		if err != nil {
			return err
		}
	}

	log.Println("specialties seeded")
	return nil
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d professionals", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specialtyNames[gofakeit.Number(0, len(specialtyNames)-1)]
		color := professionalColors[i%len(professionalColors)]

		_, err := tx.Exec(ctx, `
			INSERT INTO professionals (id, name, specialty, color, avatar)
			VALUES ($1, $2, $3, $4, NULL)
		`, id, name, spec, color)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("professionals seeded")
	return nil
}

func seedConsultationTypes(ctx context.Context, pool *pgxpool.Pool) error {
	types := []struct {
		name     string
		duration int
	}{
		{"Primeira Consulta", 60},
		{"Consulta de Seguimento", 30},
		{"Consulta Urgente", 30},
		{"Exame", 45},
		{"Tratamento", 90},
	}

	log.Printf("seeding %d consultation types", len(types))

	for _, t := range types {
		_, err := pool.Exec(ctx, `
			INSERT INTO consultation_types (id, name, default_duration, color)
			VALUES ($1, $2, $3, NULL)
		`, uuid.New(), t.name, t.duration)
		if err != nil {
			return err
		}
	}

	log.Println("consultation types seeded")
	return nil
}

func seedRooms(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d rooms", count)

	for i := 1; i <= count; i++ {
		_, err := pool.Exec(ctx, `
			INSERT INTO rooms (id, name)
			VALUES ($1, $2)
		`, uuid.New(), fmt.Sprintf("Gabinete %d", i))
		if err != nil {
			return err
		}
	}

	log.Println("rooms seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 100

	used := make(map[string]bool, count)

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			phone := fmt.Sprintf("9%d", gofakeit.Number(10000000, 99999999))
			email := gofakeit.Email()
			nif := randomNIF(used)

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, nif, name, phone, email, birth_date, notes, tags, created_at)
				VALUES ($1, $2, $3, $4, $5, NULL, NULL, '{}', now())
			`, id, nif, name, phone, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}

// randomNIF generates a unique 9-digit tax id for this run.
func randomNIF(used map[string]bool) string {
	for {
		nif := fmt.Sprintf("%09d", gofakeit.Number(100000000, 999999999))
		if !used[nif] {
			used[nif] = true
			return nif
		}
	}
}
