package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/medimind/medimind-server/internal/appointment"
	"github.com/medimind/medimind-server/internal/db"
)

const (
	doctorCount      = 25
	appointmentCount = 2000
	batchSize        = 500

	// every seeded doctor logs in with this password
	seedPassword = "seed-password-1"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	_ = godotenv.Load()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	if err := db.RunMigrations(dsn); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, doctorCount)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctorIDs, appointmentCount); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]int64, error) {
	log.Printf("seeding %d verified doctors", count)

	specializations := []string{
		"Cardiology",
		"Dermatology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	// one hash shared across rows keeps seeding fast
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		name := "Dr. " + gofakeit.Name()
		email := fmt.Sprintf("doctor%d@example.com", i+1)
		license := fmt.Sprintf("LIC-%05d", i+1)
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]

		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO doctors (name, email, password_hash, specialization, license_number,
			                     phone, bio, experience_years, consultation_fee, is_verified)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
			RETURNING id
		`, name, email, string(hash), spec, license,
			gofakeit.Phone(), gofakeit.Sentence(12),
			gofakeit.Number(1, 35), float64(gofakeit.Number(50, 400))).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctorIDs []int64, count int) error {
	log.Printf("seeding %d appointments", count)

	statuses := []appointment.Status{
		appointment.StatusPending,
		appointment.StatusConfirmed,
		appointment.StatusCompleted,
		appointment.StatusCancelled,
	}

	today := time.Now().Truncate(24 * time.Hour)
	inserted := 0

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
			doctorID := doctorIDs[i%len(doctorIDs)]
			// deterministic slot spread so active rows never collide on
			// the uniq_active_slot index
			slot := i / len(doctorIDs)
			date := today.AddDate(0, 0, 1+slot/18)
			hour := 9 + slot%18/2
			minute := slot % 2 * 30
			status := statuses[gofakeit.Number(0, len(statuses)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (patient_name, patient_email, patient_phone,
				                          doctor_id, appointment_date, appointment_time,
				                          reason, status, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(),
				doctorID, date.Format("2006-01-02"), fmt.Sprintf("%02d:%02d", hour, minute),
				gofakeit.Sentence(6), string(status), "")
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
			inserted++
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		log.Printf("appointments seeded: %d/%d", inserted, count)
	}

	return nil
}
