package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbconn is the slice of pgxpool.Pool the repository uses; pgxmock pools
// satisfy it in tests.
type dbconn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db dbconn
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: pool}
}

func newPgRepositoryWithDB(db dbconn) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) GetVerifiedDoctor(ctx context.Context, id int64) (*Doctor, error) {
	var d Doctor
	err := r.db.QueryRow(ctx, `
		SELECT id, name, specialization
		FROM doctors
		WHERE id = $1 AND is_verified = TRUE
	`, id).Scan(&d.ID, &d.Name, &d.Specialization)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	created := *a
	err := r.db.QueryRow(ctx, `
		INSERT INTO appointments
			(patient_name, patient_email, patient_phone, doctor_id,
			 appointment_date, appointment_time, reason, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', '')
		RETURNING id, created_at, updated_at
	`, a.PatientName, a.PatientEmail, a.PatientPhone, a.DoctorID,
		a.Date, a.TimeOfDay, a.Reason).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, classifyCreateError(err)
	}

	created.Status = StatusPending
	return &created, nil
}

// classifyCreateError translates storage errors at the repository boundary
// so no raw pg error reaches handlers. A unique violation means the partial
// index rejected a concurrent booking of the same slot; the statement's own
// transaction rolls back and no row is left behind.
func classifyCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation on uniq_active_slot
			return ErrSlotTaken
		case "23503": // doctor foreign key
			return ErrDoctorNotFound
		}
	}
	return fmt.Errorf("insert appointment: %w", err)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id int64, status Status, notes string) error {
	var updatedID int64
	err := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    notes = $3,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`, id, status, notes).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

func (r *PgRepository) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)

	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments a
		JOIN doctors d ON a.doctor_id = d.id
		WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return total, nil
}

func (r *PgRepository) List(ctx context.Context, f Filter, limit, offset int) ([]AppointmentWithDoctor, error) {
	where, args := buildWhere(f)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT a.id, a.patient_name, a.patient_email, a.patient_phone, a.doctor_id,
		       a.appointment_date, to_char(a.appointment_time, 'HH24:MI'),
		       a.reason, a.status, a.notes, a.created_at, a.updated_at,
		       d.name, d.specialization
		FROM appointments a
		JOIN doctors d ON a.doctor_id = d.id
		WHERE %s
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	result := []AppointmentWithDoctor{}
	for rows.Next() {
		var item AppointmentWithDoctor
		if err := rows.Scan(
			&item.ID, &item.PatientName, &item.PatientEmail, &item.PatientPhone, &item.DoctorID,
			&item.Date, &item.TimeOfDay,
			&item.Reason, &item.Status, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
			&item.DoctorName, &item.Specialization,
		); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// buildWhere renders f as positional conditions. Filters are conjunctive;
// date bounds are inclusive.
func buildWhere(f Filter) (string, []any) {
	conds := []string{"1=1"}
	var args []any

	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		conds = append(conds, fmt.Sprintf("a.doctor_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.FromDate != nil {
		args = append(args, *f.FromDate)
		conds = append(conds, fmt.Sprintf("a.appointment_date >= $%d", len(args)))
	}
	if f.ToDate != nil {
		args = append(args, *f.ToDate)
		conds = append(conds, fmt.Sprintf("a.appointment_date <= $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}
