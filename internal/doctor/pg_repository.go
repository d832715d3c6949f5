package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *PgRepository) Create(ctx context.Context, d *Doctor) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO doctors
			(name, email, password_hash, specialization, license_number,
			 phone, bio, experience_years, consultation_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, d.Name, d.Email, d.PasswordHash, d.Specialization, d.LicenseNumber,
		d.Phone, d.Bio, d.ExperienceYears, d.ConsultationFee).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "doctors_email_key":
				return 0, ErrEmailTaken
			case "doctors_license_number_key":
				return 0, ErrLicenseTaken
			}
		}
		return 0, fmt.Errorf("insert doctor: %w", err)
	}
	return id, nil
}

const doctorColumns = `id, name, email, password_hash, specialization, license_number,
	phone, bio, experience_years, consultation_fee, is_verified, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Specialization, &d.LicenseNumber,
		&d.Phone, &d.Bio, &d.ExperienceYears, &d.ConsultationFee, &d.Verified,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PgRepository) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE email = $1
	`, email)
	return scanDoctor(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListVerified(ctx context.Context, specialization string) ([]Summary, error) {
	query := `
		SELECT id, name, specialization, bio, experience_years, consultation_fee
		FROM doctors
		WHERE is_verified = TRUE`
	var args []any

	if strings.TrimSpace(specialization) != "" {
		args = append(args, "%"+strings.TrimSpace(specialization)+"%")
		query += fmt.Sprintf(" AND specialization ILIKE $%d", len(args))
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	result := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Specialization, &s.Bio,
			&s.ExperienceYears, &s.ConsultationFee); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpdateProfile(ctx context.Context, id int64, u ProfileUpdate) error {
	sets := []string{}
	var args []any

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		appendSet("name", *u.Name)
	}
	if u.Phone != nil {
		appendSet("phone", *u.Phone)
	}
	if u.Bio != nil {
		appendSet("bio", *u.Bio)
	}
	if u.ExperienceYears != nil {
		appendSet("experience_years", *u.ExperienceYears)
	}
	if u.ConsultationFee != nil {
		appendSet("consultation_fee", *u.ConsultationFee)
	}

	if len(sets) == 0 {
		return &ValidationError{Reasons: []string{"no valid fields to update"}}
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE doctors
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING id
	`, strings.Join(sets, ", "), len(args))

	var updatedID int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update doctor profile: %w", err)
	}
	return nil
}
