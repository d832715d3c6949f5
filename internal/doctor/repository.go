package doctor

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("doctor not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrLicenseTaken       = errors.New("license number already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries every reason a request was rejected.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// ProfileUpdate holds the mutable profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	Name            *string
	Phone           *string
	Bio             *string
	ExperienceYears *int
	ConsultationFee *float64
}

func (u ProfileUpdate) empty() bool {
	return u.Name == nil && u.Phone == nil && u.Bio == nil &&
		u.ExperienceYears == nil && u.ConsultationFee == nil
}

// Repository contains all DB interactions needed by the service. Uniqueness
// of email and license number is enforced by the doctors table constraints,
// surfaced as ErrEmailTaken / ErrLicenseTaken.
type Repository interface {
	Create(ctx context.Context, d *Doctor) (int64, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	ListVerified(ctx context.Context, specialization string) ([]Summary, error)
	UpdateProfile(ctx context.Context, id int64, u ProfileUpdate) error
}
