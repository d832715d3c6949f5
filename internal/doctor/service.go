package doctor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type Service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Specialization  string
	LicenseNumber   string
	Phone           string
	Bio             string
	ExperienceYears int
	ConsultationFee float64
}

// Register creates an unverified doctor. Duplicate email or license number
// surfaces from the table constraints as ErrEmailTaken / ErrLicenseTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"specialization", in.Specialization},
		{"license_number", in.LicenseNumber},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		return 0, &ValidationError{Reasons: missing}
	}
	if len(in.Password) < minPasswordLen {
		return 0, &ValidationError{Reasons: []string{
			fmt.Sprintf("password must be at least %d characters long", minPasswordLen),
		}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, &Doctor{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:    string(hash),
		Specialization:  strings.TrimSpace(in.Specialization),
		LicenseNumber:   strings.TrimSpace(in.LicenseNumber),
		Phone:           strings.TrimSpace(in.Phone),
		Bio:             strings.TrimSpace(in.Bio),
		ExperienceYears: in.ExperienceYears,
		ConsultationFee: in.ConsultationFee,
	})
}

type LoginResult struct {
	Token  string
	Doctor *Doctor
}

// Login checks credentials and issues an HMAC-signed token. A missing email
// and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &ValidationError{Reasons: []string{"email and password are required"}}
	}

	d, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(d)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Doctor: d}, nil
}

func (s *Service) issueToken(d *Doctor) (string, error) {
	if s.jwtSecret == "" {
		return "", nil
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(d.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) ListVerified(ctx context.Context, specialization string) ([]Summary, error) {
	return s.repo.ListVerified(ctx, specialization)
}

func (s *Service) Profile(ctx context.Context, id int64) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, u ProfileUpdate) error {
	if u.empty() {
		return &ValidationError{Reasons: []string{"no valid fields to update"}}
	}
	return s.repo.UpdateProfile(ctx, id, u)
}
