package doctor

import "time"

type Doctor struct {
	ID              int64
	Name            string
	Email           string
	PasswordHash    string
	Specialization  string
	LicenseNumber   string
	Phone           string
	Bio             string
	ExperienceYears int
	ConsultationFee float64
	Verified        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary is the public listing shape: no contact details, no credentials.
type Summary struct {
	ID              int64
	Name            string
	Specialization  string
	Bio             string
	ExperienceYears int
	ConsultationFee float64
}
