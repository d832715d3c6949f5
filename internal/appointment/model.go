package appointment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the four appointment statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether s occupies a bookable slot. Only active rows are
// covered by the uniq_active_slot index.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Appointment struct {
	ID           int64
	PatientName  string
	PatientEmail string
	PatientPhone string
	DoctorID     int64
	Date         time.Time // calendar date, midnight local
	TimeOfDay    string    // 24-hour "HH:MM"
	Reason       string
	Status       Status
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Doctor is the read-only slice of the doctor record the booking path needs.
// Registration and profile management live in the doctor package; this
// package never mutates doctor rows.
type Doctor struct {
	ID             int64
	Name           string
	Specialization string
}

// AppointmentWithDoctor is a listing row with the doctor's name and
// specialization denormalized in at query time.
type AppointmentWithDoctor struct {
	Appointment
	DoctorName     string
	Specialization string
}
