package appointment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found or not verified")
	ErrSlotTaken           = errors.New("this time slot is already booked")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Filter holds the optional, AND-combined listing filters.
type Filter struct {
	DoctorID *int64
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// GetVerifiedDoctor returns the doctor only when it exists and its
	// verification flag is set; otherwise ErrDoctorNotFound.
	GetVerifiedDoctor(ctx context.Context, id int64) (*Doctor, error)

	// Create inserts a pending appointment. A uniq_active_slot violation
	// surfaces as ErrSlotTaken; the index, not the application, arbitrates
	// concurrent bookings of the same slot.
	Create(ctx context.Context, a *Appointment) (*Appointment, error)

	// UpdateStatus sets status and notes and refreshes updated_at, matched
	// by id only. ErrAppointmentNotFound when no row matches.
	UpdateStatus(ctx context.Context, id int64, status Status, notes string) error

	// Listing
	Count(ctx context.Context, f Filter) (int, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]AppointmentWithDoctor, error)
}
