package appointment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// BookingConfirmation is what a successful booking returns to the client:
// the new identity plus the doctor name and the echoed slot.
type BookingConfirmation struct {
	AppointmentID int64
	DoctorName    string
	Date          string
	Time          string
	Status        Status
}

// Book validates the raw input, checks the doctor, and reserves the slot.
// Under concurrent requests for the same doctor/date/time exactly one insert
// passes the uniq_active_slot index; the rest get ErrSlotTaken.
func (s *Service) Book(ctx context.Context, in BookingInput) (*BookingConfirmation, error) {
	appt, err := ParseBooking(in, s.now())
	if err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetVerifiedDoctor(ctx, appt.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, err
	}

	return &BookingConfirmation{
		AppointmentID: created.ID,
		DoctorName:    doctor.Name,
		Date:          created.Date.Format(dateLayout),
		Time:          created.TimeOfDay,
		Status:        created.Status,
	}, nil
}

// Transition sets the appointment's status and notes. Any enum value may
// follow any other; only membership is checked.
func (s *Service) Transition(ctx context.Context, id int64, status Status, notes string) error {
	if !status.Valid() {
		return newValidationError("invalid status")
	}
	return s.repo.UpdateStatus(ctx, id, status, trimTo(notes, maxNotesLen))
}

func (s *Service) Confirm(ctx context.Context, id int64, notes string) error {
	return s.Transition(ctx, id, StatusConfirmed, notes)
}

func (s *Service) Complete(ctx context.Context, id int64, notes string) error {
	return s.Transition(ctx, id, StatusCompleted, notes)
}

func (s *Service) Cancel(ctx context.Context, id int64, notes string) error {
	return s.Transition(ctx, id, StatusCancelled, notes)
}

// ListQuery holds the raw query-string values before validation.
type ListQuery struct {
	DoctorID string
	Status   string
	FromDate string
	ToDate   string
	Page     string
	PerPage  string
}

type ListResult struct {
	Page         int
	PerPage      int
	Total        int
	Appointments []AppointmentWithDoctor
}

// List returns one page of filtered appointments plus the total matching
// count ignoring pagination.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	page, perPage, err := parsePagination(q.Page, q.PerPage)
	if err != nil {
		return nil, err
	}

	filter, err := parseFilter(q)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, *filter)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, *filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Page:         page,
		PerPage:      perPage,
		Total:        total,
		Appointments: items,
	}, nil
}

func parsePagination(rawPage, rawPerPage string) (page, perPage int, err error) {
	page, perPage = defaultPage, defaultPerPage

	if rawPage != "" {
		page, err = strconv.Atoi(rawPage)
		if err != nil {
			return 0, 0, newValidationError("page and per_page must be integers")
		}
	}
	if rawPerPage != "" {
		perPage, err = strconv.Atoi(rawPerPage)
		if err != nil {
			return 0, 0, newValidationError("page and per_page must be integers")
		}
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return page, perPage, nil
}

func parseFilter(q ListQuery) (*Filter, error) {
	var f Filter

	if v := strings.TrimSpace(q.DoctorID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, newValidationError("doctor_id must be an integer")
		}
		f.DoctorID = &id
	}

	if v := strings.TrimSpace(q.Status); v != "" {
		status := Status(v)
		if !status.Valid() {
			return nil, newValidationError("invalid status")
		}
		f.Status = &status
	}

	if v := strings.TrimSpace(q.FromDate); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, newValidationError("invalid from_date format")
		}
		f.FromDate = &from
	}

	if v := strings.TrimSpace(q.ToDate); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, newValidationError("invalid to_date format")
		}
		f.ToDate = &to
	}

	return &f, nil
}
