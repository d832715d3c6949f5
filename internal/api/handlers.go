package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medimind/medimind-server/internal/appointment"
	"github.com/medimind/medimind-server/internal/observability/metrics"
	"github.com/medimind/medimind-server/pkg/logging"
)

var errInvalidID = errors.New("invalid appointment id")

// AppointmentService is the slice of the appointment service the handlers
// need; tests substitute a fake.
type AppointmentService interface {
	Book(ctx context.Context, in appointment.BookingInput) (*appointment.BookingConfirmation, error)
	Transition(ctx context.Context, id int64, status appointment.Status, notes string) error
	Confirm(ctx context.Context, id int64, notes string) error
	Complete(ctx context.Context, id int64, notes string) error
	Cancel(ctx context.Context, id int64, notes string) error
	List(ctx context.Context, q appointment.ListQuery) (*appointment.ListResult, error)
}

func bookAppointmentHandler(svc AppointmentService, m *metrics.BookingMetrics, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			m.ObserveBooking(metrics.OutcomeValidation, time.Since(start).Seconds())
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		conf, err := svc.Book(r.Context(), appointment.BookingInput{
			PatientName:     req.PatientName,
			PatientEmail:    req.PatientEmail,
			PatientPhone:    req.PatientPhone,
			DoctorID:        string(req.DoctorID),
			AppointmentDate: req.AppointmentDate,
			AppointmentTime: req.AppointmentTime,
			Reason:          req.Reason,
		})
		if err != nil {
			m.ObserveBooking(bookingOutcome(err), time.Since(start).Seconds())
			writeAppointmentError(w, logger, err)
			return
		}

		m.ObserveBooking(metrics.OutcomeBooked, time.Since(start).Seconds())
		writeJSON(w, http.StatusCreated, BookAppointmentResponse{
			Message:         "Appointment booked successfully",
			AppointmentID:   conf.AppointmentID,
			DoctorName:      conf.DoctorName,
			AppointmentDate: conf.Date,
			AppointmentTime: conf.Time,
			Status:          string(conf.Status),
		})
	}
}

func listAppointmentsHandler(svc AppointmentService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		result, err := svc.List(r.Context(), appointment.ListQuery{
			DoctorID: q.Get("doctor_id"),
			Status:   q.Get("status"),
			FromDate: q.Get("from_date"),
			ToDate:   q.Get("to_date"),
			Page:     q.Get("page"),
			PerPage:  q.Get("per_page"),
		})
		if err != nil {
			writeAppointmentError(w, logger, err)
			return
		}

		items := make([]AppointmentItem, 0, len(result.Appointments))
		for _, a := range result.Appointments {
			items = append(items, toAppointmentItem(a))
		}

		writeJSON(w, http.StatusOK, ListAppointmentsResponse{
			Page:         result.Page,
			PerPage:      result.PerPage,
			Total:        result.Total,
			Appointments: items,
		})
	}
}

func updateAppointmentHandler(svc AppointmentService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid appointment id")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.Transition(r.Context(), id, appointment.Status(req.Status), req.Notes); err != nil {
			writeAppointmentError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Appointment updated successfully"})
	}
}

// transitionHandler serves the confirm/complete/cancel shortcut routes. The
// request body is optional; only notes may be supplied.
func transitionHandler(fn func(ctx context.Context, id int64, notes string) error, message string, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid appointment id")
			return
		}

		var req TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := fn(r.Context(), id, req.Notes); err != nil {
			writeAppointmentError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: message})
	}
}

func toAppointmentItem(a appointment.AppointmentWithDoctor) AppointmentItem {
	return AppointmentItem{
		ID:              a.ID,
		PatientName:     a.PatientName,
		PatientEmail:    a.PatientEmail,
		PatientPhone:    a.PatientPhone,
		DoctorID:        a.DoctorID,
		DoctorName:      a.DoctorName,
		Specialization:  a.Specialization,
		AppointmentDate: a.Date.Format("2006-01-02"),
		AppointmentTime: a.TimeOfDay,
		Reason:          a.Reason,
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func bookingOutcome(err error) string {
	var verr *appointment.ValidationError
	switch {
	case errors.As(err, &verr):
		return metrics.OutcomeValidation
	case errors.Is(err, appointment.ErrDoctorNotFound):
		return metrics.OutcomeDoctorNotFound
	case errors.Is(err, appointment.ErrSlotTaken):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// writeAppointmentError maps service errors onto HTTP statuses. Unexpected
// errors are logged with detail but reported generically.
func writeAppointmentError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *appointment.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, appointment.ErrDoctorNotFound.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, appointment.ErrAppointmentNotFound.Error())
	case errors.Is(err, appointment.ErrSlotTaken):
		writeError(w, http.StatusConflict, appointment.ErrSlotTaken.Error())
	default:
		logger.Error("appointment request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
