package appointment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	maxNameLen   = 120
	maxEmailLen  = 254
	maxPhoneLen  = 30
	maxReasonLen = 1000
	maxNotesLen  = 1000

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ValidationError carries every reason a request was rejected, so clients
// see all missing/invalid fields in one response.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

func newValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}

// BookingInput is the raw booking payload before any validation.
type BookingInput struct {
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	DoctorID        string
	AppointmentDate string
	AppointmentTime string
	Reason          string
}

// ParseBooking validates in against the server clock and returns a pending
// appointment ready for insertion. Rules apply in order: required fields
// (reported together), doctor_id integer, date/time formats, strictly-future
// check. Free-text fields are trimmed and silently truncated.
func ParseBooking(in BookingInput, now time.Time) (*Appointment, error) {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"patient_name", in.PatientName},
		{"patient_email", in.PatientEmail},
		{"doctor_id", in.DoctorID},
		{"appointment_date", in.AppointmentDate},
		{"appointment_time", in.AppointmentTime},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, newValidationError(fmt.Sprintf("missing fields: %s", strings.Join(missing, ", ")))
	}

	doctorID, err := strconv.ParseInt(strings.TrimSpace(in.DoctorID), 10, 64)
	if err != nil {
		return nil, newValidationError("doctor_id must be an integer")
	}

	date, dateErr := time.ParseInLocation(dateLayout, strings.TrimSpace(in.AppointmentDate), now.Location())
	timeOfDay, timeErr := time.Parse(timeLayout, strings.TrimSpace(in.AppointmentTime))
	if dateErr != nil || timeErr != nil {
		return nil, newValidationError("invalid date or time format, use YYYY-MM-DD and HH:MM")
	}

	scheduledAt := time.Date(date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0, now.Location())
	if !scheduledAt.After(now) {
		return nil, newValidationError("appointment must be scheduled in the future")
	}

	return &Appointment{
		PatientName:  trimTo(in.PatientName, maxNameLen),
		PatientEmail: trimTo(in.PatientEmail, maxEmailLen),
		PatientPhone: trimTo(in.PatientPhone, maxPhoneLen),
		DoctorID:     doctorID,
		Date:         date,
		TimeOfDay:    timeOfDay.Format(timeLayout),
		Reason:       trimTo(in.Reason, maxReasonLen),
		Status:       StatusPending,
	}, nil
}

// trimTo strips surrounding whitespace and truncates to max runes.
// Truncation is silent, not an error.
func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
