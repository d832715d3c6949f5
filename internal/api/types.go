package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexString accepts either a JSON string or a JSON number, keeping the
// textual form. Some clients send doctor_id as "3", others as 3.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type BookAppointmentRequest struct {
	PatientName     string     `json:"patient_name"`
	PatientEmail    string     `json:"patient_email"`
	PatientPhone    string     `json:"patient_phone"`
	DoctorID        flexString `json:"doctor_id"`
	AppointmentDate string     `json:"appointment_date"`
	AppointmentTime string     `json:"appointment_time"`
	Reason          string     `json:"reason"`
}

type BookAppointmentResponse struct {
	Message         string `json:"message"`
	AppointmentID   int64  `json:"appointment_id"`
	DoctorName      string `json:"doctor_name"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Status          string `json:"status"`
}

type UpdateAppointmentRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type TransitionRequest struct {
	Notes string `json:"notes"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AppointmentItem struct {
	ID              int64  `json:"id"`
	PatientName     string `json:"patient_name"`
	PatientEmail    string `json:"patient_email"`
	PatientPhone    string `json:"patient_phone"`
	DoctorID        int64  `json:"doctor_id"`
	DoctorName      string `json:"doctor_name"`
	Specialization  string `json:"specialization"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type ListAppointmentsResponse struct {
	Page         int               `json:"page"`
	PerPage      int               `json:"per_page"`
	Total        int               `json:"total"`
	Appointments []AppointmentItem `json:"appointments"`
}

type RegisterDoctorRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Specialization  string  `json:"specialization"`
	LicenseNumber   string  `json:"license_number"`
	Phone           string  `json:"phone"`
	Bio             string  `json:"bio"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
}

type RegisterDoctorResponse struct {
	Message  string `json:"message"`
	DoctorID int64  `json:"doctor_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	Doctor  DoctorProfile `json:"doctor"`
}

type DoctorSummary struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Bio             string  `json:"bio"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
}

type ListDoctorsResponse struct {
	Doctors []DoctorSummary `json:"doctors"`
}

type DoctorProfile struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Specialization  string  `json:"specialization"`
	LicenseNumber   string  `json:"license_number"`
	Phone           string  `json:"phone"`
	Bio             string  `json:"bio"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
	Verified        bool    `json:"verified"`
}

type UpdateDoctorProfileRequest struct {
	Name            *string  `json:"name"`
	Phone           *string  `json:"phone"`
	Bio             *string  `json:"bio"`
	ExperienceYears *int     `json:"experience_years"`
	ConsultationFee *float64 `json:"consultation_fee"`
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type ChatExchange struct {
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	Timestamp   string `json:"timestamp"`
}

type ChatHistoryResponse struct {
	SessionID string         `json:"session_id"`
	History   []ChatExchange `json:"history"`
}

// parseID parses a positive decimal path parameter.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}
