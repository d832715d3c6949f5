package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medimind/medimind-server/internal/doctor"
	"github.com/medimind/medimind-server/pkg/logging"
)

type DoctorService interface {
	Register(ctx context.Context, in doctor.RegisterInput) (int64, error)
	Login(ctx context.Context, email, password string) (*doctor.LoginResult, error)
	ListVerified(ctx context.Context, specialization string) ([]doctor.Summary, error)
	Profile(ctx context.Context, id int64) (*doctor.Doctor, error)
	UpdateProfile(ctx context.Context, id int64, u doctor.ProfileUpdate) error
}

func registerDoctorHandler(svc DoctorService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id, err := svc.Register(r.Context(), doctor.RegisterInput{
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			Specialization:  req.Specialization,
			LicenseNumber:   req.LicenseNumber,
			Phone:           req.Phone,
			Bio:             req.Bio,
			ExperienceYears: req.ExperienceYears,
			ConsultationFee: req.ConsultationFee,
		})
		if err != nil {
			writeDoctorError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, RegisterDoctorResponse{
			Message:  "Doctor registered successfully. Verification pending.",
			DoctorID: id,
		})
	}
}

func loginDoctorHandler(svc DoctorService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDoctorError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Message: "Login successful",
			Token:   result.Token,
			Doctor:  toDoctorProfile(result.Doctor),
		})
	}
}

func listDoctorsHandler(svc DoctorService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.ListVerified(r.Context(), r.URL.Query().Get("specialization"))
		if err != nil {
			writeDoctorError(w, logger, err)
			return
		}

		doctors := make([]DoctorSummary, 0, len(summaries))
		for _, s := range summaries {
			doctors = append(doctors, DoctorSummary{
				ID:              s.ID,
				Name:            s.Name,
				Specialization:  s.Specialization,
				Bio:             s.Bio,
				ExperienceYears: s.ExperienceYears,
				ConsultationFee: s.ConsultationFee,
			})
		}
		writeJSON(w, http.StatusOK, ListDoctorsResponse{Doctors: doctors})
	}
}

func getDoctorProfileHandler(svc DoctorService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid doctor id")
			return
		}

		d, err := svc.Profile(r.Context(), id)
		if err != nil {
			writeDoctorError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorProfile(d))
	}
}

func updateDoctorProfileHandler(svc DoctorService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid doctor id")
			return
		}

		var req UpdateDoctorProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err = svc.UpdateProfile(r.Context(), id, doctor.ProfileUpdate{
			Name:            req.Name,
			Phone:           req.Phone,
			Bio:             req.Bio,
			ExperienceYears: req.ExperienceYears,
			ConsultationFee: req.ConsultationFee,
		})
		if err != nil {
			writeDoctorError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Profile updated successfully"})
	}
}

func toDoctorProfile(d *doctor.Doctor) DoctorProfile {
	return DoctorProfile{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		Specialization:  d.Specialization,
		LicenseNumber:   d.LicenseNumber,
		Phone:           d.Phone,
		Bio:             d.Bio,
		ExperienceYears: d.ExperienceYears,
		ConsultationFee: d.ConsultationFee,
		Verified:        d.Verified,
	}
}

func writeDoctorError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *doctor.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, doctor.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, doctor.ErrEmailTaken):
		writeError(w, http.StatusConflict, "a doctor with this email already exists")
	case errors.Is(err, doctor.ErrLicenseTaken):
		writeError(w, http.StatusConflict, "a doctor with this license number already exists")
	case errors.Is(err, doctor.ErrNotFound):
		writeError(w, http.StatusNotFound, "doctor not found")
	default:
		logger.Error("doctor request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
