package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/server/models"
	"github.com/fitlifeapp/fitlife/internal/server/services"
)

var validate = validator.New()

const (
	maxBodyBytes = 1 << 20 // 1MB

	// Profile updates may carry an inline data-URL photo: base64 of a 2MB
	// image is just under 3MB.
	maxProfileBodyBytes = 4 << 20
)

// ---- request / response DTOs ----

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type resetPasswordRequest struct {
	Email     string `json:"email" validate:"required,email"`
	TempToken string `json:"tempToken" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

type updateProfileRequest struct {
	Name     *string `json:"displayName"`
	UserType *string `json:"userType"`
	PhotoURL *string `json:"photoURL"`
}

type photoUploadURLRequest struct {
	ContentType string `json:"contentType"`
}

type authResponse struct {
	Token       string `json:"token"`
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	UserType    string `json:"userType,omitempty"`
}

type profileResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	UserType    string `json:"userType,omitempty"`
}

func toProfileResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		PhotoURL:    u.PhotoURL,
		UserType:    u.UserType,
	}
}

// ---- plumbing ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// decode reads a JSON body into v and runs struct validation. A false return
// means the response has already been written.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeLimit(w, r, v, maxBodyBytes)
}

func decodeLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return "A valid email is required"
	case "Password":
		return "Password must be at least 6 characters"
	case "OTP":
		return "OTP must be 6 digits"
	case "TempToken":
		return "Missing verification token"
	default:
		return "Invalid request"
	}
}

// ---- handlers ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name, req.UserType)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		s.log.Error(r.Context(), "register error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:       token,
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.Name,
		UserType:    user.UserType,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.log.Error(r.Context(), "login error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:       token,
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.Name,
		UserType:    user.UserType,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.users.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "No account with that email")
			return
		}
		s.log.Error(r.Context(), "forgot password error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to your email"})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decode(w, r, &req) {
		return
	}

	tempToken, err := s.users.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrOTPExpired):
			writeError(w, http.StatusBadRequest, "OTP has expired")
		case errors.Is(err, common.ErrOTPMismatch):
			writeError(w, http.StatusBadRequest, "Invalid OTP")
		default:
			s.log.Error(r.Context(), "verify otp error", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify OTP")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "OTP verified",
		"tempToken": tempToken,
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.users.ResetPassword(r.Context(), req.Email, req.TempToken, req.Password); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusNotFound, "No account with that email")
		default:
			s.log.Error(r.Context(), "reset password error", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Profile(r.Context(), requestUserID(r))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error(r.Context(), "profile error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeLimit(w, r, &req, maxProfileBodyBytes) {
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), requestUserID(r), services.ProfileUpdate{
		Name:     req.Name,
		UserType: req.UserType,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error(r.Context(), "update profile error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

func (s *Server) handlePhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	if s.media == nil || !s.media.Enabled() {
		writeError(w, http.StatusNotFound, "Media storage not configured")
		return
	}

	var req photoUploadURLRequest
	if !decode(w, r, &req) {
		return
	}

	uploadURL, photoURL, err := s.media.GetPhotoUploadURL(r.Context(), requestUserID(r), req.ContentType)
	if err != nil {
		s.log.Error(r.Context(), "photo upload url error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to prepare upload")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"uploadURL": uploadURL,
		"photoURL":  photoURL,
	})
}
