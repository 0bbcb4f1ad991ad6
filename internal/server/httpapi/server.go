// Package httpapi exposes the identity service over HTTP/JSON under
// /api/auth. Every error response carries a {message} body the client can
// surface to the member.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fitlifeapp/fitlife/internal/logging"
	sc "github.com/fitlifeapp/fitlife/internal/server/config"
	"github.com/fitlifeapp/fitlife/internal/server/models"
	"github.com/fitlifeapp/fitlife/internal/server/services"
)

// UserOps is the slice of the user service the handlers consume; tests
// substitute a fake.
type UserOps interface {
	Register(ctx context.Context, email, password, name, userType string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, email, tempToken, newPassword string) error
}

// MediaOps is the presign surface consumed by the photo-url endpoint.
type MediaOps interface {
	Enabled() bool
	GetPhotoUploadURL(ctx context.Context, userID, contentType string) (uploadURL, photoURL string, err error)
}

type Server struct {
	config *sc.Config
	users  UserOps
	media  MediaOps
	log    logging.Logger
}

func NewServer(config *sc.Config, users UserOps, media MediaOps, log logging.Logger) *Server {
	return &Server{config: config, users: users, media: media, log: log}
}

// Router builds the chi router with the /api/auth route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/verify-otp", s.handleVerifyOTP)
		r.Post("/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/profile", s.handleProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/profile/photo-url", s.handlePhotoUploadURL)
		})
	})

	return r
}
