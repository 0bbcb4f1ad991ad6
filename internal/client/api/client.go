package api

import "context"

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

// AuthResponse is the shape returned by both /register and /login.
// Historically the backend has exposed the user identifier under different
// field names, so all three are accepted.
type AuthResponse struct {
	Token       string `json:"token"`
	ID          string `json:"id,omitempty"`
	UID         string `json:"uid,omitempty"`
	LegacyID    string `json:"_id,omitempty"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	UserType    string `json:"userType,omitempty"`
}

// UserID returns the user identifier regardless of which field the server
// populated.
func (r *AuthResponse) UserID() string {
	switch {
	case r.ID != "":
		return r.ID
	case r.UID != "":
		return r.UID
	default:
		return r.LegacyID
	}
}

// MessageResponse is the plain {message} body used by the password-reset
// endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyOTPResponse carries the temp token that authorizes one subsequent
// password reset for the same email.
type VerifyOTPResponse struct {
	Message   string `json:"message"`
	TempToken string `json:"tempToken"`
}

// ProfileResponse is the user record returned by GET /profile and the
// updated fields returned by PUT /profile.
type ProfileResponse struct {
	ID          string `json:"id,omitempty"`
	UID         string `json:"uid,omitempty"`
	LegacyID    string `json:"_id,omitempty"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	UserType    string `json:"userType,omitempty"`
}

// UserID returns the user identifier regardless of which field the server
// populated.
func (r *ProfileResponse) UserID() string {
	switch {
	case r.ID != "":
		return r.ID
	case r.UID != "":
		return r.UID
	default:
		return r.LegacyID
	}
}

// PhotoUploadURLResponse is returned by the optional photo presign endpoint:
// a short-lived PUT target plus the stable URL of the stored object.
type PhotoUploadURLResponse struct {
	UploadURL string `json:"uploadURL"`
	PhotoURL  string `json:"photoURL"`
}

// Client is the surface of the remote identity API consumed by the session
// container. Implementations attach the bearer token set via SetToken to
// every outgoing request; an empty token means no authorization header.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) (*MessageResponse, error)
	VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error)
	ResetPassword(ctx context.Context, email, tempToken, password string) (*MessageResponse, error)
	Profile(ctx context.Context) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, partial map[string]any) (*ProfileResponse, error)

	// PhotoUploadURL asks the server for a presigned upload target. Servers
	// without media storage respond with 404, surfaced as *APIError.
	PhotoUploadURL(ctx context.Context, contentType string) (*PhotoUploadURLResponse, error)

	SetToken(token string)
	Ping(ctx context.Context) error
}
