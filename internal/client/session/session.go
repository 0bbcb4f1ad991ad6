// Package session owns the client's authentication state: the current user,
// the bearer token, and the loading flag, plus every operation that talks to
// the identity API.
//
// A Session is an explicitly constructed object with a defined lifecycle:
// New → Hydrate (load the persisted token and attempt the initial profile
// load) → ready. It is injected into consumers rather than living as an
// ambient singleton.
//
// Every public operation returns a tagged result; nothing escapes the
// container as an error or panic. Remote failures carry the server's message
// when one is available.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/fitlifeapp/fitlife/internal/client/api"
	"github.com/fitlifeapp/fitlife/internal/client/models"
	"github.com/fitlifeapp/fitlife/internal/client/store"
	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/logging"
)

// State is the lifecycle phase of the session container.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "uninitialized"
	}
}

// otpPattern is the syntactic shape of a one-time code; anything else is
// rejected before a remote call is made.
var otpPattern = regexp.MustCompile(`^\d{6}$`)

// SignupData carries the optional profile fields collected at signup.
type SignupData struct {
	Name     string
	UserType string
}

// Session is the auth state container. Safe for concurrent use, though the
// intended usage is single-caller, human-paced.
type Session struct {
	api   api.Client
	store store.Store
	log   logging.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	token   string
	loading bool
}

// New constructs an unhydrated Session. Call Hydrate before use.
func New(apiClient api.Client, st store.Store, log logging.Logger) *Session {
	return &Session{
		api:     apiClient,
		store:   st,
		log:     log,
		state:   StateUninitialized,
		loading: true,
	}
}

// Hydrate loads the persisted bearer token and runs the initial profile
// load. The loading flag stays true until that attempt resolves, success or
// failure.
func (s *Session) Hydrate(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	token := s.readPersistedToken(ctx)
	s.token = token
	s.mu.Unlock()

	s.api.SetToken(token)
	s.loadUserProfile(ctx)
}

// CurrentUser returns the authenticated user, or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the active bearer token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Loading reports whether the initial profile-load attempt is still pending.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Signup registers a new account. The user type is normalized to one of the
// known values (defaulting to athlete), the returned bearer token is
// persisted, and a local profile record is seeded.
func (s *Session) Signup(ctx context.Context, email, password string, data SignupData) models.Result[*models.User] {
	userType := models.ParseUserType(data.UserType)

	resp, err := s.api.Register(ctx, api.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     data.Name,
		UserType: string(userType),
	})
	if err != nil {
		s.log.Error(ctx, "signup error", "email", email, "error", err)
		return models.Fail[*models.User](api.ErrorMessage(err, "Failed to create account"))
	}

	user := &models.User{
		ID:          resp.UserID(),
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		UserType:    userType,
	}
	s.establish(ctx, resp.Token, user)

	s.seedProfile(ctx, user, data.Name)

	return models.Ok(s.CurrentUser())
}

// Login authenticates an existing account. The user type is reconciled with
// the locally cached value, which wins over the server's default.
func (s *Session) Login(ctx context.Context, email, password string) models.Result[*models.User] {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Error(ctx, "login error", "email", email, "error", err)
		return models.Fail[*models.User](api.ErrorMessage(err, "Invalid email or password"))
	}

	userID := resp.UserID()
	userType := models.Reconcile(models.UserType(resp.UserType), s.cachedUserType(ctx, userID))

	user := &models.User{
		ID:          userID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		UserType:    userType,
	}
	s.establish(ctx, resp.Token, user)
	s.ensureProfile(ctx, user)

	return models.Ok(s.CurrentUser())
}

// Logout clears the persisted token and the current user. It always reports
// success: a member pressing "log out" must end up logged out even when the
// local store misbehaves.
func (s *Session) Logout(ctx context.Context) models.Result[struct{}] {
	if err := s.store.Delete(ctx, store.TokenKey); err != nil {
		s.log.Error(ctx, "logout: error clearing persisted token", "error", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	s.api.SetToken("")
	return models.Ok(struct{}{})
}

// ForgotPassword starts the password-reset flow by requesting an OTP for
// the given email.
func (s *Session) ForgotPassword(ctx context.Context, email string) models.Result[struct{}] {
	resp, err := s.api.ForgotPassword(ctx, email)
	if err != nil {
		s.log.Error(ctx, "forgot password error", "email", email, "error", err)
		return models.Fail[struct{}](api.ErrorMessage(err, "Failed to send OTP"))
	}
	return models.OkMsg(struct{}{}, resp.Message)
}

// VerifyOTP checks the one-time code for email. Syntactically invalid codes
// (anything but 6 digits) are rejected locally, before any remote call. On
// success the result data is the temp token that authorizes exactly one
// subsequent password reset for that email.
func (s *Session) VerifyOTP(ctx context.Context, email, otp string) models.Result[string] {
	if !otpPattern.MatchString(otp) {
		return models.Fail[string]("OTP must be 6 digits")
	}

	resp, err := s.api.VerifyOTP(ctx, email, otp)
	if err != nil {
		s.log.Error(ctx, "verify otp error", "email", email, "error", err)
		return models.Fail[string](api.ErrorMessage(err, "Failed to verify OTP"))
	}
	return models.OkMsg(resp.TempToken, resp.Message)
}

// ResetPassword completes the reset flow. An empty temp token is rejected
// locally: the flow cannot legally reach this call without one.
func (s *Session) ResetPassword(ctx context.Context, email, tempToken, newPassword string) models.Result[struct{}] {
	if tempToken == "" {
		return models.Fail[struct{}]("Missing verification token")
	}

	resp, err := s.api.ResetPassword(ctx, email, tempToken, newPassword)
	if err != nil {
		s.log.Error(ctx, "reset password error", "email", email, "error", err)
		return models.Fail[struct{}](api.ErrorMessage(err, "Failed to reset password"))
	}
	return models.OkMsg(struct{}{}, resp.Message)
}

// UpdateProfile pushes partial profile fields to the server and merges the
// response into the current user and the local profile record.
func (s *Session) UpdateProfile(ctx context.Context, partial map[string]any) models.Result[*models.User] {
	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()
	if current == nil {
		return models.Fail[*models.User]("Not signed in")
	}

	resp, err := s.api.UpdateProfile(ctx, partial)
	if err != nil {
		s.log.Error(ctx, "update profile error", "error", err)
		return models.Fail[*models.User](api.ErrorMessage(err, "Failed to update profile"))
	}

	s.mu.Lock()
	if s.user != nil {
		if resp.Email != "" {
			s.user.Email = resp.Email
		}
		if resp.DisplayName != "" {
			s.user.DisplayName = resp.DisplayName
		}
		if resp.PhotoURL != "" {
			s.user.PhotoURL = resp.PhotoURL
		}
	}
	updated := s.user
	s.mu.Unlock()

	if updated != nil {
		mirror := map[string]any{}
		if resp.DisplayName != "" {
			mirror["name"] = resp.DisplayName
		}
		if resp.Email != "" {
			mirror["email"] = resp.Email
		}
		if resp.PhotoURL != "" {
			mirror["photoURL"] = resp.PhotoURL
		}
		if len(mirror) > 0 {
			if err := s.store.Merge(ctx, store.UserKey(updated.ID), mirror); err != nil {
				s.log.Error(ctx, "error mirroring profile update", "error", err)
			}
		}
	}

	return models.Ok(s.CurrentUser())
}

// loadUserProfile resolves the initial session state from the persisted
// token:
//   - no token: unauthenticated, loading done;
//   - 401: the token is stale, tear the session down silently;
//   - other failure: keep the token and any stale user, loading done.
func (s *Session) loadUserProfile(ctx context.Context) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		s.mu.Lock()
		s.loading = false
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return
	}

	resp, err := s.api.Profile(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.log.Warn(ctx, "persisted token rejected, clearing session")
			if derr := s.store.Delete(ctx, store.TokenKey); derr != nil {
				s.log.Error(ctx, "error clearing persisted token", "error", derr)
			}
			s.api.SetToken("")
			s.mu.Lock()
			s.token = ""
			s.user = nil
			s.state = StateUnauthenticated
			s.loading = false
			s.mu.Unlock()
			return
		}

		s.log.Error(ctx, "error loading user profile", "error", err)
		s.mu.Lock()
		if s.user != nil {
			s.state = StateAuthenticated
		} else {
			s.state = StateUnauthenticated
		}
		s.loading = false
		s.mu.Unlock()
		return
	}

	userID := resp.UserID()
	userType := models.Reconcile(models.UserType(resp.UserType), s.cachedUserType(ctx, userID))

	user := &models.User{
		ID:          userID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhotoURL:    resp.PhotoURL,
		UserType:    userType,
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.ensureProfile(ctx, user)
}

// establish records a fresh token and user after a successful signup or
// login. Persistence errors are logged but do not fail the operation: the
// in-memory session is already live.
func (s *Session) establish(ctx context.Context, token string, user *models.User) {
	if err := s.store.Set(ctx, store.TokenKey, token); err != nil {
		s.log.Error(ctx, "error persisting token", "error", err)
	}
	s.api.SetToken(token)

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()
}

// seedProfile initializes the durable profile record and the aggregate
// user-type map after signup or the first sign-in on this device. Failures
// are swallowed: local bookkeeping must never undo a successful auth.
func (s *Session) seedProfile(ctx context.Context, user *models.User, name string) {
	rec := models.ProfileRecord{
		Name:      name,
		Email:     user.Email,
		UserType:  user.UserType,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.Set(ctx, store.UserKey(user.ID), rec); err != nil {
		s.log.Error(ctx, "error seeding profile record", "user_id", user.ID, "error", err)
	}

	types := s.userTypeMap(ctx)
	types[user.ID] = user.UserType
	if err := s.store.Set(ctx, store.UsersKey, types); err != nil {
		s.log.Error(ctx, "error saving user type map", "user_id", user.ID, "error", err)
	}
}

// ensureProfile creates the durable profile record on the first successful
// login or profile fetch on this device. An existing record is left alone;
// the user-type map entry is refreshed either way.
func (s *Session) ensureProfile(ctx context.Context, user *models.User) {
	if _, err := s.store.Get(ctx, store.UserKey(user.ID)); !errors.Is(err, common.ErrorNotFound) {
		return
	}
	s.seedProfile(ctx, user, user.DisplayName)
}

// cachedUserType recovers the locally remembered user type for userID,
// first from the aggregate map, then from the profile record. Empty when
// nothing is cached.
func (s *Session) cachedUserType(ctx context.Context, userID string) models.UserType {
	if t, ok := s.userTypeMap(ctx)[userID]; ok && t.Valid() {
		return t
	}

	raw, err := s.store.Get(ctx, store.UserKey(userID))
	if err != nil {
		return ""
	}
	var rec models.ProfileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ""
	}
	return rec.UserType
}

func (s *Session) userTypeMap(ctx context.Context) map[string]models.UserType {
	types := map[string]models.UserType{}
	raw, err := s.store.Get(ctx, store.UsersKey)
	if err != nil {
		return types
	}
	if err := json.Unmarshal(raw, &types); err != nil {
		return map[string]models.UserType{}
	}
	return types
}

func (s *Session) readPersistedToken(ctx context.Context) string {
	raw, err := s.store.Get(ctx, store.TokenKey)
	if err != nil {
		return ""
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return ""
	}
	return token
}
