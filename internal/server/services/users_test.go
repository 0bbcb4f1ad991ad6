package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/dbx"
	"github.com/fitlifeapp/fitlife/internal/logging"
	"github.com/fitlifeapp/fitlife/internal/server/auth"
	"github.com/fitlifeapp/fitlife/internal/server/config"
	"github.com/fitlifeapp/fitlife/internal/server/models"
	otpsrepo "github.com/fitlifeapp/fitlife/internal/server/repositories/otps"
	usersrepo "github.com/fitlifeapp/fitlife/internal/server/repositories/users"

	_ "modernc.org/sqlite"
)

// --- helpers ---

func init() {
	// keep bcrypt cheap in tests
	bcryptCost = bcrypt.MinCost
}

// fakeUsersRepo is an in-memory users.Repository keyed by email.
type fakeUsersRepo struct {
	byEmail map[string]*models.User
	nextID  int
	failAll bool
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = string(rune('a' + f.nextID))
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, u *models.User) (*models.User, error) {
	u.UpdatedAt = time.Now()
	return u, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	u, ok := f.byEmail[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

// fakeOTPsRepo is an in-memory otps.Repository.
type fakeOTPsRepo struct {
	byEmail map[string]*models.ResetOTP
}

func newFakeOTPsRepo() *fakeOTPsRepo {
	return &fakeOTPsRepo{byEmail: map[string]*models.ResetOTP{}}
}

func (f *fakeOTPsRepo) Upsert(ctx context.Context, otp *models.ResetOTP) error {
	f.byEmail[otp.Email] = otp
	return nil
}

func (f *fakeOTPsRepo) Get(ctx context.Context, email string) (*models.ResetOTP, error) {
	otp, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return otp, nil
}

func (f *fakeOTPsRepo) Delete(ctx context.Context, email string) error {
	delete(f.byEmail, email)
	return nil
}

// fakeManager vends the fakes regardless of the DBTX passed in.
type fakeManager struct {
	users *fakeUsersRepo
	otps  *fakeOTPsRepo
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(db dbx.DBTX) usersrepo.Repository { return m.users }
func (m *fakeManager) OTPs(db dbx.DBTX) otpsrepo.Repository { return m.otps }

func newTestService(t *testing.T) (*UserService, *fakeManager) {
	t.Helper()

	// transactions need a real handle even though the fakes ignore it
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	m := &fakeManager{users: newFakeUsersRepo(), otps: newFakeOTPsRepo()}
	cfg := &config.Config{
		SecretKey:           "k",
		AccessTokenValidity: time.Hour,
		ResetTokenValidity:  10 * time.Minute,
		OTPValidity:         10 * time.Minute,
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewUserService(db, m, cfg, log), m
}

// --- tests ---

func TestRegister_NormalizesUserTypeAndIssuesToken(t *testing.T) {
	s, _ := newTestService(t)

	user, token, err := s.Register(context.Background(), " A@X.com ", "secret1", "Ann", "COACH")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.UserType != "coach" {
		t.Fatalf("user type not normalized: %q", user.UserType)
	}

	userID, err := auth.GetUserIDFromToken(token, []byte("k"))
	if err != nil || userID != user.ID {
		t.Fatalf("token does not verify for user: id=%q err=%v", userID, err)
	}
}

func TestRegister_UnknownUserTypeDefaultsToAthlete(t *testing.T) {
	s, _ := newTestService(t)

	user, _, err := s.Register(context.Background(), "a@x.com", "secret1", "Ann", "wizard")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.UserType != "athlete" {
		t.Fatalf("want athlete, got %q", user.UserType)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "a@x.com", "secret1", "Ann", "coach"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	_, _, err := s.Register(ctx, "a@x.com", "other", "Bob", "athlete")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	reg, _, err := s.Register(ctx, "a@x.com", "secret1", "Ann", "coach")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	user, token, err := s.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != reg.ID || token == "" {
		t.Fatalf("unexpected login result: id=%q token=%q", user.ID, token)
	}
}

func TestLogin_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "a@x.com", "secret1", "Ann", "coach"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, _, errWrong := s.Login(ctx, "a@x.com", "nope")
	_, _, errGhost := s.Login(ctx, "ghost@x.com", "nope")

	if !errors.Is(errWrong, common.ErrorUnauthorized) || !errors.Is(errGhost, common.ErrorUnauthorized) {
		t.Fatalf("both must be ErrorUnauthorized, got %v / %v", errWrong, errGhost)
	}
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	reg, _, err := s.Register(ctx, "a@x.com", "secret1", "Ann", "coach")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	name := "Ann Smith"
	got, err := s.UpdateProfile(ctx, reg.ID, ProfileUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if got.Name != "Ann Smith" || got.UserType != "coach" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	s, _ := newTestService(t)

	err := s.ForgotPassword(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestForgotPassword_StoresHashedCode(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "a@x.com", "secret1", "Ann", "coach"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := s.ForgotPassword(ctx, "a@x.com"); err != nil {
		t.Fatalf("ForgotPassword error: %v", err)
	}

	otp := m.otps.byEmail["a@x.com"]
	if otp == nil {
		t.Fatal("no OTP stored")
	}
	if len(otp.CodeHash) == 0 || string(otp.CodeHash) == "123456" {
		t.Fatalf("code must be stored hashed, got %q", otp.CodeHash)
	}
	if !otp.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry must be in the future: %v", otp.ExpiresAt)
	}
}

func seedOTP(t *testing.T, m *fakeManager, email, code string, expiresAt time.Time) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	m.otps.byEmail[email] = &models.ResetOTP{Email: email, CodeHash: hash, ExpiresAt: expiresAt}
}

func TestVerifyOTP_SuccessConsumesCode(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	seedOTP(t, m, "a@x.com", "123456", time.Now().Add(5*time.Minute))

	token, err := s.VerifyOTP(ctx, "a@x.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}

	email, err := auth.GetResetEmailFromToken(token, []byte("k"))
	if err != nil || email != "a@x.com" {
		t.Fatalf("reset token does not verify: email=%q err=%v", email, err)
	}

	if _, ok := m.otps.byEmail["a@x.com"]; ok {
		t.Fatal("code must be consumed on success")
	}

	// second use of the same code fails
	if _, err := s.VerifyOTP(ctx, "a@x.com", "123456"); !errors.Is(err, common.ErrOTPMismatch) {
		t.Fatalf("want ErrOTPMismatch on reuse, got %v", err)
	}
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	s, m := newTestService(t)

	seedOTP(t, m, "a@x.com", "123456", time.Now().Add(5*time.Minute))

	_, err := s.VerifyOTP(context.Background(), "a@x.com", "654321")
	if !errors.Is(err, common.ErrOTPMismatch) {
		t.Fatalf("want ErrOTPMismatch, got %v", err)
	}
}

func TestVerifyOTP_MintFailureLeavesCodeUsable(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	seedOTP(t, m, "a@x.com", "123456", time.Now().Add(5*time.Minute))

	old := generateResetToken
	generateResetToken = func(string, []byte, time.Duration) (string, error) {
		return "", errors.New("signing failure")
	}
	t.Cleanup(func() { generateResetToken = old })

	_, err := s.VerifyOTP(ctx, "a@x.com", "123456")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
	if _, ok := m.otps.byEmail["a@x.com"]; !ok {
		t.Fatal("code must survive a token mint failure")
	}

	generateResetToken = old
	token, err := s.VerifyOTP(ctx, "a@x.com", "123456")
	if err != nil {
		t.Fatalf("retry after mint failure: %v", err)
	}
	if token == "" {
		t.Fatal("expected a reset token")
	}
}

func TestVerifyOTP_Expired(t *testing.T) {
	s, m := newTestService(t)

	seedOTP(t, m, "a@x.com", "123456", time.Now().Add(-1*time.Minute))

	_, err := s.VerifyOTP(context.Background(), "a@x.com", "123456")
	if !errors.Is(err, common.ErrOTPExpired) {
		t.Fatalf("want ErrOTPExpired, got %v", err)
	}
	if _, ok := m.otps.byEmail["a@x.com"]; ok {
		t.Fatal("expired code must be deleted")
	}
}

func TestResetPassword_FullFlow(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "a@x.com", "oldsecret", "Ann", "coach"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	seedOTP(t, m, "a@x.com", "123456", time.Now().Add(5*time.Minute))

	token, err := s.VerifyOTP(ctx, "a@x.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}

	if err := s.ResetPassword(ctx, "a@x.com", token, "newsecret"); err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}

	if _, _, err := s.Login(ctx, "a@x.com", "oldsecret"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("old password must be rejected, got %v", err)
	}
	if _, _, err := s.Login(ctx, "a@x.com", "newsecret"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestResetPassword_TokenEmailMismatch(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	token, err := auth.GenerateResetToken("other@x.com", []byte("k"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken error: %v", err)
	}

	err = s.ResetPassword(ctx, "a@x.com", token, "newsecret")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestResetPassword_AccessTokenRejected(t *testing.T) {
	s, _ := newTestService(t)

	token, err := auth.GenerateAccessToken("u1", []byte("k"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	err = s.ResetPassword(context.Background(), "a@x.com", token, "newsecret")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
