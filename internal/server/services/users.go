package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/dbx"
	"github.com/fitlifeapp/fitlife/internal/logging"
	"github.com/fitlifeapp/fitlife/internal/server/auth"
	sc "github.com/fitlifeapp/fitlife/internal/server/config"
	"github.com/fitlifeapp/fitlife/internal/server/models"
	"github.com/fitlifeapp/fitlife/internal/server/repositories/repomanager"
)

// knownUserTypes are the account variants a member can register as.
var knownUserTypes = map[string]bool{
	"athlete":      true,
	"coach":        true,
	"nutritionist": true,
}

// ProfileUpdate carries the optional fields of a profile edit; nil means
// "leave unchanged".
type ProfileUpdate struct {
	Name     *string
	UserType *string
	PhotoURL *string
}

// UserService implements registration, login, profile management, and the
// OTP-based password reset.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	config *sc.Config
	log    logging.Logger
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, config *sc.Config, log logging.Logger) *UserService {
	return &UserService{db: db, repos: repos, config: config, log: log}
}

// bcryptCost is a seam so tests can use the minimum cost.
var bcryptCost = bcrypt.DefaultCost

func normalizeUserType(userType string) string {
	t := strings.ToLower(strings.TrimSpace(userType))
	if !knownUserTypes[t] {
		return "athlete"
	}
	return t
}

// Register creates an account and returns the user plus a fresh access
// token. Duplicate emails surface as common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, name, userType string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		UserType:     normalizeUserType(userType),
		PasswordHash: hash,
	}

	user, err = s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrorAlreadyExists
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateAccessToken(user.ID, []byte(s.config.SecretKey), s.config.AccessTokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "user_type", user.UserType)
	return user, token, nil
}

// Login verifies the credentials and returns the user plus a fresh access
// token. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateAccessToken(user.ID, []byte(s.config.SecretKey), s.config.AccessTokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Profile returns the account for userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of upd and returns the updated
// user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.UserType != nil {
		user.UserType = normalizeUserType(*upd.UserType)
	}
	if upd.PhotoURL != nil {
		user.PhotoURL = *upd.PhotoURL
	}

	user, err = repo.UpdateProfile(ctx, user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return user, nil
}

// ForgotPassword issues a 6-digit reset code for the account. The code is
// stored hashed with an expiry; delivery is a log line until a mail
// integration lands.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.repos.Users(s.db).GetByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	code, err := common.MakeRandDigits(6)
	if err != nil {
		return common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	if err != nil {
		return common.ErrorInternal
	}

	err = s.repos.OTPs(s.db).Upsert(ctx, &models.ResetOTP{
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(s.config.OTPValidity),
	})
	if err != nil {
		return common.ErrorInternal
	}

	// TODO: deliver via the transactional mail provider once credentials are provisioned
	s.log.Info(ctx, "password reset code issued", "email", email, "code", code)
	return nil
}

// generateResetToken is a seam so tests can force a mint failure.
var generateResetToken = auth.GenerateResetToken

// VerifyOTP checks the code for email and, on success, consumes it and
// returns a temp token that authorizes exactly one password reset. The
// read-check-delete runs in a transaction so a code is consumed at most
// once, and the token is minted before the delete so a mint failure leaves
// the code usable.
func (s *UserService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var token string
	var expired bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		otpRepo := s.repos.OTPs(tx)

		otp, err := otpRepo.Get(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrOTPMismatch
			}
			return common.ErrorInternal
		}

		// commit the cleanup of an expired row, hence no error return here
		if time.Now().After(otp.ExpiresAt) {
			expired = true
			if err := otpRepo.Delete(ctx, email); err != nil {
				return common.ErrorInternal
			}
			return nil
		}

		if bcrypt.CompareHashAndPassword(otp.CodeHash, []byte(code)) != nil {
			return common.ErrOTPMismatch
		}

		token, err = generateResetToken(email, []byte(s.config.SecretKey), s.config.ResetTokenValidity)
		if err != nil {
			return common.ErrorInternal
		}

		if err := otpRepo.Delete(ctx, email); err != nil {
			return common.ErrorInternal
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if expired {
		return "", common.ErrOTPExpired
	}
	return token, nil
}

// ResetPassword replaces the password for the email bound into tempToken.
// The token's email must match the request's email.
func (s *UserService) ResetPassword(ctx context.Context, email, tempToken, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	tokenEmail, err := auth.GetResetEmailFromToken(tempToken, []byte(s.config.SecretKey))
	if err != nil {
		return common.ErrInvalidToken
	}
	if tokenEmail != email {
		return common.ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).UpdatePassword(ctx, email, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return common.ErrorInternal
		}
		// any code issued before the reset is void
		if err := s.repos.OTPs(tx).Delete(ctx, email); err != nil {
			return common.ErrorInternal
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset completed", "email", email)
	return nil
}
