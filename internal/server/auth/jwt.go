// Package auth issues and verifies the server's HS256 tokens: short-lived
// access tokens carrying the user ID, and single-purpose reset tokens minted
// after OTP verification.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fitlifeapp/fitlife/internal/common"
)

// purposeReset marks a token as usable only for completing a password reset.
const purposeReset = "password_reset"

// Claims carries the standard claims plus the authenticated user's ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// ResetClaims binds a reset token to an email and a purpose so an access
// token can never be replayed into the reset endpoint.
type ResetClaims struct {
	jwt.RegisteredClaims
	Email   string
	Purpose string
}

// GenerateAccessToken mints a bearer token for userID.
func GenerateAccessToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies an access token and returns the user ID.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// GenerateResetToken mints the temp token handed back after a successful OTP
// verification.
func GenerateResetToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Email:   email,
		Purpose: purposeReset,
	})

	return token.SignedString(secretKey)
}

// GetResetEmailFromToken verifies a reset token and returns the email it was
// issued for. Tokens without the reset purpose are rejected.
func GetResetEmailFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &ResetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Purpose != purposeReset || claims.Email == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Email, nil
}
