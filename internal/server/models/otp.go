package models

import "time"

// ResetOTP is the pending password-reset code for an email. Only the bcrypt
// digest of the code is stored; one row per email, replaced on re-request.
type ResetOTP struct {
	Email     string
	CodeHash  []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}
