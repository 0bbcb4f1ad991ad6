package models

import "time"

// User is a member account row. PasswordHash is a bcrypt digest and never
// leaves the server.
type User struct {
	ID           string
	Email        string
	Name         string
	UserType     string
	PhotoURL     string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
