// Package models defines the records handled by the FitLife client: the
// authenticated user, the durable per-user profile record, and the tagged
// result shape returned by every public client operation.
package models

import (
	"strings"
	"time"
)

// UserType classifies a member account. It is chosen at signup and treated
// as immutable afterwards.
type UserType string

const (
	UserTypeAthlete      UserType = "athlete"
	UserTypeCoach        UserType = "coach"
	UserTypeNutritionist UserType = "nutritionist"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAthlete, UserTypeCoach, UserTypeNutritionist:
		return true
	}
	return false
}

// ParseUserType normalizes a raw user-type string to one of the known
// values. Unknown or empty input defaults to athlete.
func ParseUserType(s string) UserType {
	t := UserType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return UserTypeAthlete
}

// Reconcile returns the user type to present when the server response and
// the locally cached value disagree: the cached value wins unless it is
// absent or unknown. The identity API does not reliably echo the user type
// back, so the client keeps its own record from signup time.
func Reconcile(server, cached UserType) UserType {
	if cached.Valid() {
		return cached
	}
	if server.Valid() {
		return server
	}
	return UserTypeAthlete
}

// User is the transient current-session user owned by the session container.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	PhotoURL    string   `json:"photoURL,omitempty"`
	UserType    UserType `json:"userType"`
}

// ProfileRecord is the durable per-user profile document kept in the local
// record store, one per user identifier.
type ProfileRecord struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UserType  UserType  `json:"userType"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
