package models

import (
	"time"

	"github.com/google/uuid"
)

// Raw role strings accepted at registration. Legacy "publisher" is still
// accepted on write and normalizes to staff on read.
const (
	TypeStudent   = "student"
	TypeStaff     = "staff"
	TypeAdmin     = "admin"
	TypePublisher = "publisher"
)

// AllowedTypes is the set of raw role strings accepted from clients.
var AllowedTypes = map[string]struct{}{
	TypeStudent:   {},
	TypeStaff:     {},
	TypeAdmin:     {},
	TypePublisher: {},
}

// Signup records a user's registration for a published event.
type Signup struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// User represents an account with login credentials. Type holds the raw,
// possibly legacy role string; access control always goes through roles.Normalize.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Type               string    `json:"type"`
	Department         *string   `json:"department,omitempty"`
	Active             bool      `json:"active"`
	MustChangePassword bool      `json:"must_change_password"`
	Allergy            *string   `json:"allergy,omitempty"`
	Signups            []Signup  `json:"signups,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserItem is the admin-listing projection of a user.
type UserItem struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	Dept    string    `json:"dept"`
	Active  bool      `json:"active"`
	Allergy string    `json:"allergy"`
}
