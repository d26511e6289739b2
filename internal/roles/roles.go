// Package roles maps raw, possibly legacy role strings to the canonical
// access-control categories.
package roles

import "strings"

// Canonical roles.
const (
	Student = "student"
	Staff   = "staff"
	Admin   = "admin"
	Guest   = "guest"
)

// Normalize maps any raw role string to one of student, staff, admin or guest.
// "publisher" is a legacy staff alias; "user" and "default" are legacy values
// stored for students. Everything else, including the empty string of an
// unauthenticated caller, is guest: an absent session must never satisfy a
// protected path prefix.
func Normalize(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case Student, Staff, Admin:
		return strings.ToLower(strings.TrimSpace(raw))
	case "publisher":
		return Staff
	case "user", "default":
		return Student
	default:
		return Guest
	}
}
