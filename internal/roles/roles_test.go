package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"student", Student},
		{"staff", Staff},
		{"admin", Admin},
		{"publisher", Staff},
		{"user", Student},
		{"default", Student},
		{"", Guest},
		{"guest", Guest},
		{"superuser", Guest},
		{"ADMIN", Admin},
		{"  Staff  ", Staff},
		{"Publisher", Staff},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"student", "staff", "admin", "publisher", "user", "", "garbage"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize(%q) not idempotent", in)
	}
}

func TestNormalizeTotal(t *testing.T) {
	// Every input lands in one of the four roles, never an unexpected value.
	known := map[string]bool{Student: true, Staff: true, Admin: true, Guest: true}
	for _, in := range []string{"student", "staff", "admin", "publisher", "user", "default", "", "x", "root", "  "} {
		assert.True(t, known[Normalize(in)], "Normalize(%q) = %q", in, Normalize(in))
	}
}
