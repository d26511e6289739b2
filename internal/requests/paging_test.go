package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		page, size string
		wantPage   int
		wantSize   int
	}{
		{"", "", 1, 50},
		{"3", "25", 3, 25},
		{"0", "0", 1, 1},
		{"-5", "-1", 1, 1},
		{"2", "1000", 2, 200},
		{"abc", "xyz", 1, 50},
	}
	for _, tt := range tests {
		page, size := normalizePaging(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page, "page for (%q, %q)", tt.page, tt.size)
		assert.Equal(t, tt.wantSize, size, "size for (%q, %q)", tt.page, tt.size)
	}
}
