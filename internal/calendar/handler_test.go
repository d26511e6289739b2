package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("2025-10-01", "2025-11-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParseRangeMissing(t *testing.T) {
	_, _, err := ParseRange("", "2025-11-01")
	assert.ErrorContains(t, err, "Missing start or end date")

	_, _, err = ParseRange("2025-10-01", "")
	assert.ErrorContains(t, err, "Missing start or end date")
}

func TestParseRangeInvalid(t *testing.T) {
	_, _, err := ParseRange("15/10/2025", "2025-11-01")
	assert.ErrorContains(t, err, "Invalid date")

	_, _, err = ParseRange("2025-11-01", "2025-10-01")
	assert.ErrorContains(t, err, "End date must not be before start date")
}

func TestParseRangeSameDayIsEmptyWindow(t *testing.T) {
	start, end, err := ParseRange("2025-10-01", "2025-10-01")
	require.NoError(t, err)
	assert.True(t, end.Equal(start))
}
