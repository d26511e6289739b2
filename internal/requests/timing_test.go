package requests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineUTC(t *testing.T) {
	tests := []struct {
		name string
		date string
		hhmm string
		want time.Time
	}{
		{
			// CEST, UTC+2
			name: "summer time",
			date: "2025-10-23",
			hhmm: "12:00",
			want: time.Date(2025, 10, 23, 10, 0, 0, 0, time.UTC),
		},
		{
			// CET, UTC+1
			name: "winter time",
			date: "2025-01-23",
			hhmm: "12:00",
			want: time.Date(2025, 1, 23, 11, 0, 0, 0, time.UTC),
		},
		{
			name: "iso date with time part",
			date: "2025-06-01T00:00:00.000Z",
			hhmm: "09:30",
			want: time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineUTC(tt.date, tt.hhmm)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestCombineUTCErrors(t *testing.T) {
	_, err := CombineUTC("23/10/2025", "12:00")
	assert.ErrorContains(t, err, "Invalid date")

	_, err = CombineUTC("2025-10-23", "noon")
	assert.ErrorContains(t, err, "Invalid time")

	_, err = CombineUTC("2025-13-40", "12:00")
	assert.ErrorContains(t, err, "Invalid date")
}

func TestResolveTiming(t *testing.T) {
	start, end, err := ResolveTiming("2025-10-23", "12:00", "14:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 23, 10, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2025, 10, 23, 12, 0, 0, 0, time.UTC), end.UTC())
}

func TestResolveTimingEmptyEndDefaultsToStart(t *testing.T) {
	start, end, err := ResolveTiming("2025-10-23", "12:00", "")
	require.NoError(t, err)
	assert.True(t, end.Equal(start))
}

func TestResolveTimingEndBeforeStart(t *testing.T) {
	_, _, err := ResolveTiming("2025-10-23", "14:00", "12:00")
	assert.ErrorContains(t, err, "End time must not be before start time")
}

func TestParseEventDate(t *testing.T) {
	day, err := ParseEventDate("2025-10-23T12:34:56Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-23", day)

	day, err = ParseEventDate(" 2025-10-23 ")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-23", day)

	_, err = ParseEventDate("not-a-date")
	assert.Error(t, err)
}
