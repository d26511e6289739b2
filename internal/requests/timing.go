package requests

import (
	"fmt"
	"strings"
	"time"
)

// Submitted dates and times are wall-clock values in the campus timezone.
// They are converted to UTC instants at write time so range queries and
// ordering never depend on the server's local zone.
const campusTimezone = "Europe/Stockholm"

var campusLocation *time.Location

func init() {
	loc, err := time.LoadLocation(campusTimezone)
	if err != nil {
		// Fall back to a fixed offset if tzdata is unavailable.
		loc = time.FixedZone("CET", 1*60*60)
	}
	campusLocation = loc
}

// ParseEventDate accepts "YYYY-MM-DD" or a full ISO timestamp, of which only
// the date part is used.
func ParseEventDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("Invalid date; expected 'YYYY-MM-DD' or ISO, got '%s'", raw)
	}
	return s, nil
}

// CombineUTC resolves a campus-local date and "HH:MM" time to a UTC instant.
func CombineUTC(date, hhmm string) (time.Time, error) {
	day, err := ParseEventDate(date)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid time; expected 'HH:MM', got '%s'", hhmm)
	}
	d, err := time.ParseInLocation("2006-01-02", day, campusLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid date; expected 'YYYY-MM-DD' or ISO, got '%s'", date)
	}
	local := time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, campusLocation)
	return local.UTC(), nil
}

// ResolveTiming computes the UTC start and end instants for a submission.
// An empty end time defaults to the start time. An end before the start is
// rejected.
func ResolveTiming(date, startTime, endTime string) (start, end time.Time, err error) {
	start, err = CombineUTC(date, startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if strings.TrimSpace(endTime) == "" {
		return start, start, nil
	}
	end, err = CombineUTC(date, endTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("End time must not be before start time")
	}
	return start, end, nil
}
