package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is the published, calendar-visible occurrence created from exactly one
// approved publication request. SourceRequestID carries a unique constraint so
// repeated promotion yields at most one event.
type Event struct {
	ID              uuid.UUID    `json:"id"`
	SourceRequestID uuid.UUID    `json:"source_request_id"`
	Title           string       `json:"title"`
	Organization    string       `json:"organization"`
	Location        string       `json:"location"`
	OnCampus        bool         `json:"on_campus"`
	MaxAttendees    *int         `json:"max_attendees"`
	EventDate       string       `json:"date"`
	StartTime       string       `json:"start_time"`
	EndTime         string       `json:"end_time"`
	StartAt         *time.Time   `json:"start_iso"`
	EndAt           *time.Time   `json:"end_iso"`
	Description     string       `json:"description"`
	PublishAll      bool         `json:"publish_all"`
	Departments     []string     `json:"departments"`
	Attachments     []Attachment `json:"attachments"`
	CreatedAt       time.Time    `json:"created_at"`
}

// CalendarItem is the projection returned by calendar range queries.
type CalendarItem struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	Location     string     `json:"location"`
	OnCampus     bool       `json:"on_campus"`
	Description  string     `json:"description"`
	Departments  []string   `json:"departments"`
	MaxAttendees *int       `json:"max_attendees"`
}
