package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the workflow state of a publication request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// ValidStatus reports whether s is one of the three workflow states.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Attachment describes a file stored in the blob store. FileID is the opaque
// blob key; URL is filled in on read for client retrieval.
type Attachment struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	URL      string `json:"url,omitempty"`
}

// PublicationRequest is a proposed event awaiting staff/admin review.
// Raw date/time strings are kept as submitted; StartAt/EndAt are the
// normalized UTC instants derived from them.
type PublicationRequest struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Author       string        `json:"author"`
	Organization string        `json:"organization"`
	Email        string        `json:"email"`
	Location     string        `json:"location"`
	OnCampus     bool          `json:"on_campus"`
	MaxAttendees *int          `json:"max_attendees"`
	EventDate    string        `json:"date"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	StartAt      *time.Time    `json:"start_iso"`
	EndAt        *time.Time    `json:"end_iso"`
	Description  string        `json:"description"`
	PublishAll   bool          `json:"publish_all"`
	Departments  []string      `json:"departments"`
	Attachments  []Attachment  `json:"attachments"`
	Status       RequestStatus `json:"status"`
	IsVisible    bool          `json:"is_visible"`
	Feedback     *string       `json:"feedback,omitempty"`
	EventID      *uuid.UUID    `json:"event_id,omitempty"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
