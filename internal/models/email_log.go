package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailLog records one outbound notification attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	RequestID      *uuid.UUID `json:"request_id,omitempty"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"` // pending | sent | failed
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
