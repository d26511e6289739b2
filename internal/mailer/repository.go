package mailer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-events/backend/internal/models"
)

// Repository records outbound email attempts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LogPending records an attempt before delivery and returns its ID.
func (r *Repository) LogPending(ctx context.Context, requestID *uuid.UUID, recipient, subject string) (uuid.UUID, error) {
	const q = `INSERT INTO email_logs (request_id, recipient_email, subject, status)
		VALUES ($1, $2, $3, 'pending') RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, requestID, recipient, subject).Scan(&id)
	return id, err
}

// MarkSent marks an attempt as delivered.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE email_logs SET status = 'sent', sent_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// MarkFailed marks an attempt as failed with the delivery error.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	const q = `UPDATE email_logs SET status = 'failed', error_message = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, cause.Error())
	return err
}

// RecentForRequest returns the logged attempts for one publication request,
// newest first.
func (r *Repository) RecentForRequest(ctx context.Context, requestID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, request_id, recipient_email, COALESCE(subject, ''), status,
		COALESCE(error_message, ''), sent_at, created_at
		FROM email_logs WHERE request_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.EmailLog, 0)
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.RequestID, &l.RecipientEmail, &l.Subject, &l.Status,
			&l.ErrorMessage, &l.SentAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
