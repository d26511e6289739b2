package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/mailer"
	"github.com/campus-events/backend/pkg/queue"
)

// EmailProcessor consumes notification email jobs from the queue, delivers
// them over SMTP and records the outcome.
type EmailProcessor struct {
	jobs   *queue.Queue
	sender *mailer.Sender
	repo   *mailer.Repository
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(jobs *queue.Queue, sender *mailer.Sender, repo *mailer.Repository, logger *zap.Logger) *EmailProcessor {
	return &EmailProcessor{jobs: jobs, sender: sender, repo: repo, logger: logger}
}

// Run consumes jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) error {
	p.logger.Info("email worker started", zap.String("queue", queue.QueueEmails))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return ctx.Err()
		default:
		}

		job, _, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("dequeue", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		p.handle(ctx, job)
	}
}

func (p *EmailProcessor) handle(ctx context.Context, job *queue.Job) {
	if job.Type != queue.JobTypeEmail {
		p.logger.Warn("unknown job type", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// Malformed payloads are dropped; a retry cannot fix them.
		p.logger.Error("decode payload", zap.String("job_id", job.ID), zap.Error(err))
		return
	}

	requestID := payload.RequestID
	logID, logErr := p.repo.LogPending(ctx, &requestID, payload.RecipientEmail, payload.Subject)
	if logErr != nil {
		p.logger.Warn("log email", zap.String("job_id", job.ID), zap.Error(logErr))
	}

	err := p.sender.Send(ctx, mailer.Message{
		To:       payload.RecipientEmail,
		Subject:  payload.Subject,
		Body:     payload.Body,
		BodyHTML: payload.BodyHTML,
	})
	if err != nil {
		p.logger.Error("send notification",
			zap.String("job_id", job.ID),
			zap.String("recipient", payload.RecipientEmail),
			zap.Int("attempt", job.Attempt),
			zap.Error(err))
		if logErr == nil {
			if markErr := p.repo.MarkFailed(ctx, logID, err); markErr != nil {
				p.logger.Warn("mark email failed", zap.Error(markErr))
			}
		}
		if retryErr := p.jobs.Retry(ctx, job); retryErr != nil {
			p.logger.Error("retry job", zap.String("job_id", job.ID), zap.Error(retryErr))
		}
		return
	}

	if logErr == nil {
		if markErr := p.repo.MarkSent(ctx, logID); markErr != nil {
			p.logger.Warn("mark email sent", zap.Error(markErr))
		}
	}
	p.logger.Info("notification delivered",
		zap.String("job_id", job.ID),
		zap.String("recipient", payload.RecipientEmail))
}
