package mailer

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/middleware"
	"github.com/campus-events/backend/pkg/response"
)

// Handler handles the direct email endpoints.
type Handler struct {
	sender *Sender
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a mailer handler.
func NewHandler(sender *Sender, repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{sender: sender, repo: repo, logger: logger}
}

// SendRequest is the body for POST /email/send and /email/test-send.
type SendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    string `json:"html"`
}

// Send handles POST /email/send. The sender address is the caller's own
// account email, falling back to the configured from-address.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.To == "" || req.Body == "" {
		response.BadRequest(c, "Missing fields")
		return
	}
	to := req.To
	from := ""
	if v, ok := c.Get(middleware.ContextUserEmail); ok {
		from, _ = v.(string)
	}
	subject := req.Subject
	if subject == "" {
		subject = "No subject"
	}

	logID, err := h.repo.LogPending(c.Request.Context(), nil, to, subject)
	if err != nil {
		h.logger.Warn("log email", zap.Error(err))
	}

	sendErr := h.sender.Send(c.Request.Context(), Message{
		From:     from,
		To:       to,
		Subject:  subject,
		Body:     req.Body,
		BodyHTML: req.HTML,
	})
	if sendErr != nil {
		if err == nil {
			if markErr := h.repo.MarkFailed(c.Request.Context(), logID, sendErr); markErr != nil {
				h.logger.Warn("mark email failed", zap.Error(markErr))
			}
		}
		h.logger.Error("send email", zap.String("to", to), zap.Error(sendErr))
		response.Internal(c, "failed to send email")
		return
	}
	if err == nil {
		if markErr := h.repo.MarkSent(c.Request.Context(), logID); markErr != nil {
			h.logger.Warn("mark email sent", zap.Error(markErr))
		}
	}
	response.OK(c, gin.H{"message": "Email sent", "to": to})
}

// History handles GET /email/log/:request_id, returning the delivery attempts
// recorded for one publication request, newest first.
func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		response.BadRequest(c, "Invalid request id")
		return
	}
	logs, err := h.repo.RecentForRequest(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list email log", zap.Error(err))
		response.Internal(c, "failed to list email log")
		return
	}
	response.OK(c, gin.H{"items": logs})
}

// TestSend handles POST /email/test-send, delivering a canned message so SMTP
// settings can be verified without a real notification.
func (h *Handler) TestSend(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.To == "" {
		response.BadRequest(c, "Missing fields")
		return
	}
	err := h.sender.Send(c.Request.Context(), Message{
		From:    req.From,
		To:      req.To,
		Subject: "Test message",
		Body:    "This is a test message confirming outbound email is configured correctly.",
	})
	if err != nil {
		h.logger.Error("test send", zap.String("to", req.To), zap.Error(err))
		response.Internal(c, "failed to send email")
		return
	}
	response.OK(c, gin.H{"message": "Test email sent", "to": req.To})
}
