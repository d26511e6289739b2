package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// Message is one outbound email. From is optional and overrides the
// configured sender address. BodyHTML is optional; when empty an HTML
// alternative is rendered from the plain-text body.
type Message struct {
	From     string
	To       string
	Subject  string
	Body     string
	BodyHTML string
}

// Sender delivers email over SMTP.
type Sender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSender creates an SMTP sender.
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers one message. A fresh client is dialed per message; the worker
// sends at low volume so connection reuse is not worth the state.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	from := msg.From
	if from == "" {
		from = s.cfg.FromAddress
	}
	if err := m.FromFormat(s.cfg.FromName, from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	subject := msg.Subject
	if subject == "" {
		subject = "No subject"
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	html := msg.BodyHTML
	if html == "" {
		html = RenderHTML(subject, msg.Body)
	}
	m.AddAlternativeString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	s.logger.Debug("email sent", zap.String("to", msg.To), zap.String("subject", subject))
	return nil
}
