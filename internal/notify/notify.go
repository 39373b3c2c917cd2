// Package notify delivers customer emails. Implementations can be swapped
// (SMTP, SendGrid, log-only) without changing callers.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/salon-booking/internal/config"
)

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Body    string // plain-text alternative, optional
}

// Sender dispatches exactly one email per call. A nil error means the
// transport accepted the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the email and reports success.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email transport disabled; logging message", "to", msg.To, "subject", msg.Subject)
	return nil
}

// New builds the sender selected by cfg.Provider.
func New(cfg config.Email, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case config.EmailProviderSMTP:
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			FromName: cfg.FromName,
		}), nil
	case config.EmailProviderSendGrid:
		s := NewSendGridSender(SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.From,
			FromName:  cfg.FromName,
		}, logger)
		if s == nil {
			return nil, fmt.Errorf("notify: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return s, nil
	case config.EmailProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("notify: unknown provider %q", cfg.Provider)
	}
}
