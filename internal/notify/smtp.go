package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds configuration for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends HTML email through an SMTP relay, upgrading with STARTTLS
// when offered and authenticating with PLAIN when a username is set.
type SMTPSender struct {
	host     string
	addr     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	host := strings.TrimSpace(cfg.Host)
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = strings.TrimSpace(cfg.Username)
	}
	if from == "" {
		from = "no-reply@salon.local"
	}
	return &SMTPSender{
		host:     host,
		addr:     net.JoinHostPort(host, strings.TrimSpace(cfg.Port)),
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
		fromName: cfg.FromName,
	}
}

// Send delivers msg. The context deadline bounds the whole SMTP conversation.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("notify: dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("notify: smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("notify: starttls: %w", err)
		}
	}
	if s.username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("notify: smtp auth: %w", err)
		}
	}
	if err := c.Mail(s.from); err != nil {
		return fmt.Errorf("notify: smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("notify: smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("notify: smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(s.fromAddress(), msg, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("notify: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notify: finish message: %w", err)
	}
	return c.Quit()
}

func (s *SMTPSender) fromAddress() string {
	if s.fromName == "" {
		return s.from
	}
	return (&mail.Address{Name: s.fromName, Address: s.from}).String()
}

// buildMessage renders a minimal RFC 5322 message with an HTML body.
func buildMessage(from string, msg Message, now time.Time) []byte {
	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}
	body := msg.HTML
	contentType := "text/html; charset=utf-8"
	if body == "" {
		body = msg.Body
		contentType = "text/plain; charset=utf-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n\r\n", contentType)
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

var _ Sender = (*SMTPSender)(nil)
