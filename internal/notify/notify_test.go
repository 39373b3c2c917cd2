package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/salon-booking/internal/config"
	"github.com/Shivanand-hulikatti/salon-booking/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "salon@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "salon@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Salon", sender.fromName)
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), Message{To: "ann@example.com", Subject: "Test"})
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	sender := NewLogSender(logging.Discard())
	assert.NoError(t, sender.Send(context.Background(), Message{To: "ann@example.com", Subject: "Test"}))
}

func TestNewSelectsProvider(t *testing.T) {
	logger := logging.Discard()

	s, err := New(config.Email{Provider: config.EmailProviderLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = New(config.Email{Provider: config.EmailProviderSMTP, SMTPHost: "smtp.example.com", SMTPPort: "587", Username: "salon@example.com"}, logger)
	require.NoError(t, err)
	smtpSender, ok := s.(*SMTPSender)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com:587", smtpSender.addr)
	assert.Equal(t, "salon@example.com", smtpSender.from)

	_, err = New(config.Email{Provider: config.EmailProviderSendGrid}, logger)
	assert.Error(t, err)

	_, err = New(config.Email{Provider: "fax"}, logger)
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	raw := string(buildMessage("Salon <salon@example.com>", Message{
		To:      "ann@example.com",
		ToName:  "Ann Lee",
		Subject: "Appointment Confirmed",
		HTML:    "<p>Dear Ann Lee</p>",
	}, now))

	assert.Contains(t, raw, "To: \"Ann Lee\" <ann@example.com>\r\n")
	assert.Contains(t, raw, "Subject: Appointment Confirmed\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=utf-8\r\n\r\n<p>Dear Ann Lee</p>")
	assert.True(t, strings.HasPrefix(raw, "From: Salon <salon@example.com>\r\n"))
}

func TestSMTPSenderFailsFastOnCancelledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, Message{To: "ann@example.com", Subject: "x", HTML: "<p>x</p>"})
	assert.Error(t, err)
}
