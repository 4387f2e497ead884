package notify

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/tickerwatch/internal/types"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
}

// Enabled reports whether enough is configured to send mail.
func (c EmailConfig) Enabled() bool {
	return c.SMTPServer != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

// Dialer sends a composed message.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers alerts via SMTP.
type EmailSender struct {
	cfg    EmailConfig
	dialer Dialer
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second
	return &EmailSender{cfg: cfg, dialer: dialer}
}

// Send delivers an email with HTML body and plain text fallback.
func (s *EmailSender) Send(_ context.Context, alert types.Alert) error {
	msg, err := RenderAlertHTML(alert)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(s.compose(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s (Subject: %s): %w", s.cfg.ToEmail, msg.Subject, err)
	}
	return nil
}

func (s *EmailSender) compose(msg RenderedMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}
	return m
}
