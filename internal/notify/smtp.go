package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"net/smtp"
	"os"
)

// SMTPNotifier delivers notifications as HTML mail over SMTP.
type SMTPNotifier struct {
	Host     string
	Port     string
	From     string
	Password string
}

// NewSMTPNotifier builds a notifier from SMTP_HOST, SMTP_PORT, SMTP_FROM and
// SMTP_PASS environment variables. Returns nil (no error) when SMTP_HOST is
// unset, so callers can fall back to a log-only notifier.
func NewSMTPNotifier() (*SMTPNotifier, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, nil
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "25"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		return nil, fmt.Errorf("SMTP_FROM not set")
	}

	return &SMTPNotifier{
		Host:     host,
		Port:     port,
		From:     from,
		Password: os.Getenv("SMTP_PASS"),
	}, nil
}

// Send renders and delivers the message.
func (s *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}

	body, err := Render(msg)
	if err != nil {
		return err
	}

	data := []byte(
		"From: " + s.From + "\r\n" +
			"To: " + msg.To + "\r\n" +
			"Subject: " + msg.Subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	addr := s.Host + ":" + s.Port
	var auth smtp.Auth
	if s.Password != "" {
		auth = smtp.PlainAuth("", s.From, s.Password, s.Host)
	}

	if err := smtp.SendMail(addr, auth, s.From, []string{msg.To}, data); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// LogNotifier logs notifications instead of delivering them. Used when no
// SMTP configuration is present.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg Message) error {
	slog.Info("notification (mail disabled)",
		"to", msg.To, "subject", msg.Subject, "actor", msg.Actor)
	return nil
}
