package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// Mailer sends one HTML email. Settings come from the establishment
// being processed, not from global config — each tenant brings its own
// SMTP account.
type Mailer interface {
	Send(ctx context.Context, cfg domain.EmailSettings, toEmail, toName, subject, htmlBody string) error
}

// SMTPMailer sends email over plain SMTP with optional auth.
type SMTPMailer struct{}

// NewSMTPMailer returns a Mailer backed by net/smtp.
func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(ctx context.Context, cfg domain.EmailSettings, toEmail, toName, subject, htmlBody string) error {
	if !cfg.Configured {
		return errors.New("email settings not configured")
	}
	if toEmail == "" {
		return errors.New("recipient email is empty")
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	msg := buildMIME(cfg.FromName, cfg.FromEmail, toName, toEmail, subject, htmlBody)

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}

	// Run the blocking SMTP call in a goroutine so we respect ctx cancellation.
	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		done <- result{err: smtp.SendMail(addr, auth, cfg.FromEmail, []string{toEmail}, msg)}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("smtp send to %s: %w", toEmail, res.err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email send to %s timed out: %w", toEmail, ctx.Err())
	}
}

func buildMIME(fromName, fromEmail, toName, toEmail, subject, body string) []byte {
	msg := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s <%s>\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		fromName, fromEmail, toName, toEmail, subject, body,
	)
	return []byte(msg)
}
