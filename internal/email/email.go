// Package email sends transactional mail: account verification and
// waitlist confirmations.
package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"brainbin/internal/config"
	"brainbin/internal/logger"
)

// Message is one outgoing mail.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Provider sends mail. Implementations must be safe for concurrent use.
type Provider interface {
	Send(msg Message) error
}

// SMTPProvider sends through a configured SMTP relay.
type SMTPProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{
		dialer:    gomail.NewDialer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUsername, cfg.Email.SMTPPassword),
		fromEmail: cfg.Email.FromEmail,
		fromName:  cfg.Email.FromName,
	}
}

func (p *SMTPProvider) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.fromEmail, p.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

// NoopProvider logs instead of sending. Used when SMTP is not configured
// so registration still works in development.
type NoopProvider struct{}

func (NoopProvider) Send(msg Message) error {
	logger.GetLogger().Info("Email sending skipped (no SMTP configured)",
		"to", msg.To, "subject", msg.Subject)
	return nil
}

// NewProvider picks SMTP when configured, otherwise the noop sender.
func NewProvider(cfg *config.Config) Provider {
	if cfg.Email.SMTPHost == "" {
		return NoopProvider{}
	}
	return NewSMTPProvider(cfg)
}

// VerificationEmail builds the account confirmation message.
func VerificationEmail(to, verifyURL string) Message {
	return Message{
		To:      to,
		Subject: "Confirm your Brain Bin account",
		HTMLBody: fmt.Sprintf(
			`<p>Welcome to Brain Bin!</p><p>Confirm your email by clicking <a href="%s">this link</a>.</p><p>If you did not sign up, ignore this message.</p>`,
			verifyURL),
	}
}

// WaitlistEmail builds the waitlist confirmation message.
func WaitlistEmail(to string) Message {
	return Message{
		To:       to,
		Subject:  "You're on the Brain Bin waitlist",
		HTMLBody: `<p>Thanks for your interest in Brain Bin!</p><p>We'll let you know as soon as a spot opens up.</p>`,
	}
}
