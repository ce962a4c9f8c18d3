// Package mailer sends transactional HTML email.
package mailer

import (
	"context"
	"log"
	"strings"
)

// Message is one outgoing email. From may be empty to use the sender default.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a Mailer. Resend wins over SMTP; with
// neither configured messages are only logged.
type Config struct {
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
}

// New returns the Mailer described by cfg.
func New(cfg Config) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		log.Println("Mailer: using Resend API")
		return NewResendMailer(cfg.ResendAPIKey, cfg.From)
	case cfg.SMTPHost != "":
		log.Printf("Mailer: using SMTP %s:%d", cfg.SMTPHost, cfg.SMTPPort)
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From)
	default:
		log.Println("Mailer: no email transport configured, emails will only be logged")
		return LogMailer{}
	}
}

// LogMailer logs messages instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("Email not sent (transport not configured). To: %s Subject: %q", strings.Join(msg.To, ", "), msg.Subject)
	return nil
}
