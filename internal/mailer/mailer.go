// Package mailer delivers transactional mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// Config holds SMTP connection parameters.
type Config struct {
	Host     string
	Port     int
	From     string
	FromName string
	Username string
	Password string
	TLS      bool
}

// Message is a plain-text mail to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp host not configured")

// SMTP dials a fresh connection per message.
type SMTP struct {
	cfg Config
}

// NewSMTP constructs an SMTP sender.
func NewSMTP(cfg Config) *SMTP {
	return &SMTP{cfg: cfg}
}

// Send delivers msg.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	m, err := buildMessage(s.cfg, msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("mailer: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

func (s *SMTP) options() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	return opts
}

var headerStripper = strings.NewReplacer("\r", "", "\n", "")

func buildMessage(cfg Config, msg Message) (*mail.Msg, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, errors.New("mailer: recipient required")
	}
	m := mail.NewMsg()
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Catalog Desk"
	}
	if err := m.FromFormat(fromName, cfg.From); err != nil {
		return nil, fmt.Errorf("mailer: set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mailer: set to: %w", err)
	}
	m.Subject(headerStripper.Replace(msg.Subject))
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
