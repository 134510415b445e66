// Package alert mails run failures to the operators.
package alert

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
	"github.com/wneessen/go-mail"
)

// dialTimeout bounds connecting to the relay and each SMTP command.
const dialTimeout = 30 * time.Second

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends plain-text mail through an SMTP relay.
type Mailer struct {
	cfg    config.SMTPConfig
	client sender
	now    func() time.Time
}

// NewMailer creates a Mailer from the SMTP configuration. STARTTLS is used
// when the relay offers it; PLAIN auth only when a username is set.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(dialTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client for %s: %w", cfg.Host, err)
	}
	return &Mailer{cfg: cfg, client: client, now: time.Now}, nil
}

// Notify mails body to every configured recipient. The configured subject is
// used when subject is empty. Sending stops when ctx is done.
func (m *Mailer) Notify(ctx context.Context, subject, body string) error {
	if subject == "" {
		subject = m.cfg.Subject
	}
	msg, err := m.message(subject, body)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func (m *Mailer) message(subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return nil, fmt.Errorf("mail sender %q: %w", m.cfg.Sender, err)
	}
	if err := msg.To(m.cfg.Recipients...); err != nil {
		return nil, fmt.Errorf("mail recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(m.now())
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
