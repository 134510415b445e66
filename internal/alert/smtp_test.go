package alert

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

// fakeSender records messages. With block set it waits for ctx like a relay
// that never answers.
type fakeSender struct {
	sent  []*mail.Msg
	err   error
	block bool
}

func (f *fakeSender) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.sent = append(f.sent, messages...)
	return f.err
}

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:       "mail.example.org",
		Port:       587,
		Username:   "etl",
		Password:   "secret",
		Sender:     "etl@example.org",
		Recipients: []string{"ops@example.org", "gis@example.org"},
		Subject:    "UNOSAT HDX ETL failure",
	}
}

func testMailer(t *testing.T, cfg config.SMTPConfig, s *fakeSender) *Mailer {
	t.Helper()
	m, err := NewMailer(cfg)
	require.NoError(t, err)
	m.client = s
	m.now = func() time.Time { return time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC) }
	return m
}

func render(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestMailer_Notify(t *testing.T) {
	s := &fakeSender{}
	m := testMailer(t, testSMTPConfig(), s)

	require.NoError(t, m.Notify(context.Background(), "", "no db results found\nrun aborted"))
	require.Len(t, s.sent, 1)

	rcpts, err := s.sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.org", "gis@example.org"}, rcpts)

	raw := render(t, s.sent[0])
	assert.Contains(t, raw, "Subject: UNOSAT HDX ETL failure")
	assert.Contains(t, raw, "Date: Fri, 15 Mar 2024 06:00:00 +0000")
	assert.Contains(t, raw, "etl@example.org")
	assert.Contains(t, raw, "no db results found")
}

func TestMailer_NotifyCustomSubject(t *testing.T) {
	s := &fakeSender{}
	m := testMailer(t, testSMTPConfig(), s)

	require.NoError(t, m.Notify(context.Background(), "custom", "body"))
	require.Len(t, s.sent, 1)
	assert.Contains(t, render(t, s.sent[0]), "Subject: custom")
}

func TestNewMailer_WithoutAuth(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.Username = ""
	cfg.Password = ""

	m, err := NewMailer(cfg)
	require.NoError(t, err)
	assert.NotNil(t, m.client)
}

func TestMailer_NotifySendError(t *testing.T) {
	s := &fakeSender{err: errors.New("connection refused")}
	m := testMailer(t, testSMTPConfig(), s)

	err := m.Notify(context.Background(), "", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail.example.org:587")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMailer_NotifyInvalidSender(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.Sender = "not an address"
	s := &fakeSender{}
	m := testMailer(t, cfg, s)

	require.Error(t, m.Notify(context.Background(), "", "body"))
	assert.Empty(t, s.sent)
}

func TestMailer_NotifyStopsAtDeadline(t *testing.T) {
	m := testMailer(t, testSMTPConfig(), &fakeSender{block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Notify(ctx, "", "body")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
