package alerts

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/config"
)

// Mailer delivers one rendered email.
type Mailer interface {
	Send(ctx context.Context, env EmailEnvelope) error
}

// NewMailer returns an SMTP mailer when SMTP is fully configured and a
// logging mailer otherwise.
func NewMailer(cfg config.SMTP, log logrus.FieldLogger) Mailer {
	if !cfg.Configured() {
		log.Warn("smtp not configured; notification emails will only be logged")
		return LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

// LogMailer writes the envelope to the log instead of sending it.
type LogMailer struct {
	log logrus.FieldLogger
}

func (m LogMailer) Send(_ context.Context, env EmailEnvelope) error {
	m.log.WithFields(logrus.Fields{"to": env.To, "subject": env.Subject}).Info("email (not sent)")
	return nil
}

// SMTPMailer sends plain text email over implicit TLS.
type SMTPMailer struct {
	cfg config.SMTP
}

func (m *SMTPMailer) Send(ctx context.Context, env EmailEnvelope) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	d := tls.Dialer{Config: &tls.Config{ServerName: m.cfg.Host}}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(env.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write([]byte(m.message(env))); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}

func (m *SMTPMailer) message(env EmailEnvelope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", env.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", env.Subject)
	if m.cfg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", m.cfg.ReplyTo)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n" + env.Body + "\r\n")
	return b.String()
}
