package server

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jrsteele09/go-portfolio/internal/config"
	"github.com/jrsteele09/go-portfolio/internal/errors"
)

type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// Mailer delivers contact form submissions.
type Mailer interface {
	Send(ctx context.Context, msg ContactMessage) error
}

type SMTPMailer struct {
	host      string
	port      string
	account   string
	password  string
	recipient string
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer returns errors.ErrMissingConfig when the account, password or recipient is unset.
func NewSMTPMailer(cfg config.EnvConfig) (*SMTPMailer, error) {
	m := &SMTPMailer{
		host:      cfg.GetSmtpHost(),
		port:      cfg.GetSmtpPort(),
		account:   cfg.GetSmtpAccount(),
		password:  cfg.GetSmtpPassword(),
		recipient: cfg.GetSmtpRecipient(),
	}
	if m.account == "" || m.password == "" || m.recipient == "" {
		return nil, errors.Wrapf(errors.ErrMissingConfig, "smtp")
	}
	return m, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := fmt.Sprintf("New contact form submission from your portfolio:\r\n\r\nName: %s\r\nEmail: %s\r\nMessage:\r\n%s\r\n",
		msg.Name, msg.Email, msg.Message)

	raw := []byte("To: " + m.recipient + "\r\n" +
		"Subject: Portfolio Contact: " + headerSafe(msg.Name) + "\r\n" +
		"From: " + m.account + "\r\n" +
		"Reply-To: " + headerSafe(msg.Email) + "\r\n" +
		"\r\n" + body)

	auth := smtp.PlainAuth("", m.account, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.account, []string{m.recipient}, raw); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

// headerSafe strips line breaks so form input cannot add mail headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
