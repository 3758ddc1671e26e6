package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/taskraft/taskraft-api/internal/config"
)

// ErrSendFailed indicates the SMTP server rejected or dropped the message.
var ErrSendFailed = errors.New("failed to send email")

// Email is a single outbound message with both plain-text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends emails. Implementations must be safe for concurrent use.
type Mailer interface {
	// Send delivers the email. It blocks until the message is handed off
	// to the mail server or the context is cancelled.
	Send(ctx context.Context, email Email) error
}

// SMTPMailer sends email through a plain SMTP relay.
type SMTPMailer struct {
	config config.MailConfig
	logger *slog.Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer that delivers through the configured
// SMTP host.
func NewSMTPMailer(cfg config.MailConfig, log *slog.Logger) (*SMTPMailer, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Host == "" {
		return nil, errors.New("mail host cannot be empty")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address cannot be empty")
	}
	return &SMTPMailer{
		config: cfg,
		logger: log.With(slog.String("component", "smtp_mailer")),
	}, nil
}

// Send implements Mailer.Send.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	msg := buildMessage(m.config.From, email)
	if err := smtp.SendMail(addr, auth, m.config.From, []string{email.To}, msg); err != nil {
		m.logger.ErrorContext(ctx, "SMTP delivery failed",
			slog.String("error", err.Error()),
			slog.String("host", m.config.Host))
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	m.logger.DebugContext(ctx, "email sent",
		slog.String("subject", email.Subject))
	return nil
}

// buildMessage assembles a multipart/alternative MIME message so clients can
// pick between the text and HTML bodies.
func buildMessage(from string, email Email) []byte {
	const boundary = "taskraft-alt-boundary"

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(email.TextBody)
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(email.HTMLBody)
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// LogMailer writes emails to the log instead of sending them. It stands in
// for a real mailer in development environments without an SMTP relay.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a mailer that logs instead of sending.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{logger: log.With(slog.String("component", "log_mailer"))}
}

// Send implements Mailer.Send by logging the message.
func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.logger.InfoContext(ctx, "email delivery skipped (no SMTP host configured)",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("text_body", email.TextBody))
	return nil
}
