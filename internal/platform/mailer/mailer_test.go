package mailer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskraft/taskraft-api/internal/config"
)

func TestBuildInvitationEmail(t *testing.T) {
	t.Parallel()

	email := BuildInvitationEmail(InvitationEmailData{
		SiteName:   "Taskraft",
		GroupName:  "Design Team",
		InviteLink: "https://taskraft.example.com/invite?token=abc123",
	})

	assert.Equal(t, "You have been invited to Design Team on Taskraft", email.Subject)

	assert.Contains(t, email.TextBody, `"Design Team"`)
	assert.Contains(t, email.TextBody, "https://taskraft.example.com/invite?token=abc123")
	assert.Contains(t, email.TextBody, "safely ignore")

	assert.Contains(t, email.HTMLBody, "<strong>Design Team</strong>")
	assert.Contains(t, email.HTMLBody, `href="https://taskraft.example.com/invite?token=abc123"`)
	assert.Contains(t, email.HTMLBody, "Taskraft")
}

func TestBuildInvitationEmailEscapesHTML(t *testing.T) {
	t.Parallel()

	email := BuildInvitationEmail(InvitationEmailData{
		SiteName:   "Taskraft",
		GroupName:  `<script>alert("x")</script>`,
		InviteLink: "https://taskraft.example.com/invite?token=abc",
	})

	assert.NotContains(t, email.HTMLBody, `<script>alert("x")</script>`)
	assert.Contains(t, email.HTMLBody, "&lt;script&gt;")
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	message := string(buildMessage("noreply@taskraft.example.com", Email{
		To:       "carol@example.com",
		Subject:  "You have been invited",
		TextBody: "plain body",
		HTMLBody: "<p>html body</p>",
	}))

	assert.Contains(t, message, "From: noreply@taskraft.example.com\r\n")
	assert.Contains(t, message, "To: carol@example.com\r\n")
	assert.Contains(t, message, "Subject: You have been invited\r\n")
	assert.Contains(t, message, "multipart/alternative")
	assert.Contains(t, message, "text/plain")
	assert.Contains(t, message, "text/html")
	assert.Contains(t, message, "plain body")
	assert.Contains(t, message, "<p>html body</p>")

	// The plain part comes before the HTML part, least-preferred first.
	assert.Less(t,
		strings.Index(message, "plain body"),
		strings.Index(message, "<p>html body</p>"))
}

func TestNewSMTPMailer(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("requires host and sender", func(t *testing.T) {
		t.Parallel()
		_, err := NewSMTPMailer(config.MailConfig{}, log)
		assert.Error(t, err)

		_, err = NewSMTPMailer(config.MailConfig{Host: "smtp.example.com", Port: 587}, log)
		assert.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		m, err := NewSMTPMailer(config.MailConfig{
			Host: "smtp.example.com",
			Port: 587,
			From: "noreply@taskraft.example.com",
		}, log)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}

func TestLogMailer(t *testing.T) {
	t.Parallel()
	m := NewLogMailer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := m.Send(context.Background(), Email{
		To:      "carol@example.com",
		Subject: "hi",
	})
	assert.NoError(t, err)
}
