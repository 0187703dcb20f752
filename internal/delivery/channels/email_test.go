package channels

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestInviteLink(t *testing.T) {
	assert.Equal(t, "/setup?token=abc", InviteLink("", "abc"))
	assert.Equal(t, "https://app.example.com/setup?token=abc", InviteLink("https://app.example.com/", "abc"))
	assert.Equal(t, "https://app.example.com/setup?token=abc", InviteLink("https://app.example.com", "abc"))
}

func TestBuildInviteEmail(t *testing.T) {
	subject, body := BuildInviteEmail(InviteMessage{
		BranchID:    "b1",
		Roles:       []string{"staff", "admin"},
		StudentName: "Ana",
		BatchName:   "Morning",
		Message:     "Welcome aboard",
	}, "/setup?token=t")

	assert.Equal(t, "You're invited to SHDS - b1", subject)
	lines := strings.Split(body, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "Hello,", lines[0])
	assert.Equal(t, "You've been invited to access the SHDS dashboard for branch b1.", lines[2])
	assert.Equal(t, "Welcome aboard", lines[3])
	assert.Equal(t, "Student: Ana", lines[4])
	assert.Equal(t, "Batch: Morning", lines[5])
	assert.Contains(t, body, "Roles: staff, admin")
	assert.Contains(t, body, "Finish setup here: /setup?token=t")

	_, plain := BuildInviteEmail(InviteMessage{BranchID: "b1", Roles: []string{"staff"}}, "x")
	assert.NotContains(t, plain, "Student:")
	assert.NotContains(t, plain, "Batch:")
}

func TestSendInvite_UnconfiguredOnlyLogs(t *testing.T) {
	m := NewInviteMailer(EmailConfig{CallbackBaseURL: "https://app"})
	called := false
	m.send = func(*gomail.Message) error { called = true; return nil }

	link, err := m.SendInvite(context.Background(), InviteMessage{Email: "a@x.com", BranchID: "b1", Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "https://app/setup?token=tok", link)
	assert.False(t, called)
}

func TestSendInvite_Configured(t *testing.T) {
	m := NewInviteMailer(EmailConfig{Host: "smtp.local", Port: 2525, Sender: "noreply@x.com", ReplyTo: "help@x.com"})
	var sent *gomail.Message
	m.send = func(msg *gomail.Message) error { sent = msg; return nil }

	link, err := m.SendInvite(context.Background(), InviteMessage{Email: "a@x.com", BranchID: "b1", Roles: []string{"staff"}, Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "/setup?token=tok", link)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"a@x.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"help@x.com"}, sent.GetHeader("Reply-To"))

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
	assert.Equal(t, []string{"You're invited to SHDS - b1"}, sent.GetHeader("Subject"))

	m.send = func(*gomail.Message) error { return errors.New("smtp down") }
	link, err = m.SendInvite(context.Background(), InviteMessage{Email: "a@x.com", BranchID: "b1", Token: "tok2"})
	assert.Error(t, err)
	assert.Equal(t, "/setup?token=tok2", link)
}
