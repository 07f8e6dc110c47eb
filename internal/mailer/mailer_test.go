package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage(Config{From: "desk@example.com"}, Message{
		To:      "buyer@example.com",
		Subject: "Account authenticated\r\nBcc: someone@example.com",
		Body:    "hello",
	})
	require.NoError(t, err)

	recipients, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"buyer@example.com"}, recipients)
	assert.Equal(t, []string{"Account authenticatedBcc: someone@example.com"}, m.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMessageRejectsBadAddresses(t *testing.T) {
	_, err := buildMessage(Config{From: "desk@example.com"}, Message{To: " "})
	require.Error(t, err)

	_, err = buildMessage(Config{From: "not an address"}, Message{To: "buyer@example.com"})
	require.Error(t, err)
}

func TestSendWithoutHost(t *testing.T) {
	err := NewSMTP(Config{}).Send(context.Background(), Message{To: "buyer@example.com"})
	require.ErrorIs(t, err, ErrNotConfigured)
}
