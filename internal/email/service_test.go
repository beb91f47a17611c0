package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/logging"
)

type recordingSender struct {
	to, subject, body string
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return nil
}

func TestSendPasswordResetEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, "https://app.example.com/", logging.Discard())

	err := svc.SendPasswordResetEmail(context.Background(), "ana@x.com", "Ana <script>", "tok+en/=")
	require.NoError(t, err)

	assert.Equal(t, "ana@x.com", sender.to)
	assert.Equal(t, "Reset your Taskdesk password", sender.subject)
	assert.Contains(t, sender.body, "https://app.example.com/reset-password?token=tok%2Ben%2F%3D")
	assert.Contains(t, sender.body, "Hi Ana &lt;script&gt;,")
	assert.NotContains(t, sender.body, "<script>")
}

func TestNewService_LogsWithoutSMTP(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter(&buf, false)

	svc := NewService(config.EmailConfig{FrontendURL: "http://localhost:5173"}, logger)
	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "ana@x.com", "Ana", "abc"))

	assert.Contains(t, buf.String(), "SMTP not configured")
}
