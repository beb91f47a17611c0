package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/logging"
)

// Sender delivers a rendered message. smtpSender is the production implementation.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Service struct {
	sender      Sender
	frontendURL string
	logger      *logging.Logger
}

// NewService returns a mailer for cfg. With no SMTP host configured, messages
// are written to the log instead of being sent.
func NewService(cfg config.EmailConfig, logger *logging.Logger) *Service {
	var sender Sender = logSender{logger: logger}
	if cfg.SMTPHost != "" {
		sender = &smtpSender{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			user:     cfg.SMTPUser,
			password: cfg.SMTPPassword,
			from:     cfg.FromAddress,
		}
	}

	return NewServiceWithSender(sender, cfg.FrontendURL, logger)
}

func NewServiceWithSender(sender Sender, frontendURL string, logger *logging.Logger) *Service {
	return &Service{
		sender:      sender,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// SendPasswordResetEmail mails a reset link. It is called from a goroutine.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, name, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))

	body, err := renderPasswordReset(name, resetLink)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sender.Send(ctx, toEmail, "Reset your Taskdesk password", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("password reset email sent")
	return nil
}

type smtpSender struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func (s *smtpSender) Send(_ context.Context, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.from, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

type logSender struct {
	logger *logging.Logger
}

func (l logSender) Send(_ context.Context, to, subject, htmlBody string) error {
	l.logger.Warn("SMTP not configured, email not sent", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}

var passwordResetTemplate = template.Must(template.New("passwordReset").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0F766E; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
        .button { display: inline-block; background-color: #0F766E; color: white !important; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Taskdesk</h1>
    </div>
    <div class="content">
        <h2>Hi {{.Name}},</h2>
        <p>Someone asked to reset the password for your Taskdesk account. Use the button below to choose a new one.</p>

        <a href="{{.ResetLink}}" class="button">Reset Password</a>

        <p>Or copy and paste this link into your browser:</p>
        <p style="word-break: break-all;">{{.ResetLink}}</p>

        <p>Signing in with the new password signs you out everywhere else.</p>
    </div>
    <div class="footer">
        <p>This link expires in 1 hour. If you did not ask for it, ignore this email.</p>
    </div>
</body>
</html>
`))

func renderPasswordReset(name, resetLink string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name      string
		ResetLink string
	}{
		Name:      name,
		ResetLink: resetLink,
	}

	if err := passwordResetTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
