// Package email sends transactional mail. Services depend on the Sender
// interface; main wires the Resend implementation when an API key is set.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/resend/resend-go/v3"
)

// Sender delivers account emails.
type Sender interface {
	// SendPasswordReset mails a link carrying the plaintext reset token.
	// Only the token's hash is stored server-side.
	SendPasswordReset(ctx context.Context, toEmail, username, token string) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	ttlMin    int
}

// NewResendSender builds a Sender on the Resend API. fromEmail must belong to
// a domain verified in Resend. appURL is where the reset page lives.
func NewResendSender(apiKey, fromEmail, appURL string, tokenTTLMinutes int) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
		ttlMin:    tokenTTLMinutes,
	}
}

func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, username, token string) error {
	html, err := renderReset(resetData{
		Username:   username,
		Link:       ResetLink(s.appURL, token),
		TTLMinutes: s.ttlMin,
	})
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Echoing Hearts <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Reset your Echoing Hearts password",
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetLink is the URL the user follows to pick a new password.
func ResetLink(appURL, token string) string {
	return appURL + "/reset-password?token=" + url.QueryEscape(token)
}

type resetData struct {
	Username   string
	Link       string
	TTLMinutes int
}

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;background-color:#fff0f5;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="padding:40px 0;">
    <tr><td align="center">
      <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:12px;padding:40px;">
        <tr><td>
          <h1 style="color:#d63384;font-size:22px;margin:0 0 16px 0;">Echoing Hearts</h1>
          <p style="color:#333;font-size:15px;line-height:1.6;">Hi {{.Username}},</p>
          <p style="color:#333;font-size:15px;line-height:1.6;">
            Someone asked to reset the password for your account. If it was you, pick a new one below.
          </p>
          <p style="margin:24px 0;">
            <a href="{{.Link}}" style="background-color:#d63384;color:#fff;padding:12px 28px;border-radius:6px;text-decoration:none;font-weight:600;">Reset password</a>
          </p>
          <p style="color:#777;font-size:13px;line-height:1.6;">
            The link expires in {{.TTLMinutes}} minutes. If you did not ask for this, ignore this email.
          </p>
          <p style="color:#999;font-size:12px;word-break:break-all;">{{.Link}}</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

func renderReset(d resetData) (string, error) {
	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render reset email: %w", err)
	}
	return buf.String(), nil
}
