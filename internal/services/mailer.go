package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// Message is one outbound transactional email.
type Message struct {
	To       string
	Subject  string
	Body     string
	Language string
}

// Mailer dispatches a single transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer sends through the Resend API, wrapping the plain-text body in
// the branded HTML template.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a mailer backed by the Resend API.
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    WrapEmailHTML(msg.Body),
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// LogMailer is the local/dev mode: nothing is dispatched, the message is only
// logged and the send simulated.
type LogMailer struct{}

// NewLogMailer creates the logging mailer.
func NewLogMailer() LogMailer {
	return LogMailer{}
}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("📧 [LOCAL TEST] Would send email to: %s", msg.To)
	log.Printf("Subject: %s", msg.Subject)
	log.Printf("Body: %s", msg.Body)
	return nil
}

// WrapEmailHTML embeds a plain-text body in the fixed branded wrapper used
// for every outbound email.
func WrapEmailHTML(body string) string {
	escaped := html.EscapeString(body)
	return strings.ReplaceAll(strings.ReplaceAll(emailWrapper, "{{body}}", escaped),
		"{{year}}", fmt.Sprintf("%d", time.Now().Year()))
}

const emailWrapper = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff;">

    <!-- Header with Gradient -->
    <div style="background: linear-gradient(90deg, #2596BE 0%, #102430 100%); padding: 40px 20px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 32px; font-weight: bold;">OSO</h1>
      <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0; font-size: 14px;">Human Resources</p>
    </div>

    <!-- Content -->
    <div style="padding: 40px 30px; line-height: 1.8; color: #374151; font-size: 15px;">
      <div style="white-space: pre-line;">
{{body}}
      </div>
    </div>

    <!-- Footer -->
    <div style="background-color: #f9fafb; padding: 30px; text-align: center; border-top: 1px solid #e5e7eb;">
      <p style="margin: 0 0 10px 0; color: #9ca3af; font-size: 13px;">
        Diese E-Mail wurde automatisch generiert.
      </p>
      <p style="margin: 0; color: #9ca3af; font-size: 13px;">
        © {{year}} OSO. Alle Rechte vorbehalten.
      </p>
    </div>

  </div>
</body>
</html>`
