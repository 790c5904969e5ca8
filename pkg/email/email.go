package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
}

const (
	AdminSubjectPrefix = "New Contact Form Submission: "
	VisitorSubject     = "Thank you for reaching out!"
	TestSubject        = "SMTP Configuration Test - Portfolio"
)

// templateData is what every template sees.
type templateData struct {
	ContactEmailData
	OwnerName string
	SentAt    string
}

const adminHTML = `<div style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 8px 8px 0 0; text-align: center;">
    <h2 style="color: #fff; margin: 0;">New Contact Form Submission</h2>
  </div>
  <div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; border: 1px solid #e0e0e0; border-top: none;">
    <p><strong>From:</strong> {{.SenderName}}</p>
    <p><strong>Email:</strong> <a href="mailto:{{.SenderEmail}}" style="color: #667eea; text-decoration: none;">{{.SenderEmail}}</a></p>
    <p><strong>Subject:</strong> {{.Subject}}</p>
    <hr style="border: none; border-top: 2px solid #e0e0e0; margin: 25px 0;" />
    <div style="background-color: #fff; padding: 15px; border-left: 4px solid #667eea; border-radius: 4px;">
      <p style="margin: 0; white-space: pre-wrap; color: #333; line-height: 1.8;">{{.Message}}</p>
    </div>
  </div>
  <div style="margin-top: 20px; padding: 15px; background-color: #f0f0f0; border-radius: 8px; text-align: center; font-size: 12px; color: #999;">
    <p style="margin: 0;">This email was sent from your portfolio website contact form.</p>
    <p style="margin: 5px 0 0 0;">Sent on: {{.SentAt}}</p>
  </div>
</div>`

const adminText = `New Contact Form Submission

From: {{.SenderName}}
Email: {{.SenderEmail}}
Subject: {{.Subject}}

Message:
{{.Message}}

---
This email was sent from your portfolio website contact form.
Sent on: {{.SentAt}}
`

const visitorHTML = `<div style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 8px 8px 0 0; text-align: center;">
    <h2 style="color: #fff; margin: 0;">Thank you, {{.SenderName}}!</h2>
  </div>
  <div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; border: 1px solid #e0e0e0; border-top: none;">
    <p style="color: #333; font-size: 16px;">Thanks for getting in touch! I've received your message and will get back to you soon.</p>
    <div style="background-color: #fff; padding: 20px; border-left: 4px solid #667eea; border-radius: 4px; margin: 20px 0;">
      <p style="margin: 0 0 10px 0; color: #999; font-size: 14px;"><strong>Your Message:</strong></p>
      <p style="margin: 0; white-space: pre-wrap; color: #333; line-height: 1.8;">{{.Message}}</p>
    </div>
    <p style="color: #666; font-size: 15px; margin: 20px 0;">I typically respond within 24-48 hours.</p>
    <p style="color: #333; margin-top: 30px;">Best regards,<br><strong style="font-size: 18px;">{{.OwnerName}}</strong></p>
  </div>
  <div style="margin-top: 20px; padding: 15px; background-color: #f0f0f0; border-radius: 8px; text-align: center; font-size: 12px; color: #999;">
    <p style="margin: 0;">This is an automated response. Please don't reply to this email.</p>
  </div>
</div>`

const visitorText = `Hi {{.SenderName}},

Thanks for reaching out! I've received your message and will reply soon.

Your message:
{{.Message}}

I typically respond within 24-48 hours.

Best regards,
{{.OwnerName}}
`

const testHTML = `<div style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; padding: 30px; text-align: center;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 8px; color: white;">
    <h2 style="margin: 0; font-size: 24px;">SMTP Configured Successfully!</h2>
    <p style="margin: 10px 0 0 0; font-size: 16px;">Your email configuration is working properly.</p>
  </div>
  <p style="margin-top: 20px; color: #666;">
    <strong>Test sent at:</strong> {{.SentAt}}<br>
    Your portfolio contact form is ready to receive messages!
  </p>
</div>`

const testText = `SMTP Configured Successfully!

Your email configuration is working properly.
Test sent at: {{.SentAt}}
`

var (
	adminHTMLTmpl   = htmltemplate.Must(htmltemplate.New("admin").Parse(adminHTML))
	adminTextTmpl   = texttemplate.Must(texttemplate.New("admin").Parse(adminText))
	visitorHTMLTmpl = htmltemplate.Must(htmltemplate.New("visitor").Parse(visitorHTML))
	visitorTextTmpl = texttemplate.Must(texttemplate.New("visitor").Parse(visitorText))
	testHTMLTmpl    = htmltemplate.Must(htmltemplate.New("test").Parse(testHTML))
	testTextTmpl    = texttemplate.Must(texttemplate.New("test").Parse(testText))
)

// Composer derives outbound messages from a submission. It holds no per-request state.
type Composer struct {
	identity Identity
	now      func() time.Time
}

// NewComposer creates a composer for the given identity. A nil clock means time.Now.
func NewComposer(identity Identity, now func() time.Time) *Composer {
	if now == nil {
		now = time.Now
	}
	return &Composer{identity: identity, now: now}
}

// Identity returns the sender identity the composer stamps on every message.
func (c *Composer) Identity() Identity {
	return c.identity
}

// AdminNotification builds the owner's copy. Reply-To points at the visitor.
func (c *Composer) AdminNotification(data ContactEmailData) (Message, error) {
	html, text, err := c.render(adminHTMLTmpl, adminTextTmpl, data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render admin notification: %w", err)
	}
	return Message{
		From:    c.identity.From(),
		To:      c.identity.OwnerTo,
		ReplyTo: data.SenderEmail,
		Subject: singleLine(AdminSubjectPrefix + data.Subject),
		Text:    text,
		HTML:    html,
	}, nil
}

// VisitorAcknowledgement builds the thank-you copy sent back to the visitor.
func (c *Composer) VisitorAcknowledgement(data ContactEmailData) (Message, error) {
	html, text, err := c.render(visitorHTMLTmpl, visitorTextTmpl, data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render visitor acknowledgement: %w", err)
	}
	return Message{
		From:    c.identity.From(),
		To:      data.SenderEmail,
		Subject: VisitorSubject,
		Text:    text,
		HTML:    html,
	}, nil
}

// TestMessage builds the operator self-test mail addressed to the owner.
func (c *Composer) TestMessage() (Message, error) {
	html, text, err := c.render(testHTMLTmpl, testTextTmpl, ContactEmailData{})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render test message: %w", err)
	}
	return Message{
		From:    c.identity.From(),
		To:      c.identity.OwnerTo,
		Subject: TestSubject,
		Text:    text,
		HTML:    html,
	}, nil
}

func (c *Composer) render(html *htmltemplate.Template, text *texttemplate.Template, data ContactEmailData) (string, string, error) {
	td := templateData{
		ContactEmailData: data,
		OwnerName:        c.identity.FromName,
		SentAt:           c.now().Format("Jan 2, 2006 at 15:04 MST"),
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := html.Execute(&htmlBuf, td); err != nil {
		return "", "", err
	}
	if err := text.Execute(&textBuf, td); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}

// singleLine keeps user input from spilling into extra header lines.
func singleLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}
