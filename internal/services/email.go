package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/internal/config"
	"github.com/dimitrije/worktrack-api/internal/models"
)

const base64LineLen = 76

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) message(to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body))
}

// mixedMessage builds a multipart/mixed mail: the HTML body followed by
// one base64 encoded attachment.
func (s *EmailService) mixedMessage(to, subject, body string, att *models.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		s.cfg.From, to, subject, w.Boundary())

	part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {`text/html; charset="UTF-8"`}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	part, err = w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": att.Name})},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(att.Data)
	for len(encoded) > base64LineLen {
		if _, err := part.Write([]byte(encoded[:base64LineLen] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[base64LineLen:]
	}
	if _, err := part.Write([]byte(encoded + "\r\n")); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Send delivers an HTML mail. It is a no-op while SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	return s.deliver(to, s.message(to, subject, body))
}

func (s *EmailService) deliver(to string, msg []byte) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}

func passwordResetBody(username, code string, ttl time.Duration) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Password reset</h2>
			<p>Hi %s,</p>
			<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>
			<p>If you did not ask for a reset you can ignore this message.</p>
		</body>
		</html>
	`, html.EscapeString(username), code, int(ttl.Minutes()))
}

func (s *EmailService) SendPasswordResetCode(to, username, code string, ttl time.Duration) error {
	return s.Send(to, "Your password reset code", passwordResetBody(username, code, ttl))
}

func (s *EmailService) SendTimesheetSubmitted(to, reviewerName, creatorName, tableURL string) error {
	subject := fmt.Sprintf("%s sent a timesheet for review", creatorName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Timesheet waiting for review</h2>
			<p>Hi %s,</p>
			<p><strong>%s</strong> has sent a timesheet for your review.</p>
			<p><a href="%s">Open the review queue</a></p>
		</body>
		</html>
	`, html.EscapeString(reviewerName), html.EscapeString(creatorName), tableURL)

	return s.Send(to, subject, body)
}

func timesheetReviewedBody(creatorName, status, reviewerName string, feedback *string, tableURL string) string {
	note := ""
	if feedback != nil {
		note = fmt.Sprintf("<p>Feedback: <em>%s</em></p>", html.EscapeString(*feedback))
	}
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>%s</h2>
			<p>Hi %s,</p>
			<p>Your timesheet was reviewed by <strong>%s</strong>.</p>
			%s
			<p><a href="%s">View the timesheet</a></p>
		</body>
		</html>
	`, html.EscapeString(status), html.EscapeString(creatorName), html.EscapeString(reviewerName), note, tableURL)
}

func (s *EmailService) SendTimesheetReviewed(to, creatorName, status, reviewerName string, feedback *string, tableURL string) error {
	subject := fmt.Sprintf("Timesheet %s", status)
	return s.Send(to, subject, timesheetReviewedBody(creatorName, status, reviewerName, feedback, tableURL))
}

func messageBody(recipientName, senderName, text string) string {
	escaped := strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	return fmt.Sprintf(`
		<html>
		<body>
			<p>Hi %s,</p>
			<p><strong>%s</strong> sent you a message:</p>
			<p>%s</p>
		</body>
		</html>
	`, html.EscapeString(recipientName), html.EscapeString(senderName), escaped)
}

// SendMessage mails a user-to-user message, with the attachment when one
// was uploaded.
func (s *EmailService) SendMessage(to, recipientName, senderName, text string, attachment *models.Attachment) error {
	subject := fmt.Sprintf("Message from %s", senderName)
	body := messageBody(recipientName, senderName, text)
	if attachment == nil {
		return s.Send(to, subject, body)
	}
	if !s.IsConfigured() {
		return nil
	}
	msg, err := s.mixedMessage(to, subject, body, attachment)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}
	return s.deliver(to, msg)
}
