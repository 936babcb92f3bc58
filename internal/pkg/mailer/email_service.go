package mailer

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type IEmailService interface {
	SendReminder(toEmail, subject, body string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	var d *gomail.Dialer
	if host != "" {
		d = gomail.NewDialer(host, port, username, password)
	}

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// SendReminder mails a plain-text reminder. The body is also rendered as a
// minimal HTML alternative with line breaks preserved.
func (s *emailService) SendReminder(toEmail, subject, body string) error {
	if s.dialer == nil || s.senderEmail == "" {
		return ErrNotConfigured
	}

	m := gomail.NewMessage()
	if s.senderName != "" {
		m.SetAddressHeader("From", s.senderEmail, s.senderName)
	} else {
		m.SetHeader("From", s.senderEmail)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)

	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>%s</p>
		</div>
	`, html.EscapeString(subject), strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reminder to %s: %w", toEmail, err)
	}
	return nil
}
