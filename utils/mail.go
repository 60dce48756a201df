package utils

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends notification mail through the configured SMTP relay.
// Sends are fire-and-forget from the caller's point of view: a failure
// is reported as an error and never retried here.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) Send(subject, body string, to []string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("unable to send mail: %w", err)
	}
	return nil
}
