package mail

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"emperror.dev/errors"
	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
)

// Mailer sends emails.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends emails via SMTP
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailerFromEnv returns nil when SMTP_HOST is not set.
func NewSMTPMailerFromEnv() *SMTPMailer {
	host := env.GetEnv("SMTP_HOST", "")
	if host == "" {
		return nil
	}
	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = "no-reply@localhost"
		log.Warn().Str("sender", sender).Msg("SMTP_SENDER not set, using default sender")
	}
	return &SMTPMailer{
		Host:     host,
		Port:     env.GetEnv("SMTP_PORT", "587"),
		Username: env.GetEnv("SMTP_USERNAME", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
		Sender:   sender,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var auth smtp.Auth
	if m.Username != "" && m.Password != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	send := m.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, m.Sender, []string{to}, buildMessage(m.Sender, to, subject, body)); err != nil {
		return errors.WrapWithDetails(err, "send mail", "addr", addr)
	}
	log.Info().Str("to", to).Str("addr", addr).Msg("email sent")
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	// header injection guard
	clean := strings.NewReplacer("\r", "", "\n", "")
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", clean.Replace(from), clean.Replace(to), clean.Replace(subject)) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)
}

// WelcomeMail returns subject and body of the registration mail.
func WelcomeMail(username string) (string, string) {
	return "Welcome to ServerHub",
		fmt.Sprintf("<p>Hi %s,</p><p>your ServerHub account is ready. List your server and start collecting votes!</p>",
			html.EscapeString(username))
}
