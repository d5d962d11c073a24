package config

import (
	"crypto/tls"
	"log"
	"os"
	"strconv"

	mail "github.com/go-mail/mail/v2"
)

type Mailer struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // e.g. "Journal Support <no-reply@journal.org>"
	SkipTLSVerify bool
}

func NewMailerFromEnv() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return &Mailer{
		Host:          os.Getenv("SMTP_HOST"),
		Port:          port,
		User:          os.Getenv("SMTP_USER"),
		Pass:          os.Getenv("SMTP_PASS"),
		From:          os.Getenv("SMTP_FROM"),
		SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
}

func (m *Mailer) Configured() bool {
	return m.Host != "" && m.From != ""
}

// SendMail delivers an HTML message. Without SMTP settings the message is
// only logged, which is the expected development behaviour.
func (m *Mailer) SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !m.Configured() {
		log.Printf("mock email (SMTP not configured) to=%v subject=%q", to, subject)
		return nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         m.Host,
		InsecureSkipVerify: m.SkipTLSVerify,
	}

	return d.DialAndSend(msg)
}
