package infra

import (
	"fmt"
	"net/smtp"

	"ceats/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending verification-code emails.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	domain   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		domain:   cfg.Domain,
	}
}

// SendCodigoVerificacion mails a 6-digit code. The same template serves admin
// email verification and sucursal verification; destino names the recipient.
func (m *Mailer) SendCodigoVerificacion(to, destino, codigo string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = "cEats — Código de verificación"
	e.Text = []byte(fmt.Sprintf(
		"Hola %s,\n\nTu código de verificación es: %s\n\nEl código expira en 24 horas.\n\n%s",
		destino, codigo, m.domain,
	))

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
