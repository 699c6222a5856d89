package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/nycamas/club/internal/config"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
)

// Mensaje is one outgoing email. Adjunto is optional.
type Mensaje struct {
	Para          string
	Asunto        string
	Texto         string
	Adjunto       []byte
	AdjuntoNombre string
}

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// Sends go through a circuit breaker so a dead SMTP server fails fast
// instead of stalling every worker.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	if cfg.ClubNombre != "" {
		from = fmt.Sprintf("%s <%s>", cfg.ClubNombre, from)
	}
	cbConfig := DefaultCBConfig()
	cbConfig.OnStateChange = func(antes, despues CBState) {
		log.Warn().Str("from", antes.String()).Str("to", despues.String()).Msg("mailer: circuit breaker")
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker(cbConfig),
	}
}

// Configurado is false when no SMTP host was given (local development).
func (m *Mailer) Configurado() bool { return m.host != "" }

// Estado exposes the breaker state for logs.
func (m *Mailer) Estado() CBState { return m.cb.State() }

// Enviar sends msg. It returns ErrCircuitOpen without dialing while the
// breaker is open.
func (m *Mailer) Enviar(msg Mensaje) error {
	e := construirEmail(m.from, msg)
	if len(msg.Adjunto) > 0 {
		nombre := msg.AdjuntoNombre
		if nombre == "" {
			nombre = "comprobante.pdf"
		}
		if _, err := e.Attach(bytes.NewReader(msg.Adjunto), nombre, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}

func construirEmail(from string, msg Mensaje) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{msg.Para}
	e.Subject = msg.Asunto
	e.Text = []byte(msg.Texto)
	return e
}
