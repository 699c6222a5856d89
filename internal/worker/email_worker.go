package worker

// email_worker.go
// Processes email jobs from QueueEmail: sale receipts (PDF attached) and
// overdue-rental reminders.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nycamas/club/internal/infra"

	"github.com/rs/zerolog/log"
)

// MaxEmailRetries is the number of send attempts before a job is dead-lettered.
const MaxEmailRetries = 3

// EmailJobPayload is the job envelope sent to QueueEmail. Adjunto travels
// base64-encoded inside the JSON.
type EmailJobPayload struct {
	Para          string `json:"para"`
	Asunto        string `json:"asunto"`
	Texto         string `json:"texto"`
	Adjunto       []byte `json:"adjunto,omitempty"`
	AdjuntoNombre string `json:"adjunto_nombre,omitempty"`
}

// Enviador is the part of infra.Mailer the worker needs.
type Enviador interface {
	Enviar(msg infra.Mensaje) error
}

// EmailWorker sends queued emails via SMTP.
type EmailWorker struct {
	mailer Enviador
	// espera is the base backoff between attempts (1s, 2s, ...).
	espera time.Duration
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Enviador) *EmailWorker {
	return &EmailWorker{mailer: mailer, espera: time.Second}
}

var errPayloadInvalido = errors.New("email_worker: invalid payload")

// Process sends one email, retrying with exponential backoff. An open
// circuit breaker stops the retries early.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %v", errPayloadInvalido, err)
	}
	if payload.Para == "" {
		log.Warn().Msg("email_worker: empty destinatario, skipping")
		return nil
	}

	msg := infra.Mensaje{
		Para:          payload.Para,
		Asunto:        payload.Asunto,
		Texto:         payload.Texto,
		Adjunto:       payload.Adjunto,
		AdjuntoNombre: payload.AdjuntoNombre,
	}
	intentos := 0
	err := withRetry(ctx, MaxEmailRetries, w.espera, func(attempt int) error {
		intentos = attempt + 1
		err := w.mailer.Enviar(msg)
		if errors.Is(err, infra.ErrCircuitOpen) {
			return stopRetry{err}
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.Para).Int("attempts", intentos).Msg("email_worker: failed to send email")
		return &reintentosAgotados{intentos: intentos, err: err}
	}
	log.Info().Str("to", payload.Para).Str("subject", payload.Asunto).Msg("email_worker: email sent")
	return nil
}

// stopRetry makes withRetry give up immediately.
type stopRetry struct{ err error }

func (s stopRetry) Error() string { return s.err.Error() }
func (s stopRetry) Unwrap() error { return s.err }

// reintentosAgotados carries the attempt count to the DLQ entry.
type reintentosAgotados struct {
	intentos int
	err      error
}

func (r *reintentosAgotados) Error() string {
	return fmt.Sprintf("after %d attempts: %v", r.intentos, r.err)
}
func (r *reintentosAgotados) Unwrap() error { return r.err }

func attemptsOf(err error) int {
	var r *reintentosAgotados
	if errors.As(err, &r) {
		return r.intentos
	}
	return 1
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2×base.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		var stop stopRetry
		if errors.As(err, &stop) {
			return stop.err
		}
	}
	return lastErr
}
