// Package jobs runs the club's periodic maintenance: late-return reminders,
// subscription renewals and expiries, stale reservation cleanup and the
// email DLQ requeue.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/worker"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Alquileres is the part of service.AlquilerService the scheduler drives.
type Alquileres interface {
	ListarRetrasados(ctx context.Context, hoy time.Time) ([]model.Alquiler, error)
	ExpirarReservas(ctx context.Context, hoy time.Time) (int, error)
}

// Suscripciones is the part of service.SuscripcionService the scheduler drives.
type Suscripciones interface {
	RenovarVencidas(ctx context.Context, hoy time.Time) (dto.ResultadoProceso, error)
	ExpirarVencidas(ctx context.Context, hoy time.Time) (dto.ResultadoProceso, error)
}

// Socios resolves the contact data of a rental's member.
type Socios interface {
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
}

// Encolador pushes email jobs; *worker.Dispatcher satisfies it.
type Encolador interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

type Deps struct {
	Alquileres    Alquileres
	Suscripciones Suscripciones
	Socios        Socios
	Encolador     Encolador
	// Reintentar requeues dead-lettered emails; nil disables the job.
	Reintentar func(ctx context.Context) (int, error)
	Club       string
	Reloj      func() time.Time
}

// Specs are standard 5-field cron expressions. An empty spec disables the job.
type Specs struct {
	Recordatorios string
	Renovaciones  string
	Reservas      string
	Reintentos    string
}

type Scheduler struct {
	cron *cron.Cron
	deps Deps

	mu  sync.Mutex
	ctx context.Context
}

// New registers every enabled job. Jobs are evaluated in loc and never
// overlap with a previous run of themselves.
func New(deps Deps, specs Specs, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	l := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		deps: deps,
		ctx:  context.Background(),
	}

	registros := []struct {
		nombre string
		spec   string
		fn     func(ctx context.Context) error
	}{
		{"recordatorios", specs.Recordatorios, s.recordatorios},
		{"renovaciones", specs.Renovaciones, s.renovaciones},
		{"reservas", specs.Reservas, s.reservas},
		{"reintentos", specs.Reintentos, s.reintentos},
	}
	for _, r := range registros {
		if strings.TrimSpace(r.spec) == "" {
			continue
		}
		r := r
		if _, err := s.cron.AddFunc(r.spec, func() { s.ejecutar(r.nombre, r.fn) }); err != nil {
			return nil, fmt.Errorf("jobs: %s %q: %w", r.nombre, r.spec, err)
		}
		log.Info().Str("job", r.nombre).Str("spec", r.spec).Msg("jobs: scheduled")
	}
	return s, nil
}

// Start launches the cron loop; ctx is handed to every job run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("jobs: scheduler stopped")
}

// Entradas returns the number of scheduled jobs.
func (s *Scheduler) Entradas() int { return len(s.cron.Entries()) }

func (s *Scheduler) ejecutar(nombre string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	inicio := time.Now()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Str("job", nombre).Msg("jobs: run failed")
		return
	}
	log.Debug().Str("job", nombre).Dur("took", time.Since(inicio)).Msg("jobs: run finished")
}

func (s *Scheduler) hoy() time.Time {
	if s.deps.Reloj != nil {
		return model.Dia(s.deps.Reloj())
	}
	return model.Dia(time.Now())
}

// ── Jobs ──────────────────────────────────────────────────────────────────────

// Recordar enqueues one reminder per overdue rental whose member has an
// email and accepts notifications. It returns how many were queued.
func (s *Scheduler) Recordar(ctx context.Context) (int, error) {
	if s.deps.Alquileres == nil || s.deps.Encolador == nil || s.deps.Socios == nil {
		return 0, nil
	}
	hoy := s.hoy()
	retrasados, err := s.deps.Alquileres.ListarRetrasados(ctx, hoy)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range retrasados {
		socio, err := s.deps.Socios.ObtenerPorID(ctx, a.SocioID)
		if err != nil {
			log.Warn().Err(err).Str("alquiler", a.Codigo).Msg("jobs: socio lookup failed, reminder skipped")
			continue
		}
		if socio.Email == nil || *socio.Email == "" || !socio.RecibirNotificaciones {
			continue
		}
		if err := s.deps.Encolador.EnqueueEmail(ctx, recordatorio(s.deps.Club, *socio, a, hoy)); err != nil {
			return n, fmt.Errorf("enqueue reminder %s: %w", a.Codigo, err)
		}
		n++
	}
	return n, nil
}

func recordatorio(club string, socio model.Usuario, a model.Alquiler, hoy time.Time) worker.EmailJobPayload {
	dias := a.DiasRetraso(hoy)
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", socio.Nombre)
	fmt.Fprintf(&b, "El alquiler %s debía devolverse el %s y lleva %d día(s) de retraso.\n",
		a.Codigo, a.FechaFinPrevista.Format("02/01/2006"), dias)
	b.WriteString("Por favor, acércate al club para completar la devolución.\n")
	if club != "" {
		fmt.Fprintf(&b, "\n%s\n", club)
	}
	return worker.EmailJobPayload{
		Para:   *socio.Email,
		Asunto: fmt.Sprintf("Recordatorio: devolución pendiente (%s)", a.Codigo),
		Texto:  b.String(),
	}
}

func (s *Scheduler) recordatorios(ctx context.Context) error {
	n, err := s.Recordar(ctx)
	if n > 0 {
		log.Info().Int("count", n).Msg("jobs: late-return reminders queued")
	}
	return err
}

// Renovaciones renews due auto-renewing subscriptions and then expires the
// rest, so a renewed subscription is never expired in the same run.
func (s *Scheduler) Renovaciones(ctx context.Context) (renovadas, expiradas dto.ResultadoProceso, err error) {
	if s.deps.Suscripciones == nil {
		return renovadas, expiradas, nil
	}
	hoy := s.hoy()
	renovadas, err = s.deps.Suscripciones.RenovarVencidas(ctx, hoy)
	if err != nil {
		return renovadas, expiradas, fmt.Errorf("renovar: %w", err)
	}
	expiradas, err = s.deps.Suscripciones.ExpirarVencidas(ctx, hoy)
	if err != nil {
		return renovadas, expiradas, fmt.Errorf("expirar: %w", err)
	}
	return renovadas, expiradas, nil
}

func (s *Scheduler) renovaciones(ctx context.Context) error {
	renovadas, expiradas, err := s.Renovaciones(ctx)
	log.Info().
		Int("renovadas", renovadas.Procesadas).
		Int("fallidas", renovadas.Fallidas+expiradas.Fallidas).
		Int("expiradas", expiradas.Procesadas).
		Msg("jobs: subscription maintenance")
	for _, e := range append(renovadas.Errores, expiradas.Errores...) {
		log.Warn().Str("detalle", e).Msg("jobs: subscription item failed")
	}
	return err
}

func (s *Scheduler) reservas(ctx context.Context) error {
	if s.deps.Alquileres == nil {
		return nil
	}
	_, err := s.deps.Alquileres.ExpirarReservas(ctx, s.hoy())
	return err
}

func (s *Scheduler) reintentos(ctx context.Context) error {
	if s.deps.Reintentar == nil {
		return nil
	}
	_, err := s.deps.Reintentar(ctx)
	return err
}

// cronLogger routes robfig/cron's own messages through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
