// Command clubd is the background daemon: migrates the schema, consumes the email
// queue and runs the scheduled maintenance jobs until SIGINT / SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nycamas/club/internal/config"
	"github.com/nycamas/club/internal/infra"
	"github.com/nycamas/club/internal/jobs"
	"github.com/nycamas/club/internal/repository"
	"github.com/nycamas/club/internal/service"
	"github.com/nycamas/club/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// dev: pretty console, prod: JSON
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	loc, _ := cfg.Location() // validated by Load
	recargo, _ := cfg.Recargo()
	reloj := service.Reloj(cfg.Reloj())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	pool := worker.NewPool(rdb)
	if mailer.Configurado() {
		pool.Handle(worker.QueueEmail, worker.JobEmail, worker.NewEmailWorker(mailer))
		pool.Start(ctx, cfg.WorkerPoolSize)
	} else {
		log.Warn().Msg("SMTP_HOST not set: emails stay queued until a configured daemon consumes them")
	}

	socios := repository.NewSocioRepository(db)
	suscripcionRepo := repository.NewSuscripcionRepository(db)
	alquileres := service.NewAlquilerService(
		repository.NewAlquilerRepository(db),
		repository.NewRecursoRepository(db),
		socios,
		suscripcionRepo,
		recargo,
		reloj,
	)
	suscripciones := service.NewSuscripcionService(suscripcionRepo, reloj)

	deps := jobs.Deps{
		Alquileres:    alquileres,
		Suscripciones: suscripciones,
		Socios:        socios,
		Encolador:     dispatcher,
		Club:          cfg.ClubNombre,
		Reloj:         reloj,
	}
	if mailer.Configurado() {
		deps.Reintentar = func(ctx context.Context) (int, error) {
			return worker.RetryDeadLetters(ctx, worker.RetryCronConfig{RDB: rdb, Estado: mailer.Estado})
		}
	}
	sched, err := jobs.New(deps, jobs.Specs{
		Recordatorios: cfg.CronRecordatorios,
		Renovaciones:  cfg.CronRenovaciones,
		Reservas:      cfg.CronReservas,
		Reintentos:    cfg.CronReintentos,
	}, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid cron configuration")
	}
	sched.Start(ctx)
	log.Info().Str("club", cfg.ClubNombre).Str("zona", loc.String()).Int("jobs", sched.Entradas()).Msg("clubd started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down…")
	cancel()
	sched.Stop()
	log.Info().Msg("clubd exited")
}
