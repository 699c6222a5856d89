// Command clubctl runs one-shot maintenance commands.
//
// Uso:
//
//	clubctl migrate
//	clubctl renovar [-fecha 2025-03-10]
//	clubctl reintentar-emails [-max 50] [-ver 10]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nycamas/club/internal/config"
	"github.com/nycamas/club/internal/infra"
	"github.com/nycamas/club/internal/jobs"
	"github.com/nycamas/club/internal/repository"
	"github.com/nycamas/club/internal/service"
	"github.com/nycamas/club/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		uso()
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "migrate":
		db := conectar(cfg)
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		log.Info().Msg("schema up to date")

	case "renovar":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fechaFlag := fs.String("fecha", "", "día de referencia (YYYY-MM-DD); por defecto hoy en ZONA_HORARIA")
		_ = fs.Parse(args)

		reloj := service.Reloj(cfg.Reloj())
		if *fechaFlag != "" {
			loc, _ := cfg.Location()
			dia, err := time.ParseInLocation("2006-01-02", *fechaFlag, loc)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid -fecha")
			}
			reloj = func() time.Time { return dia }
		}

		db := conectar(cfg)
		sched, err := jobs.New(jobs.Deps{
			Suscripciones: service.NewSuscripcionService(repository.NewSuscripcionRepository(db), reloj),
			Reloj:         reloj,
		}, jobs.Specs{}, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		renovadas, expiradas, err := sched.Renovaciones(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("renovar failed")
		}
		fmt.Printf("renovadas: %d  expiradas: %d  fallidas: %d\n",
			renovadas.Procesadas, expiradas.Procesadas, renovadas.Fallidas+expiradas.Fallidas)
		for _, e := range append(renovadas.Errores, expiradas.Errores...) {
			fmt.Println("  -", e)
		}

	case "reintentar-emails":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limite := fs.Int("max", 50, "número máximo de trabajos a reencolar")
		ver := fs.Int("ver", 0, "solo listar las N entradas más recientes, sin reencolar")
		_ = fs.Parse(args)

		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		if *ver > 0 {
			entradas, err := worker.PeekDLQ(ctx, rdb, worker.QueueEmail, *ver)
			if err != nil {
				log.Fatal().Err(err).Msg("dlq read failed")
			}
			for _, e := range entradas {
				fmt.Printf("%s  %-6s  intentos=%d  %s\n", e.FailedAt.Format(time.RFC3339), e.JobType, e.Attempts, e.Reason)
			}
			return
		}
		n, err := worker.RetryDeadLetters(ctx, worker.RetryCronConfig{RDB: rdb, Batch: *limite})
		if err != nil {
			log.Fatal().Err(err).Msg("requeue failed")
		}
		pendientes, _ := worker.DLQLength(ctx, rdb, worker.QueueEmail)
		fmt.Printf("reencolados: %d  pendientes en DLQ: %d\n", n, pendientes)

	default:
		uso()
		os.Exit(2)
	}
}

func conectar(cfg *config.Config) *gorm.DB {
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	return db
}

func uso() {
	fmt.Fprintln(os.Stderr, "uso: clubctl <migrate|renovar|reintentar-emails> [flags]")
}
