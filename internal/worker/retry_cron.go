package worker

// retry_cron.go
// Periodic requeue of dead-lettered email jobs back onto QueueEmail.
// Uses the mailer's Circuit Breaker to avoid hammering a downed SMTP server.

import (
	"context"
	"errors"

	"github.com/nycamas/club/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const retryBatchSize = 10

// RetryCronConfig holds all dependencies for the retry tick.
type RetryCronConfig struct {
	RDB *redis.Client
	// Estado reports the mailer breaker; nil means always closed.
	Estado func() infra.CBState
	Batch  int
}

var errSinRedis = errors.New("retry_cron: redis client is required")

// RetryDeadLetters moves up to cfg.Batch email jobs from the DLQ back to the
// email queue. Nothing is moved while the breaker is open.
func RetryDeadLetters(ctx context.Context, cfg RetryCronConfig) (int, error) {
	if cfg.RDB == nil {
		return 0, errSinRedis
	}
	// If CB is open, skip entirely; the jobs would land in the DLQ again
	if cfg.Estado != nil && cfg.Estado() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0, nil
	}

	batch := cfg.Batch
	if batch < 1 {
		batch = retryBatchSize
	}
	n, err := RequeueDLQ(ctx, cfg.RDB, QueueEmail, batch)
	if err != nil {
		log.Error().Err(err).Int("requeued", n).Msg("retry_cron: failed to requeue dead letters")
		return n, err
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("retry_cron: dead-lettered emails requeued")
	}
	return n, nil
}
