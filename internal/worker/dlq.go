package worker

// dlq.go: dead letters.
// A job whose handler gave up lands in dlq:{original_queue}, a Redis list
// with the newest entry at the head. Entries keep the original payload so
// RequeueDLQ can put them back untouched once the cause is fixed.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is one dead job plus why and when it died.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

var dlqNow = func() time.Time { return time.Now().UTC() }

func dlqKey(queue string) string { return DLQPrefix + queue }

// SendToDLQ records a job that exhausted its attempts. Failures are logged
// only: the caller has nowhere else to put the job.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      dlqNow(),
		Attempts:      attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("job_type", jobType).Msg("dlq: push failed, job lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job dead-lettered")
}

func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}

// PeekDLQ returns up to n entries, newest first, without removing them.
// Undecodable entries are skipped.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int) ([]DLQEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := rdb.LRange(ctx, dlqKey(queue), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if json.Unmarshal([]byte(raw), &e) == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// RequeueDLQ moves up to limite entries back onto their original queue,
// oldest first, as fresh jobs. It stops at the first undecodable entry and
// leaves it at the tail for a human to look at.
func RequeueDLQ(ctx context.Context, rdb *redis.Client, queue string, limite int) (int, error) {
	key := dlqKey(queue)
	moved := 0
	for moved < limite {
		raw, err := rdb.RPop(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.JobType == "" {
			if err := rdb.RPush(ctx, key, raw).Err(); err != nil {
				return moved, err
			}
			log.Warn().Str("queue", queue).Msg("dlq: undecodable entry left in place")
			break
		}

		job, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
		if err != nil {
			return moved, err
		}
		destino := entry.OriginalQueue
		if destino == "" {
			destino = queue
		}
		if err := rdb.LPush(ctx, destino, job).Err(); err != nil {
			// the entry is out of the DLQ and not queued; put it back first
			_ = rdb.RPush(ctx, key, raw).Err()
			return moved, err
		}
		moved++
	}
	return moved, nil
}
