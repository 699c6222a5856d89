package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueEmail = "jobs:email"

// JobEmail is the Job.Type of receipt and reminder emails.
const JobEmail = "email"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes the payload of one job type. A returned error sends the
// job to the dead letter queue; handlers do their own retrying.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// Pool routes dequeued jobs to the handler registered for their type.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	queues   []string
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler)}
}

// Handle registers h for jobType arriving on queue.
func (p *Pool) Handle(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker: pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker: shutting down")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Error().Err(err).Int("worker", id).Msg("worker: brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process decodes and runs one job. Failures end in the DLQ.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		p.deadLetter(ctx, queue, "", json.RawMessage(raw), "invalid envelope: "+err.Error(), 0)
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("worker: no handler for job type")
		p.deadLetter(ctx, queue, job.Type, job.Payload, "no handler", 0)
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("worker: processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		p.deadLetter(ctx, queue, job.Type, job.Payload, err.Error(), attemptsOf(err))
	}
}

func (p *Pool) deadLetter(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	if p.rdb == nil {
		return
	}
	SendToDLQ(ctx, p.rdb, queue, jobType, payload, reason, attempts)
}
