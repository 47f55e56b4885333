package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one payload. A non-nil error requeues the payload until
// its retries run out.
type Handler[T any] func(context.Context, T) error

// Config tunes the worker pool.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue dispatches payloads of a single type to a pool of workers with
// bounded retries. Delivery is at-most-once per attempt; payloads whose
// retries are exhausted are logged and dropped.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	items   chan item[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

type item[T any] struct {
	payload T
	attempt int
}

// New builds a queue with the provided handler.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		items:      make(chan item[T], cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a payload onto the queue, blocking while the buffer is full.
func (q *Queue[T]) Enqueue(payload T) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	return q.push(ctx, item[T]{payload: payload})
}

func (q *Queue[T]) push(ctx context.Context, it item[T]) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.items <- it:
		return nil
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case it := <-q.items:
			if err := q.handler(q.ctx, it.payload); err != nil {
				q.retry(it, err)
			}
		}
	}
}

func (q *Queue[T]) retry(it item[T], err error) {
	it.attempt++
	if it.attempt > q.maxRetries {
		q.logger.Sugar().Errorw("dropping payload, retries exhausted", "queue", q.name, "attempts", it.attempt, "error", err)
		return
	}
	q.logger.Sugar().Warnw("handler failed, retrying", "queue", q.name, "attempt", it.attempt, "error", err)

	go func() {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.push(q.ctx, it); err != nil {
				q.logger.Sugar().Errorw("failed to requeue payload", "queue", q.name, "error", err)
			}
		}
	}()
}
