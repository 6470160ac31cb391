package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const localTaskTimeout = 10 * time.Second

// LocalQueue runs tasks on in-process workers fed by a bounded channel.
type LocalQueue struct {
	handler Handler
	workers int
	tasks   chan Task
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	group  errgroup.Group
}

func NewLocalQueue(handler Handler, workers int, buffer int, log zerolog.Logger) *LocalQueue {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &LocalQueue{
		handler: handler,
		workers: workers,
		tasks:   make(chan Task, buffer),
		log:     log,
	}
}

func (q *LocalQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.group.Go(func() error {
			for task := range q.tasks {
				q.run(task)
			}
			return nil
		})
	}
}

// Enqueue never blocks; a full buffer yields ErrQueueFull.
func (q *LocalQueue) Enqueue(_ context.Context, task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake and waits for queued tasks to finish or ctx to expire.
func (q *LocalQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = q.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *LocalQueue) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), localTaskTimeout)
	defer cancel()

	if err := q.handler.Handle(ctx, task); err != nil {
		q.log.Error().Err(err).Str("task", string(task.Type)).Msg("task failed")
	}
}
