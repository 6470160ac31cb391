package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	cron     *cron.Cron
	queue    Queue
	schedule string
	log      zerolog.Logger
}

// NewScheduler uses six-field cron expressions (with seconds).
func NewScheduler(queue Queue, purgeSchedule string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		queue:    queue,
		schedule: purgeSchedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.enqueuePurge); err != nil {
		return fmt.Errorf("schedule purge %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron and waits for a running job or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) enqueuePurge() {
	if err := s.queue.Enqueue(context.Background(), NewPurgeRefreshTokensTask()); err != nil {
		s.log.Error().Err(err).Msg("enqueue purge failed")
	}
}
