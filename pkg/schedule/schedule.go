// Package schedule drives the cooperative capture/persist tick loop.
package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stereo-shutter/pkg/utils"
)

const DefaultTick = 50 * time.Millisecond

// Sampler runs the cheap capture phase of a tick.
type Sampler interface {
	OnSampleTick(now time.Time)
}

// Persister runs the bounded persistence phase of a tick.
type Persister interface {
	OnPersistTick()
}

// Scheduler runs both phases of each tick to completion, in order, on a
// single goroutine. The queue between them therefore sees one writer and
// one reader, never concurrently.
type Scheduler struct {
	t         *time.Ticker
	sampler   Sampler
	persister Persister
	logger    *zap.SugaredLogger
}

func New(ctx context.Context, sampler Sampler, persister Persister, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	s := &Scheduler{
		t:         time.NewTicker(tick),
		sampler:   sampler,
		persister: persister,
		logger:    utils.GetLogger(),
	}
	go s.run(ctx)

	return s
}

func (s *Scheduler) run(ctx context.Context) {
	s.logger.Info("scheduler: started")
	for {
		select {
		case <-s.t.C:
			s.tick(utils.Now())
		case <-ctx.Done():
			s.t.Stop()
			s.logger.Info("scheduler: stopped")
			return
		}
	}
}

func (s *Scheduler) tick(now time.Time) {
	if s.sampler != nil {
		s.sampler.OnSampleTick(now)
	}
	if s.persister != nil {
		s.persister.OnPersistTick()
	}
}
