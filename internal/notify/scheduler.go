package notify

import (
	"context"
	"sync"
	"time"
)

// Runner is one unit of scheduled work, satisfied by *Sweep.
type Runner interface {
	Run(ctx context.Context, now time.Time) int
}

// Scheduler runs the reminder sweep on a fixed interval. An external cron
// hitting the reminder endpoint works too; either way the reminder log
// keeps overlapping invocations from double-sending.
type Scheduler struct {
	mu       sync.RWMutex
	sweep    Runner
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(sweep Runner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = reminderWindow * time.Minute
	}
	return &Scheduler{sweep: sweep, interval: interval}
}

// Start begins the sweep loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Each run gets its own deadline so a hung provider call
				// can't stall the ticker goroutine past the next tick.
				runCtx, cancel := context.WithTimeout(ctx, s.interval)
				s.sweep.Run(runCtx, time.Now())
				cancel()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
