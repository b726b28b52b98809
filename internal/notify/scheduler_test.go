package notify

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeRunner counts invocations and records whether each run context
// carried a deadline.
type fakeRunner struct {
	mu        sync.Mutex
	runs      int
	deadlines bool
}

func (f *fakeRunner) Run(ctx context.Context, now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	_, f.deadlines = ctx.Deadline()
	return 0
}

func (f *fakeRunner) snapshot() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs, f.deadlines
}

func TestSchedulerRunsWithDeadline(t *testing.T) {
	fr := &fakeRunner{}
	s := NewScheduler(fr, 10*time.Millisecond)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	runs, hadDeadline := fr.snapshot()
	if runs == 0 {
		t.Fatal("expected at least one run")
	}
	if !hadDeadline {
		t.Error("expected each run context to carry a deadline")
	}
}

func TestSchedulerStopWaits(t *testing.T) {
	fr := &fakeRunner{}
	s := NewScheduler(fr, time.Hour)

	s.Start(context.Background())

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestSchedulerStopBeforeStart(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, time.Minute)
	// Should not panic or block
	s.Stop()
}
