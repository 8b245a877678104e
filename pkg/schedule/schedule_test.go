package schedule

import (
	"context"
	"sync"
	"testing"
	"time"
)

type tickRecorder struct {
	mu       sync.Mutex
	samples  int
	persists int
	ordered  bool
}

func newTickRecorder() *tickRecorder {
	return &tickRecorder{ordered: true}
}

func (r *tickRecorder) OnSampleTick(now time.Time) {
	r.mu.Lock()
	r.samples++
	r.mu.Unlock()
}

func (r *tickRecorder) OnPersistTick() {
	r.mu.Lock()
	r.persists++
	// the sample phase of this tick must already have run
	if r.samples < r.persists {
		r.ordered = false
	}
	r.mu.Unlock()
}

func (r *tickRecorder) snapshot() (int, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples, r.persists, r.ordered
}

func TestPhasesRunInOrder(t *testing.T) {
	rec := newTickRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	New(ctx, rec, rec, time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for {
		_, persists, _ := rec.snapshot()
		if persists >= 5 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	samples, persists, ordered := rec.snapshot()
	if persists < 5 {
		t.Fatalf("persist ran %d times", persists)
	}
	if samples < persists {
		t.Errorf("samples = %d, persists = %d", samples, persists)
	}
	if !ordered {
		t.Error("persist phase ran before the sample phase of its tick")
	}
}

func TestCancelStopsLoop(t *testing.T) {
	rec := newTickRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	New(ctx, rec, rec, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	_, before, _ := rec.snapshot()
	time.Sleep(20 * time.Millisecond)
	_, after, _ := rec.snapshot()
	if after != before {
		t.Error("loop kept ticking after cancel")
	}
}
