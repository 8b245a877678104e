// Package export persists assembled frame records to a session directory
// tree without ever blocking the sampling loop. A bounded drop-oldest
// queue decouples the cheap capture tick from the expensive encode/write
// work, which a worker amortizes across persist ticks.
package export

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"stereo-shutter/pkg/capture"
	"stereo-shutter/pkg/utils"
)

const (
	DefaultCapacity     = 300
	DefaultWarnCooldown = time.Second
)

// QueuedFrame couples a record with its export index. Indices are
// assigned at enqueue time, strictly increasing, and never reused even
// when the frame they were assigned to is later dropped.
type QueuedFrame struct {
	Index  uint64
	Record *capture.Record
}

// Queue is a bounded FIFO of pending exports. When full, the oldest
// pending frame is evicted unexported to admit the new one: for a live
// sampling feed, recency beats completeness.
type Queue struct {
	mu        sync.Mutex
	items     []QueuedFrame
	capacity  int
	next      uint64
	enabled   bool
	dropped   uint64
	warnAfter time.Time
	cooldown  time.Duration

	logger *zap.SugaredLogger
}

func NewQueue(capacity int, cooldown time.Duration) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if cooldown <= 0 {
		cooldown = DefaultWarnCooldown
	}

	return &Queue{
		capacity: capacity,
		cooldown: cooldown,
		enabled:  true,
		logger:   utils.GetLogger(),
	}
}

// Enqueue admits rec and returns its frame index. While export is
// disabled this is a complete no-op: nothing is queued and no index is
// consumed. Overflow warnings are rate-limited to one per cooldown
// window so a sustained stall cannot storm the log.
func (q *Queue) Enqueue(rec *capture.Record) (uint64, bool) {
	if rec == nil {
		return 0, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.enabled {
		return 0, false
	}

	if len(q.items) >= q.capacity {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.dropped++
		if now := time.Now(); !now.Before(q.warnAfter) {
			q.logger.Warnf("export: queue full, dropped frame %d (%d dropped so far)", evicted.Index, q.dropped)
			q.warnAfter = now.Add(q.cooldown)
		}
	}

	idx := q.next
	q.next++
	q.items = append(q.items, QueuedFrame{Index: idx, Record: rec})

	return idx, true
}

// Drain removes and returns up to max frames in FIFO order. It never
// blocks; an empty queue yields nil.
func (q *Queue) Drain(max int) []QueuedFrame {
	q.mu.Lock()
	defer q.mu.Unlock()

	if max <= 0 || len(q.items) == 0 {
		return nil
	}
	n := max
	if n > len(q.items) {
		n = len(q.items)
	}
	out := make([]QueuedFrame, n)
	copy(out, q.items[:n])
	q.items = append(q.items[:0], q.items[n:]...)

	return out
}

func (q *Queue) SetEnabled(enabled bool) {
	q.mu.Lock()
	q.enabled = enabled
	q.mu.Unlock()
	q.logger.Infof("export: enabled=%v", enabled)
}

func (q *Queue) Enabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enabled
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
