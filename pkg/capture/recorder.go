// Package capture assembles stereo frame records once per sampling tick.
package capture

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"stereo-shutter/pkg/camera"
	"stereo-shutter/pkg/probe"
	"stereo-shutter/pkg/utils"
)

// View is one eye's share of a record.
type View struct {
	Image      *camera.Image
	Pose       camera.Pose
	Intrinsics any      // opaque probed value, nil if unresolved
	Timestamp  *float64 // seconds, nil if unresolved
}

// Record is one assembled stereo capture. Never mutated after it is
// handed to the sink.
type Record struct {
	Left      View
	Right     View
	Timestamp float64 // unified, always present
}

// Sink receives assembled records. Enqueue must not block the sampling
// tick; the bool result reports whether the record was actually queued.
type Sink interface {
	Enqueue(rec *Record) (uint64, bool)
}

type Config struct {
	// Interval is the minimum spacing between captures. Zero means
	// capture on every armed tick.
	Interval time.Duration
	// IntrinsicsNames and TimestampNames are the probe candidate
	// lists, tried in order.
	IntrinsicsNames []string
	TimestampNames  []string
}

// Recorder pulls image and pose from both eyes on each armed tick,
// probes the optional metadata, and hands one immutable Record to the
// sink. Every precondition failure is a silent skip: each tick is an
// independent sampling attempt and is never retried.
type Recorder struct {
	left  camera.Source
	right camera.Source
	sink  Sink
	cfg   Config

	mu    sync.Mutex
	armed bool
	next  time.Time

	logger *zap.SugaredLogger
}

func NewRecorder(left, right camera.Source, sink Sink, cfg Config) (*Recorder, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("capture: both camera sources are required")
	}
	if sink == nil {
		return nil, fmt.Errorf("capture: export sink is required")
	}

	return &Recorder{
		left:   left,
		right:  right,
		sink:   sink,
		cfg:    cfg,
		logger: utils.GetLogger(),
	}, nil
}

func (r *Recorder) Arm() {
	r.mu.Lock()
	r.armed = true
	r.mu.Unlock()
	r.logger.Info("capture: armed")
}

func (r *Recorder) Disarm() {
	r.mu.Lock()
	r.armed = false
	r.mu.Unlock()
	r.logger.Info("capture: disarmed")
}

func (r *Recorder) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// OnSampleTick runs one sampling attempt at the supplied wall-clock tick
// time. The next-allowed capture time advances from now, not from the
// previous scheduled time, so a stall never compounds into a burst.
func (r *Recorder) OnSampleTick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.armed {
		return
	}
	if !r.left.IsReady() || !r.right.IsReady() {
		return
	}
	if r.cfg.Interval > 0 && now.Before(r.next) {
		return
	}

	rec := &Record{
		Left:  r.view(r.left),
		Right: r.view(r.right),
	}
	rec.Timestamp = probe.Unified(rec.Left.Timestamp, rec.Right.Timestamp, now)

	if idx, ok := r.sink.Enqueue(rec); ok {
		r.logger.Debugf("capture: queued frame %d at %.6fs", idx, rec.Timestamp)
	}
	r.next = now.Add(r.cfg.Interval)
}

func (r *Recorder) view(src camera.Source) View {
	v := View{
		Image: src.Image(),
		Pose:  src.Pose(),
	}
	if raw, ok := probe.Probe(src, r.cfg.IntrinsicsNames); ok {
		v.Intrinsics = raw
	}
	if raw, ok := probe.Probe(src, r.cfg.TimestampNames); ok {
		if s, ok := probe.Seconds(raw); ok {
			v.Timestamp = &s
		}
	}

	return v
}
