package probe

import (
	"math"
	"testing"
	"time"
)

func TestSeconds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float seconds", 2.25, 2.25, true},
		{"float32 seconds", float32(0.5), 0.5, true},
		{"int nanoseconds", 1_500_000_000, 1.5, true},
		{"int64 nanoseconds", int64(1_500_000_000), 1.5, true},
		{"uint64 nanoseconds", uint64(2_000_000_000), 2, true},
		{"duration", 1500 * time.Millisecond, 1.5, true},
		{"integer text", "1500000000", 1.5, true},
		{"decimal text", "2.25", 2.25, true},
		{"non-numeric", "soon", 0, false},
		{"nil", nil, 0, false},
		{"struct", struct{}{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Seconds(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnified(t *testing.T) {
	left, right := 1.0, 2.0
	fallback := time.Unix(100, 500_000_000)

	if got := Unified(&left, &right, fallback); got != 1.0 {
		t.Errorf("left present: got %v", got)
	}
	if got := Unified(nil, &right, fallback); got != 2.0 {
		t.Errorf("right only: got %v", got)
	}
	if got := Unified(&left, nil, fallback); got != 1.0 {
		t.Errorf("left only: got %v", got)
	}
	if got := Unified(nil, nil, fallback); math.Abs(got-100.5) > 1e-9 {
		t.Errorf("fallback: got %v, want 100.5", got)
	}
}
