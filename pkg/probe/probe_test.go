package probe

import "testing"

type fakeSource struct {
	ts     float64
	hasTS  bool
	calib  string
	tryOK  bool
	tryVal int
	called []string
}

func (f *fakeSource) FrameTimestamp() (float64, bool) {
	f.called = append(f.called, "FrameTimestamp")
	return f.ts, f.hasTS
}

func (f *fakeSource) Intrinsics() string {
	f.called = append(f.called, "Intrinsics")
	return f.calib
}

func (f *fakeSource) TryGetValue(out *int) bool {
	f.called = append(f.called, "TryGetValue")
	if f.tryOK {
		*out = f.tryVal
	}
	return f.tryOK
}

func (f *fakeSource) WrongShape(a, b int) int { return a + b }

func (f *fakeSource) NilResult() *int { return nil }

func TestProbeDirectCall(t *testing.T) {
	src := &fakeSource{calib: "fx=1"}
	v, ok := Probe(src, []string{"Intrinsics"})
	if !ok {
		t.Fatal("expected probe to resolve")
	}
	if v.(string) != "fx=1" {
		t.Errorf("value = %v", v)
	}
}

func TestProbeCommaOK(t *testing.T) {
	src := &fakeSource{ts: 1.5, hasTS: true}
	v, ok := Probe(src, []string{"FrameTimestamp"})
	if !ok || v.(float64) != 1.5 {
		t.Errorf("got %v, %v", v, ok)
	}

	src.hasTS = false
	if _, ok := Probe(src, []string{"FrameTimestamp"}); ok {
		t.Error("false comma-ok flag should read as unresolved")
	}
}

func TestProbeTryShape(t *testing.T) {
	src := &fakeSource{tryOK: true, tryVal: 42}
	v, ok := Probe(src, []string{"TryGetValue"})
	if !ok || v.(int) != 42 {
		t.Errorf("got %v, %v", v, ok)
	}

	src.tryOK = false
	if _, ok := Probe(src, []string{"TryGetValue"}); ok {
		t.Error("failed try-shape call should read as unresolved")
	}
}

func TestProbeFirstMatchWins(t *testing.T) {
	src := &fakeSource{ts: 2, hasTS: true, tryOK: true, tryVal: 9}
	v, ok := Probe(src, []string{"FrameTimestamp", "TryGetValue"})
	if !ok || v.(float64) != 2 {
		t.Errorf("got %v, %v", v, ok)
	}
	if len(src.called) != 1 {
		t.Errorf("called %v, want only the first candidate", src.called)
	}
}

func TestProbeSkipsUnsupportedShapes(t *testing.T) {
	src := &fakeSource{calib: "ok"}
	v, ok := Probe(src, []string{"Missing", "WrongShape", "Intrinsics"})
	if !ok || v.(string) != "ok" {
		t.Errorf("got %v, %v", v, ok)
	}
}

func TestProbeNilResultIsUnresolved(t *testing.T) {
	src := &fakeSource{}
	if _, ok := Probe(src, []string{"NilResult"}); ok {
		t.Error("typed nil result should read as unresolved")
	}
}

func TestProbeNoCandidates(t *testing.T) {
	src := &fakeSource{}
	if _, ok := Probe(src, nil); ok {
		t.Error("empty candidate list should be unresolved")
	}
	if _, ok := Probe(nil, []string{"Intrinsics"}); ok {
		t.Error("nil handle should be unresolved")
	}
}
