package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFrame(t *testing.T, session string, index int, w, h int) {
	t.Helper()
	dir := filepath.Join(session, fmt.Sprintf("frame_%06d", index))
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, "left.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSession(t *testing.T) {
	session := filepath.Join(t.TempDir(), "session_20260830_120000")
	for i := 0; i < 3; i++ {
		writeFrame(t, session, i, 8, 6)
	}
	// a frame without a left image is skipped, not fatal
	if err := os.MkdirAll(filepath.Join(session, "frame_000003"), 0750); err != nil {
		t.Fatal(err)
	}

	out, n, err := BuildSession(session, "left.png", 10, 90)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("added %d frames, want 3", n)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("missing output video: %s", err)
	}
}

func TestBuildSessionEmpty(t *testing.T) {
	session := t.TempDir()
	if _, _, err := BuildSession(session, "left.png", 10, 90); err == nil {
		t.Error("expected error for session with no frames")
	}
}
