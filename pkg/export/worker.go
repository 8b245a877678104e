package export

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"stereo-shutter/pkg/camera"
	"stereo-shutter/pkg/utils"
	imageutil "stereo-shutter/pkg/utils/image"
)

const (
	DefaultBudget = 1

	LeftImageFile  = "left.png"
	RightImageFile = "right.png"
	MetadataFile   = "metadata.json"

	sessionTimeLayout = "20060102_150405"

	dirPerm  = 0750
	filePerm = 0660
)

// Metadata is the per-frame sidecar written next to the eye images.
// Widths and heights are zero when the eye's image was absent;
// intrinsics render as display strings, empty when unresolved.
type Metadata struct {
	FrameIndex            uint64      `json:"frame_index"`
	TimestampSeconds      float64     `json:"timestamp_seconds"`
	LeftPose              camera.Pose `json:"left_pose"`
	RightPose             camera.Pose `json:"right_pose"`
	LeftWidth             int         `json:"left_width"`
	LeftHeight            int         `json:"left_height"`
	RightWidth            int         `json:"right_width"`
	RightHeight           int         `json:"right_height"`
	LeftTimestampSeconds  *float64    `json:"left_timestamp_seconds,omitempty"`
	RightTimestampSeconds *float64    `json:"right_timestamp_seconds,omitempty"`
	LeftIntrinsics        string      `json:"left_intrinsics"`
	RightIntrinsics       string      `json:"right_intrinsics"`
}

// Worker drains a bounded number of frames per persist tick and writes
// each as a frame directory (PNG per present eye plus metadata sidecar)
// under a session directory created once per worker lifetime. A failed
// frame is logged and skipped; it never aborts the worker or the session.
type Worker struct {
	queue  *Queue
	root   string
	budget int

	mu         sync.Mutex
	sessionDir string

	exported atomic.Uint64
	written  atomic.Uint64

	// readback is reused across frames and reallocated only when the
	// source dimensions change.
	readback []byte
	rbWidth  int
	rbHeight int

	logger *zap.SugaredLogger
}

func NewWorker(queue *Queue, root string, budget int) (*Worker, error) {
	if queue == nil {
		return nil, fmt.Errorf("export: queue is required")
	}
	if root == "" {
		return nil, fmt.Errorf("export: root can not be empty")
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("export: create root: %w", err)
	}

	return &Worker{
		queue:  queue,
		root:   root,
		budget: budget,
		logger: utils.GetLogger(),
	}, nil
}

func (w *Worker) OnPersistTick() {
	for _, qf := range w.queue.Drain(w.budget) {
		if err := w.export(qf); err != nil {
			w.logger.Errorf("export: frame %d failed: %s", qf.Index, err)
			continue
		}
		w.exported.Add(1)
	}
}

// ExportedFrames reports how many frames completed fully.
func (w *Worker) ExportedFrames() uint64 {
	return w.exported.Load()
}

// BytesWritten reports the total image and sidecar bytes written.
func (w *Worker) BytesWritten() uint64 {
	return w.written.Load()
}

// SessionDir reports the session directory, empty before the first export.
func (w *Worker) SessionDir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionDir
}

func (w *Worker) export(qf QueuedFrame) error {
	dir, err := w.frameDir(qf.Index)
	if err != nil {
		return err
	}

	rec := qf.Record
	if err := w.writeImage(dir, LeftImageFile, rec.Left.Image); err != nil {
		return fmt.Errorf("left image: %w", err)
	}
	if err := w.writeImage(dir, RightImageFile, rec.Right.Image); err != nil {
		return fmt.Errorf("right image: %w", err)
	}

	return w.writeMetadata(dir, qf)
}

func (w *Worker) frameDir(index uint64) (string, error) {
	w.mu.Lock()
	if w.sessionDir == "" {
		dir := filepath.Join(w.root, "session_"+utils.Now().Format(sessionTimeLayout))
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			w.mu.Unlock()
			return "", fmt.Errorf("create session dir: %w", err)
		}
		w.sessionDir = dir
		w.logger.Infof("export: session directory %s", dir)
	}
	session := w.sessionDir
	w.mu.Unlock()

	dir := filepath.Join(session, fmt.Sprintf("frame_%06d", index))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create frame dir: %w", err)
	}

	return dir, nil
}

// writeImage encodes an eye's raw buffer to PNG. An absent image is
// skipped, not an error.
func (w *Worker) writeImage(dir, name string, img *camera.Image) error {
	if img == nil {
		return nil
	}
	rgba, err := w.readbackImage(img)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	cw := &countingWriter{w: f}
	if err := imageutil.EncodePNG(rgba, cw); err != nil {
		f.Close()
		return err
	}
	w.written.Add(cw.n)

	return f.Close()
}

// readbackImage expands the packed RGB24 buffer into the reusable RGBA
// readback buffer and wraps it as an image. The returned image aliases
// the readback buffer and is only valid until the next call.
func (w *Worker) readbackImage(img *camera.Image) (*image.RGBA, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", img.Width, img.Height)
	}
	if len(img.Pix) < img.Width*img.Height*3 {
		return nil, fmt.Errorf("short pixel buffer: %d bytes for %dx%d", len(img.Pix), img.Width, img.Height)
	}

	if img.Width != w.rbWidth || img.Height != w.rbHeight {
		w.readback = make([]byte, img.Width*img.Height*4)
		w.rbWidth, w.rbHeight = img.Width, img.Height
	}
	imageutil.RGBToRGBA(img.Pix, w.readback, img.Width, img.Height)

	return &image.RGBA{
		Pix:    w.readback,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}, nil
}

func (w *Worker) writeMetadata(dir string, qf QueuedFrame) error {
	rec := qf.Record
	md := Metadata{
		FrameIndex:            qf.Index,
		TimestampSeconds:      rec.Timestamp,
		LeftPose:              rec.Left.Pose,
		RightPose:             rec.Right.Pose,
		LeftTimestampSeconds:  rec.Left.Timestamp,
		RightTimestampSeconds: rec.Right.Timestamp,
		LeftIntrinsics:        renderIntrinsics(rec.Left.Intrinsics),
		RightIntrinsics:       renderIntrinsics(rec.Right.Intrinsics),
	}
	if img := rec.Left.Image; img != nil {
		md.LeftWidth, md.LeftHeight = img.Width, img.Height
	}
	if img := rec.Right.Image; img != nil {
		md.RightWidth, md.RightHeight = img.Width, img.Height
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), data, filePerm); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	w.written.Add(uint64(len(data)))

	return nil
}

func renderIntrinsics(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}
