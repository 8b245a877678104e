package video

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/icza/mjpeg"

	imageutil "stereo-shutter/pkg/utils/image"
)

const (
	DefaultFPS     = 15
	DefaultQuality = 90
)

type Builder struct {
	width  int
	height int
	fps    int

	cnt int
	aw  mjpeg.AviWriter
}

func NewBuilder(path string, width, height, fps int) (*Builder, error) {
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, err
	}

	return &Builder{
		width:  width,
		height: height,
		fps:    fps,
		aw:     aw,
	}, nil
}

// Add appends one JPEG-encoded frame.
func (b *Builder) Add(frame []byte) error {
	if err := b.aw.AddFrame(frame); err != nil {
		return err
	}
	b.cnt++

	return nil
}

func (b *Builder) Close() error {
	return b.aw.Close()
}

func (b *Builder) Count() int {
	return b.cnt
}

// BuildSession assembles the left-eye frames of an exported session into
// a review AVI written next to the session directory. Frame directories
// are zero-padded so lexical order is index order. Frames with a missing
// or mismatched left image are skipped. Returns the output path and the
// number of frames added.
func BuildSession(sessionDir, leftImageFile string, fps, quality int) (string, int, error) {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if quality <= 0 {
		quality = DefaultQuality
	}

	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		return "", 0, err
	}

	out := sessionDir + ".avi"
	var b *Builder
	var buf bytes.Buffer
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "frame_") {
			continue
		}
		f, err := os.Open(filepath.Join(sessionDir, e.Name(), leftImageFile))
		if err != nil {
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			continue
		}

		if b == nil {
			w, h := img.Bounds().Dx(), img.Bounds().Dy()
			if b, err = NewBuilder(out, w, h, fps); err != nil {
				return "", 0, err
			}
		} else if img.Bounds().Dx() != b.width || img.Bounds().Dy() != b.height {
			continue
		}

		buf.Reset()
		if err := imageutil.EncodeJPEG(img, &buf, quality); err != nil {
			return "", 0, err
		}
		if err := b.Add(buf.Bytes()); err != nil {
			return "", 0, err
		}
	}

	if b == nil {
		return "", 0, fmt.Errorf("no exported frames under %s", sessionDir)
	}
	if err := b.Close(); err != nil {
		return "", 0, err
	}

	return out, b.Count(), nil
}
