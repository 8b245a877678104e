package camera

import (
	"context"
	"sync"
	"time"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
	"go.uber.org/zap"

	"stereo-shutter/pkg/utils"
)

const DefaultFPS = 30

// Device is a V4L2-backed Source. A pump goroutine drains the driver's
// output channel into a latest-frame holder so Image never blocks on the
// hardware.
type Device struct {
	devName string
	width   int
	height  int
	pose    Pose
	calib   *Intrinsics

	lock    sync.Mutex
	dev     *device.Device
	cancel  context.CancelFunc
	frame   *Image
	frameAt time.Time

	logger *zap.SugaredLogger
}

// OpenDevice opens and starts devName at the requested RGB24 resolution.
// calib may be nil for an uncalibrated eye.
func OpenDevice(ctx context.Context, devName string, width, height int, pose Pose, calib *Intrinsics) (*Device, error) {
	dev, err := device.Open(
		devName,
		device.WithBufferSize(1),
		device.WithFPS(DefaultFPS),
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtRGB24,
			Width:       uint32(width),
			Height:      uint32(height),
			Field:       v4l2.FieldNone,
		}),
	)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := dev.Start(runCtx); err != nil {
		cancel()
		dev.Close()
		return nil, err
	}

	d := &Device{
		devName: devName,
		width:   width,
		height:  height,
		pose:    pose,
		calib:   calib,
		dev:     dev,
		cancel:  cancel,
		logger:  utils.GetLogger(),
	}
	go d.pump(runCtx, dev.GetOutput())

	return d, nil
}

// pump replaces the held frame wholesale so buffers handed out by Image
// are never written to again.
func (d *Device) pump(ctx context.Context, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-frames:
			if !ok {
				d.logger.Warnf("camera %s: output channel closed", d.devName)
				return
			}
			if len(raw) == 0 {
				continue
			}
			img := &Image{
				Pix:    append([]byte(nil), raw...),
				Width:  d.width,
				Height: d.height,
			}
			d.lock.Lock()
			d.frame = img
			d.frameAt = time.Now()
			d.lock.Unlock()
		}
	}
}

func (d *Device) IsReady() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.dev != nil && d.frame != nil
}

func (d *Device) Image() *Image {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.frame
}

func (d *Device) Pose() Pose {
	return d.pose
}

// FrameTimestamp reports the arrival time of the held frame in unix
// seconds. Resolved through the capability probe.
func (d *Device) FrameTimestamp() (float64, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.frame == nil {
		return 0, false
	}
	return float64(d.frameAt.UnixNano()) / 1e9, true
}

// Intrinsics reports the configured calibration. Resolved through the
// capability probe; absent for uncalibrated eyes.
func (d *Device) Intrinsics() (Intrinsics, bool) {
	if d.calib == nil {
		return Intrinsics{}, false
	}
	return *d.calib, true
}

func (d *Device) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.dev == nil {
		return nil
	}
	d.cancel()
	err := d.dev.Close()
	d.dev = nil
	d.frame = nil

	return err
}
