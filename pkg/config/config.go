// Package config loads the capture rig configuration from TOML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"stereo-shutter/pkg/camera"
)

type Camera struct {
	Device      string             `toml:"device"`
	Width       int                `toml:"width"`
	Height      int                `toml:"height"`
	Position    [3]float64         `toml:"position"`
	Orientation [4]float64         `toml:"orientation"`
	Intrinsics  *camera.Intrinsics `toml:"intrinsics"`
}

func (c Camera) Pose() camera.Pose {
	return camera.Pose{
		Position:    c.Position,
		Orientation: c.Orientation,
	}
}

type Capture struct {
	IntervalMs int `toml:"interval_ms"`
	TickMs     int `toml:"tick_ms"`
}

type Export struct {
	Root           string `toml:"root"`
	QueueCapacity  int    `toml:"queue_capacity"`
	DrainBudget    int    `toml:"drain_budget"`
	WarnCooldownMs int    `toml:"warn_cooldown_ms"`
}

// Probe holds the candidate method name lists for optional source
// metadata, tried in order. The exact names vary across camera backends,
// which is why they are configuration rather than interface contract.
type Probe struct {
	Intrinsics []string `toml:"intrinsics"`
	Timestamps []string `toml:"timestamps"`
}

type NTP struct {
	Server string `toml:"server"`
}

type Config struct {
	Capture Capture `toml:"capture"`
	Export  Export  `toml:"export"`
	Probe   Probe   `toml:"probe"`
	Left    Camera  `toml:"left"`
	Right   Camera  `toml:"right"`
	NTP     NTP     `toml:"ntp"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Capture.IntervalMs = 200
	cfg.Capture.TickMs = 50
	cfg.Export.Root = "./stereo-shutter"
	cfg.Export.QueueCapacity = 300
	cfg.Export.DrainBudget = 1
	cfg.Export.WarnCooldownMs = 1000
	cfg.Probe.Intrinsics = []string{"Intrinsics", "GetIntrinsics", "CameraIntrinsics"}
	cfg.Probe.Timestamps = []string{"FrameTimestamp", "GetFrameTimestamp", "Timestamp"}
	cfg.Left = Camera{
		Device:      "/dev/video0",
		Width:       1280,
		Height:      720,
		Position:    [3]float64{-0.032, 0, 0},
		Orientation: [4]float64{0, 0, 0, 1},
	}
	cfg.Right = Camera{
		Device:      "/dev/video1",
		Width:       1280,
		Height:      720,
		Position:    [3]float64{0.032, 0, 0},
		Orientation: [4]float64{0, 0, 0, 1},
	}
	cfg.NTP.Server = "pool.ntp.org"

	return cfg
}

// Load reads path over the defaults. A missing path returns the defaults
// unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Export.Root == "" {
		return fmt.Errorf("export.root can not be empty")
	}
	if c.Left.Device == "" || c.Right.Device == "" {
		return fmt.Errorf("both camera devices are required")
	}
	if c.Left.Width <= 0 || c.Left.Height <= 0 || c.Right.Width <= 0 || c.Right.Height <= 0 {
		return fmt.Errorf("camera dimensions must be positive")
	}
	if c.Capture.IntervalMs < 0 {
		return fmt.Errorf("capture.interval_ms can not be negative")
	}
	return nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Capture.IntervalMs) * time.Millisecond
}

func (c *Config) Tick() time.Duration {
	return time.Duration(c.Capture.TickMs) * time.Millisecond
}

func (c *Config) WarnCooldown() time.Duration {
	return time.Duration(c.Export.WarnCooldownMs) * time.Millisecond
}
