// Package ov holds the outward view types of the HTTP API.
package ov

import "stereo-shutter/pkg/utils/ps"

type Status struct {
	Recording      bool   `json:"recording"`
	ExportEnabled  bool   `json:"exportEnabled"`
	ExportedFrames uint64 `json:"exportedFrames"`
	QueuedFrames   int    `json:"queuedFrames"`
	DroppedFrames  uint64 `json:"droppedFrames"`
	BytesWritten   string `json:"bytesWritten"`
	SessionDir     string `json:"sessionDir"`

	CPU    ps.CPU    `json:"cpu"`
	Memory ps.Memory `json:"memory"`
	Disk   ps.Disk   `json:"disk"`
}

type VideoRequest struct {
	FPS     int `json:"fps"`
	Quality int `json:"quality"`
}

type VideoResult struct {
	Path   string `json:"path"`
	Frames int    `json:"frames"`
}
