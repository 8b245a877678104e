package camera

import "fmt"

// Pose is one eye's rigid transform: position plus an x,y,z,w quaternion.
type Pose struct {
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"`
}

// Image is a packed RGB24 pixel buffer borrowed from a source. The buffer
// stays valid because sources publish a fresh buffer per frame instead of
// mutating the old one, but consumers should still encode or copy within
// the tick that observed it.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// Intrinsics is the pinhole model of a calibrated eye.
type Intrinsics struct {
	Fx float64 `json:"fx" toml:"fx"`
	Fy float64 `json:"fy" toml:"fy"`
	Cx float64 `json:"cx" toml:"cx"`
	Cy float64 `json:"cy" toml:"cy"`
}

func (i Intrinsics) String() string {
	return fmt.Sprintf("fx=%g fy=%g cx=%g cy=%g", i.Fx, i.Fy, i.Cx, i.Cy)
}

// Source is one camera of the stereo rig. Implementations may expose
// additional per-frame metadata (intrinsics, capture timestamps) through
// optional methods resolved by the capability probe; those are not part
// of this interface because the exposed surface varies across hardware.
type Source interface {
	IsReady() bool
	Image() *Image
	Pose() Pose
}
