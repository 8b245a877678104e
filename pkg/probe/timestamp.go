package probe

import (
	"fmt"
	"strconv"
	"time"
)

// Seconds normalizes a probed timestamp value to fractional seconds.
// Floats already carry seconds; integers carry nanosecond counts. Any
// other value gets one generic numeric parse: integer text as
// nanoseconds, decimal text as seconds. Unparsable values are absent,
// not an error.
func Seconds(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case time.Duration:
		return x.Seconds(), true
	case int:
		return float64(x) / 1e9, true
	case int32:
		return float64(x) / 1e9, true
	case int64:
		return float64(x) / 1e9, true
	case uint:
		return float64(x) / 1e9, true
	case uint32:
		return float64(x) / 1e9, true
	case uint64:
		return float64(x) / 1e9, true
	case nil:
		return 0, false
	}

	s := fmt.Sprint(v)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(n) / 1e9, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}

	return 0, false
}

// Unified picks a record's timestamp: left eye first, then right, then
// the scheduler's wall-clock tick time. Exactly one is always available.
func Unified(left, right *float64, fallback time.Time) float64 {
	if left != nil {
		return *left
	}
	if right != nil {
		return *right
	}

	return float64(fallback.UnixNano()) / 1e9
}
