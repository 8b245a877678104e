package utils

import (
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
)

var clockOffset atomic.Int64

// SyncClock queries the NTP server once and records the measured local
// clock offset. Timestamps in exported frames must be comparable across
// capture rigs, so a failed sync is worth a warning but not fatal.
func SyncClock(server string) error {
	resp, err := ntp.Query(server)
	if err != nil {
		return err
	}
	if err := resp.Validate(); err != nil {
		return err
	}
	clockOffset.Store(int64(resp.ClockOffset))
	logger.Infof("clock: ntp offset %s (server %s)", resp.ClockOffset, server)

	return nil
}

// Now returns the local time corrected by the last measured NTP offset.
func Now() time.Time {
	return time.Now().Add(time.Duration(clockOffset.Load()))
}
