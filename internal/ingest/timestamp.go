package ingest

import "time"

// TimestampFloor is 2024-01-01T00:00:00Z. Devices whose clock was never set
// report epoch-zero (or near it) timestamps; anything at or below the floor
// is replaced with server time before persistence so stale clocks cannot
// corrupt historical ordering.
const TimestampFloor int64 = 1704067200

// ReconcileTimestamp returns the timestamp to persist and whether the
// candidate was substituted with server time.
func ReconcileTimestamp(candidate *int64, now time.Time) (int64, bool) {
	if candidate != nil && *candidate > TimestampFloor {
		return *candidate, false
	}
	return now.Unix(), true
}
