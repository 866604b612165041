// Package window maps wall-clock time onto fixed-duration buckets.
package window

import "time"

// DefaultDuration is the game rotation window.
const DefaultDuration = 120 * time.Second

// Window identifies the bucket containing an instant.
type Window struct {
	ID        int64
	Remaining time.Duration
}

// Of returns the window containing now. The id is floor(unix(now) / d) and
// Remaining is never zero: at an exact boundary it is the full duration.
func Of(now time.Time, d time.Duration) Window {
	size := int64(d / time.Second)
	if size <= 0 {
		size = int64(DefaultDuration / time.Second)
	}

	sec := now.Unix()
	id, rem := sec/size, sec%size
	if rem < 0 {
		id--
		rem += size
	}

	return Window{
		ID:        id,
		Remaining: time.Duration(size-rem) * time.Second,
	}
}

// Start returns the first instant of window id.
func Start(id int64, d time.Duration) time.Time {
	return time.Unix(id*int64(d/time.Second), 0).UTC()
}
