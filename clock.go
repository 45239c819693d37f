//go:build !fastrace_disable

package fastrace

import (
	"time"
)

// Instant is a monotonic offset from the process-wide anchor, measured in
// nanoseconds. Durations computed from two Instants are immune to wall
// clock adjustments; absolute timestamps are recovered via anchor.toWallNS.
type Instant int64

// anchor pairs one monotonic reading with its corresponding wall-clock
// reading so that cheap monotonic offsets can be converted back to
// meaningful absolute timestamps at report time (spec §4.1).
type anchor struct {
	mono time.Time
	wall time.Time
}

func newAnchor(clock Clock) anchor {
	now := clock.Now()
	return anchor{mono: now, wall: now}
}

// now returns the current Instant relative to this anchor.
func (a anchor) now(clock Clock) Instant {
	return Instant(clock.Now().Sub(a.mono))
}

// toWallNS converts a monotonic Instant into absolute Unix nanoseconds.
func (a anchor) toWallNS(i Instant) int64 {
	return a.wall.Add(time.Duration(i)).UnixNano()
}
