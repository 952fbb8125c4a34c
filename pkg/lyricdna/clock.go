package lyricdna

import (
	"math"
	"time"
)

// Clock tuning constants, all in seconds unless noted.
const (
	// snapThresholdSec: a raw drift beyond this is a seek or buffering event
	// and is corrected by an immediate snap.
	snapThresholdSec = 0.5

	// Safe-zone corrections snap bidirectionally when the raw drift lies in
	// (safeZoneMinSec, safeZoneMaxSec) and the frame is visually quiet.
	safeZoneMinSec = 0.03
	safeZoneMaxSec = 0.15

	// driftAlpha is the EMA coefficient for the filtered drift.
	driftAlpha = 0.3

	// deadbandSec: filtered drift below this is noise and is not chased.
	deadbandSec = 0.03

	// speedGain maps filtered drift to a speed correction, bounded by
	// minSpeed/maxSpeed so the clock glides instead of jumping.
	speedGain = 0.8
	minSpeed  = 0.90
	maxSpeed  = 1.10
)

// Anchor is the most recent externally observed playback position. It is
// replaced wholesale on every poll; only the latest one matters.
type Anchor struct {
	PositionSec float64
	ObservedAt  time.Time
	Playing     bool
	LatencySec  float64
}

// clock is the flywheel: a locally maintained, monotonic playback position
// estimate corrected toward the anchor without visible jumps. The position is
// non-decreasing while playing, except for the designated snap events.
type clock struct {
	visualSec     float64
	speed         float64
	filteredDrift float64
	lastFrame     time.Time
	started       bool

	anchor    Anchor
	hasAnchor bool

	// compensationSec sums the configured latency terms (line sync, word
	// sync, provider offset, per-song user offset). The anchor's own latency
	// term is added on top.
	compensationSec float64
}

func newClock(compensationSec float64) clock {
	return clock{speed: 1.0, compensationSec: compensationSec}
}

func (c *clock) setAnchor(a Anchor) {
	c.anchor = a
	c.hasAnchor = true
}

// reset returns the clock to a fresh state. Used for track changes and
// feature toggles only; drift corrections adjust state, they never recreate it.
func (c *clock) reset() {
	c.visualSec = 0
	c.speed = 1.0
	c.filteredDrift = 0
	c.started = false
	c.hasAnchor = false
	c.anchor = Anchor{}
}

func (c *clock) snapTo(serverSec float64) {
	c.visualSec = serverSec
	c.speed = 1.0
	c.filteredDrift = 0
}

// advance moves the clock to frameWallclock and returns the visual position.
// safeZone marks the frame as visually quiet, permitting bounded
// bidirectional snap corrections.
func (c *clock) advance(frameWallclock time.Time, safeZone bool) float64 {
	var dt float64
	if c.started {
		dt = frameWallclock.Sub(c.lastFrame).Seconds()
		if dt < 0 {
			dt = 0
		}
	}
	c.lastFrame = frameWallclock
	c.started = true

	if !c.hasAnchor || !c.anchor.Playing {
		// Paused: the clock freezes.
		return c.visualSec
	}

	serverSec := c.anchor.PositionSec +
		frameWallclock.Sub(c.anchor.ObservedAt).Seconds() +
		c.anchor.LatencySec + c.compensationSec

	rawDrift := serverSec - c.visualSec

	if math.Abs(rawDrift) > snapThresholdSec {
		c.snapTo(serverSec)
		return c.visualSec
	}

	if safeZone && math.Abs(rawDrift) > safeZoneMinSec && math.Abs(rawDrift) < safeZoneMaxSec {
		c.snapTo(serverSec)
		return c.visualSec
	}

	c.filteredDrift = c.filteredDrift*(1-driftAlpha) + rawDrift*driftAlpha

	if math.Abs(c.filteredDrift) < deadbandSec {
		c.speed = 1.0
	} else {
		c.speed = clampF(1.0+c.filteredDrift*speedGain, minSpeed, maxSpeed)
	}

	c.visualSec += dt * c.speed
	return c.visualSec
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
