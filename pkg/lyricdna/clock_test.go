package lyricdna

import (
	"math"
	"testing"
	"time"
)

var clockBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestClockSeekSnap(t *testing.T) {
	c := newClock(0)

	c.setAnchor(Anchor{PositionSec: 10.0, ObservedAt: clockBase, Playing: true})
	pos := c.advance(clockBase, false)
	if math.Abs(pos-10.0) > 1e-3 {
		t.Fatalf("initial snap: pos = %f, expected 10.0", pos)
	}

	// A 10s jump is a seek: snap, don't glide.
	frame := clockBase.Add(50 * time.Millisecond)
	c.setAnchor(Anchor{PositionSec: 20.0, ObservedAt: frame, Playing: true})
	pos = c.advance(frame, false)
	if math.Abs(pos-20.0) > 1e-3 {
		t.Errorf("seek snap: pos = %f, expected within 1ms of 20.0", pos)
	}
	if c.speed != 1.0 {
		t.Errorf("speed after snap = %f, expected 1.0", c.speed)
	}
	if c.filteredDrift != 0 {
		t.Errorf("filteredDrift after snap = %f, expected 0", c.filteredDrift)
	}
}

func TestClockMonotonicUnderJitter(t *testing.T) {
	c := newClock(0)
	c.setAnchor(Anchor{PositionSec: 0, ObservedAt: clockBase, Playing: true})
	c.advance(clockBase, false)

	// Deterministic +-40ms jitter, well under the snap threshold.
	noise := []float64{0.04, -0.03, 0.02, -0.04, 0.01, -0.02, 0.03, -0.01}

	prev := 0.0
	for i := 1; i <= 200; i++ {
		frame := clockBase.Add(time.Duration(i) * 33 * time.Millisecond)
		if i%3 == 0 {
			truth := frame.Sub(clockBase).Seconds()
			c.setAnchor(Anchor{
				PositionSec: truth + noise[(i/3)%len(noise)],
				ObservedAt:  frame,
				Playing:     true,
			})
		}
		pos := c.advance(frame, false)
		if pos < prev {
			t.Fatalf("frame %d: position went backwards: %f -> %f", i, prev, pos)
		}
		prev = pos
	}

	// The clock should have converged near the true position.
	truth := 200 * 0.033
	if math.Abs(prev-truth) > 0.2 {
		t.Errorf("final position %f too far from truth %f", prev, truth)
	}
}

func TestClockDeadbandStability(t *testing.T) {
	c := newClock(0)
	c.setAnchor(Anchor{PositionSec: 0, ObservedAt: clockBase, Playing: true})
	c.advance(clockBase, false)

	// Alternating +-20ms drift stays inside the 30ms deadband after
	// filtering; the speed must never leave 1.0.
	for i := 1; i <= 50; i++ {
		frame := clockBase.Add(time.Duration(i) * 33 * time.Millisecond)
		truth := frame.Sub(clockBase).Seconds()
		offset := 0.02
		if i%2 == 0 {
			offset = -0.02
		}
		c.setAnchor(Anchor{PositionSec: truth + offset, ObservedAt: frame, Playing: true})
		c.advance(frame, false)
		if c.speed != 1.0 {
			t.Fatalf("frame %d: speed = %f, expected exactly 1.0 inside deadband", i, c.speed)
		}
	}
}

func TestClockSafeZoneSnap(t *testing.T) {
	c := newClock(0)
	c.setAnchor(Anchor{PositionSec: 10.0, ObservedAt: clockBase, Playing: true})
	c.advance(clockBase, false)

	// 100ms drift: inside the safe-zone correction band.
	frame := clockBase.Add(10 * time.Millisecond)
	c.setAnchor(Anchor{PositionSec: 9.91, ObservedAt: frame, Playing: true})

	pos := c.advance(frame, true)
	if math.Abs(pos-9.91) > 1e-9 {
		t.Errorf("safe-zone snap: pos = %f, expected 9.91 (backward correction allowed)", pos)
	}
}

func TestClockNoSafeZoneSnapOutsideBand(t *testing.T) {
	c := newClock(0)
	c.setAnchor(Anchor{PositionSec: 10.0, ObservedAt: clockBase, Playing: true})
	c.advance(clockBase, false)

	// 20ms drift is below the safe-zone minimum: no snap even in a safe zone.
	frame := clockBase.Add(10 * time.Millisecond)
	c.setAnchor(Anchor{PositionSec: 10.02, ObservedAt: frame, Playing: true})

	pos := c.advance(frame, true)
	if pos < 10.0 {
		t.Errorf("position went backwards without a designated snap: %f", pos)
	}
	if pos > 10.015 {
		t.Errorf("unexpected snap for drift below the safe-zone band: pos = %f", pos)
	}
}

func TestClockFreezesWhenPaused(t *testing.T) {
	c := newClock(0)
	c.setAnchor(Anchor{PositionSec: 5.0, ObservedAt: clockBase, Playing: true})
	c.advance(clockBase, false)

	c.setAnchor(Anchor{PositionSec: 5.0, ObservedAt: clockBase, Playing: false})
	for i := 1; i <= 10; i++ {
		frame := clockBase.Add(time.Duration(i) * time.Second)
		pos := c.advance(frame, false)
		if math.Abs(pos-5.0) > 1e-3 {
			t.Fatalf("paused clock moved: pos = %f", pos)
		}
	}
}

func TestClockSpeedBounds(t *testing.T) {
	tests := []struct {
		drift    float64
		expected float64
	}{
		{0.4, maxSpeed},  // large positive drift clamps high
		{-0.4, minSpeed}, // large negative drift clamps low
		{0.05, 1.04},     // proportional inside bounds
		{0.1, 1.08},
	}

	for _, tt := range tests {
		got := clampF(1.0+tt.drift*speedGain, minSpeed, maxSpeed)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("drift %f: speed = %f, expected %f", tt.drift, got, tt.expected)
		}
	}
}

func TestClockCompensationApplied(t *testing.T) {
	c := newClock(0.5)

	c.setAnchor(Anchor{PositionSec: 10.0, ObservedAt: clockBase, Playing: true, LatencySec: 0.1})
	pos := c.advance(clockBase, false)
	if math.Abs(pos-10.6) > 1e-9 {
		t.Errorf("pos = %f, expected 10.6 (anchor latency plus configured compensation)", pos)
	}
}
