package lyricdna

import (
	"math"
	"testing"
)

func TestSmootherPrimesWithoutLag(t *testing.T) {
	var s smoother

	if got := s.advance(42.0); got != 42.0 {
		t.Errorf("first advance = %f, expected 42.0 (no start-up lag)", got)
	}
}

func TestSmootherConverges(t *testing.T) {
	var s smoother
	s.prime(0)

	got := s.advance(1.0)
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("one step toward 1.0 = %f, expected 0.25", got)
	}

	for i := 0; i < 60; i++ {
		got = s.advance(1.0)
	}
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("after 60 frames: %f, expected convergence to 1.0", got)
	}
}

func TestSmootherTrailsTarget(t *testing.T) {
	var s smoother
	s.prime(0)

	prev := 0.0
	for i := 1; i <= 20; i++ {
		target := float64(i) * 0.033
		got := s.advance(target)
		if got > target {
			t.Fatalf("frame %d: smoothed %f overshot target %f", i, got, target)
		}
		if got < prev {
			t.Fatalf("frame %d: smoothed value went backwards: %f -> %f", i, prev, got)
		}
		prev = got
	}
}
