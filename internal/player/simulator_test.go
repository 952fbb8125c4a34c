package player

import (
	"math"
	"testing"
	"time"
)

func TestSimulatorJitterBounded(t *testing.T) {
	s := NewSimulator(300, WithJitter(0.05), WithSeed(1))
	s.Play()

	now := time.Now().Add(2 * time.Second)
	for i := 0; i < 100; i++ {
		sample := s.Sample(now)
		truth := s.positionLocked(now)
		if math.Abs(sample.PositionSec-truth) > 0.05 {
			t.Fatalf("sample %d: noise %f exceeds the jitter bound", i, sample.PositionSec-truth)
		}
		if !sample.Playing {
			t.Fatal("sample reports paused while playing")
		}
	}
}

func TestSimulatorPauseFreezesPosition(t *testing.T) {
	s := NewSimulator(300, WithJitter(0), WithSeed(1))
	s.Play()
	time.Sleep(20 * time.Millisecond)
	s.Pause()

	first := s.Sample(time.Now())
	if first.Playing {
		t.Error("sample reports playing after Pause")
	}

	second := s.Sample(time.Now().Add(time.Second))
	if second.PositionSec != first.PositionSec {
		t.Errorf("paused position moved: %f -> %f", first.PositionSec, second.PositionSec)
	}
}

func TestSimulatorSeek(t *testing.T) {
	s := NewSimulator(300, WithJitter(0), WithSeed(1))
	s.Play()
	s.SeekTo(90 * time.Second)

	got := s.Sample(time.Now()).PositionSec
	if got < 90 || got > 90.5 {
		t.Errorf("position after seek = %f, expected about 90", got)
	}
}

func TestSimulatorDoneClampsAtDuration(t *testing.T) {
	s := NewSimulator(1, WithJitter(0), WithSeed(1))
	s.Play()

	future := time.Now().Add(5 * time.Second)
	if !s.Done(future) {
		t.Error("expected Done past the track duration")
	}
	if got := s.Sample(future).PositionSec; got != 1 {
		t.Errorf("position past the end = %f, expected the duration clamp at 1", got)
	}
}

func TestSimulatorLatencyReported(t *testing.T) {
	s := NewSimulator(300, WithLatency(0.08), WithSeed(1))
	s.Play()

	if got := s.Sample(time.Now()).LatencySec; got != 0.08 {
		t.Errorf("LatencySec = %f, expected 0.08", got)
	}
}
