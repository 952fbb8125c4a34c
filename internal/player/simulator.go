// Package player simulates a remote, independently clocked audio player. The
// simulator produces the same kind of noisy, latency-bearing position samples
// a real poller would deliver, which is exactly what the sync engine has to
// smooth over.
package player

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Sample is one observed player position, mirroring what a polling
// collaborator reports.
type Sample struct {
	PositionSec float64
	ObservedAt  time.Time
	Playing     bool
	LatencySec  float64
}

// AnchorSink accepts position samples; the sync engine satisfies this.
type AnchorSink interface {
	UpdateAnchor(positionSec float64, observedAt time.Time, playing bool, latencySec float64)
}

// Simulator plays a virtual track of a fixed duration and reports its
// position with configurable jitter.
type Simulator struct {
	mu          sync.Mutex
	startedAt   time.Time
	startPos    float64
	playing     bool
	durationSec float64
	jitterSec   float64
	latencySec  float64
	rng         *rand.Rand
}

type Option func(*Simulator)

// WithJitter sets the maximum absolute position noise per sample.
func WithJitter(sec float64) Option {
	return func(s *Simulator) { s.jitterSec = sec }
}

// WithLatency sets the reported latency compensation per sample.
func WithLatency(sec float64) Option {
	return func(s *Simulator) { s.latencySec = sec }
}

// WithSeed fixes the jitter RNG seed for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

func NewSimulator(durationSec float64, opts ...Option) *Simulator {
	s := &Simulator{
		durationSec: durationSec,
		jitterSec:   0.04,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.startedAt = time.Now()
	s.playing = true
}

func (s *Simulator) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	s.startPos = s.positionLocked(time.Now())
	s.playing = false
}

func (s *Simulator) SeekTo(sec time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startPos = sec.Seconds()
	s.startedAt = time.Now()
}

func (s *Simulator) positionLocked(now time.Time) float64 {
	pos := s.startPos
	if s.playing {
		pos += now.Sub(s.startedAt).Seconds()
	}
	if s.durationSec > 0 && pos > s.durationSec {
		pos = s.durationSec
	}
	return pos
}

// Sample observes the current position with jitter applied, as a network
// poller would see it.
func (s *Simulator) Sample(now time.Time) Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	noise := (s.rng.Float64()*2 - 1) * s.jitterSec
	return Sample{
		PositionSec: s.positionLocked(now) + noise,
		ObservedAt:  now,
		Playing:     s.playing,
		LatencySec:  s.latencySec,
	}
}

// Done reports whether the virtual track has played to its end.
func (s *Simulator) Done(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durationSec > 0 && s.positionLocked(now) >= s.durationSec
}

// Poll pushes samples into the sink at the given interval until the context
// is canceled. Run it in its own goroutine.
func (s *Simulator) Poll(ctx context.Context, interval time.Duration, sink AnchorSink) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sample := s.Sample(now)
			sink.UpdateAnchor(sample.PositionSec, sample.ObservedAt, sample.Playing, sample.LatencySec)
		}
	}
}
