package lyricdna

import (
	"context"
	"time"

	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

// Engine is the word-timing synchronization engine driven once per display
// refresh.
type Engine interface {
	LoadTimingMap(m timing.Map)
	UpdateAnchor(positionSec float64, observedAt time.Time, playing bool, latencySec float64)
	Tick(frameWallclock time.Time) TickResult
	Reset()
	SetUserOffset(sec float64)
}

// RenderSink receives display mutations. Implementations are assumed to apply
// them synchronously and cheaply; any concrete UI toolkit can sit behind this.
type RenderSink interface {
	SetCurrentWordStates(lineIndex int, text string, words []WordState)
	SetSurroundingLines(prevLine, nextLine int)
	ClearAll()
}

// TimingProvider supplies the timing map for a track, once per track change.
type TimingProvider interface {
	TimingMap(ctx context.Context, trackID string) (timing.Map, error)
}

// FrameSource delivers frame wallclock instants, decoupling the engine from
// any particular host redraw callback.
type FrameSource interface {
	Frames() <-chan time.Time
	Stop()
}

// Logger is the narrow logging surface the engine needs.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
