package lyricdna

import (
	"context"
	"time"
)

// TickerFrameSource is a FrameSource backed by a time.Ticker, for hosts
// without a native redraw callback.
type TickerFrameSource struct {
	ticker *time.Ticker
}

func NewTickerFrameSource(interval time.Duration) *TickerFrameSource {
	return &TickerFrameSource{ticker: time.NewTicker(interval)}
}

func (s *TickerFrameSource) Frames() <-chan time.Time {
	return s.ticker.C
}

func (s *TickerFrameSource) Stop() {
	s.ticker.Stop()
}

// Drive ticks the engine for every frame the source delivers until the
// context is canceled. onTick may be nil when a RenderSink is already
// attached to the engine.
func Drive(ctx context.Context, engine Engine, frames FrameSource, onTick func(TickResult)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-frames.Frames():
			result := engine.Tick(frame)
			if onTick != nil {
				onTick(result)
			}
		}
	}
}
