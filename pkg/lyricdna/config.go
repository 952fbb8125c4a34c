package lyricdna

import "time"

// Config holds engine construction parameters. Use the Option funcs.
type Config struct {
	// GapGlyph is shown on the current surface during intros and
	// instrumental gaps.
	GapGlyph string

	// Latency compensation terms, summed into the clock's server position.
	LineSyncLatencySec float64
	WordSyncLatencySec float64
	ProviderOffsetSec  float64

	// LineChangeSafeZone is the window after a line change during which the
	// clock may snap bidirectionally.
	LineChangeSafeZone time.Duration

	// OutroThresholdSec is how long past the last line's end the outro event
	// fires. OutroClearDelay is the cancelable delay before the display is
	// cleared afterwards.
	OutroThresholdSec float64
	OutroClearDelay   time.Duration

	// LineSwapDelay is the fade duration of the line-swap sequence; word
	// updates for the incoming line resume once it elapses.
	LineSwapDelay time.Duration

	Logger Logger
	Sink   RenderSink
}

type Option func(*Config)

func WithGapGlyph(glyph string) Option {
	return func(c *Config) {
		c.GapGlyph = glyph
	}
}

func WithLineSyncLatency(sec float64) Option {
	return func(c *Config) {
		c.LineSyncLatencySec = sec
	}
}

func WithWordSyncLatency(sec float64) Option {
	return func(c *Config) {
		c.WordSyncLatencySec = sec
	}
}

func WithProviderOffset(sec float64) Option {
	return func(c *Config) {
		c.ProviderOffsetSec = sec
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithSink(sink RenderSink) Option {
	return func(c *Config) {
		c.Sink = sink
	}
}

func defaultConfig() *Config {
	return &Config{
		GapGlyph:           "♪",
		LineChangeSafeZone: 240 * time.Millisecond,
		OutroThresholdSec:  6.0,
		OutroClearDelay:    400 * time.Millisecond,
		LineSwapDelay:      120 * time.Millisecond,
	}
}
