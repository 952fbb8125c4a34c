// Package lyricdna implements the word-timing synchronization engine: a
// virtual playback clock reconciled against noisy remote position samples, a
// render-position smoother, and the per-frame state machine that turns
// locator output into idempotent render commands.
package lyricdna

import (
	"sync"
	"time"

	"github.com/himanishpuri/LyricDNA/pkg/logger"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

// SyncEngine owns all mutable synchronization state for one track: the clock,
// the smoother, the cached render indices, and the token counter. Nothing
// outside this package mutates them directly.
type SyncEngine struct {
	mu   sync.Mutex
	cfg  *Config
	log  Logger
	sink RenderSink

	tmap timing.Map

	clk    clock
	smooth smoother

	state      timing.Kind
	stateKnown bool
	activeLine int

	lastWordIndex    int
	lastWordProgress float64

	lineChangedAt   time.Time
	lineChangeValid bool

	tok          Token
	pendingSwap  *deferred
	pendingClear *deferred
	outroFired   bool

	wasPlaying    bool
	userOffsetSec float64
	safeZoneNext  bool
}

// NewSyncEngine builds an engine with the given options. The zero
// configuration is usable: no sink, default glyph, default logger.
func NewSyncEngine(opts ...Option) *SyncEngine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	e := &SyncEngine{
		cfg:           cfg,
		log:           cfg.Logger,
		sink:          cfg.Sink,
		activeLine:    -1,
		lastWordIndex: -1,
	}
	e.clk = newClock(e.baseCompensation())
	return e
}

func (e *SyncEngine) baseCompensation() float64 {
	return e.cfg.LineSyncLatencySec + e.cfg.WordSyncLatencySec + e.cfg.ProviderOffsetSec + e.userOffsetSec
}

// LoadTimingMap replaces the current timing map and resets the cached render
// state. The clock is left alone: position estimation survives a map reload.
func (e *SyncEngine) LoadTimingMap(m timing.Map) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tmap = timing.Sanitize(m)
	e.resetRenderState()
	e.log.Debugf("timing map loaded: %d lines, %d markers", len(e.tmap.Lines), len(e.tmap.InstrumentalMarkers))
}

// UpdateAnchor records a fresh position sample from the poller. Safe to call
// at arbitrary, bursty intervals; only the latest sample is kept.
func (e *SyncEngine) UpdateAnchor(positionSec float64, observedAt time.Time, playing bool, latencySec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playing && !e.wasPlaying {
		// Re-entering playback re-arms the outro one-shot.
		e.outroFired = false
	}
	e.wasPlaying = playing

	e.clk.setAnchor(Anchor{
		PositionSec: positionSec,
		ObservedAt:  observedAt,
		Playing:     playing,
		LatencySec:  latencySec,
	})
}

// SetUserOffset sets the per-song user latency offset, in seconds.
func (e *SyncEngine) SetUserOffset(sec float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userOffsetSec = sec
	e.clk.compensationSec = e.baseCompensation()
}

// Reset clears the clock and all cached render state for a track change.
func (e *SyncEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clk.reset()
	e.smooth = smoother{}
	e.resetRenderState()
	e.safeZoneNext = false
	e.wasPlaying = false
}

// resetRenderState clears everything except the clock. Caller holds the lock.
func (e *SyncEngine) resetRenderState() {
	e.stateKnown = false
	e.activeLine = -1
	e.lastWordIndex = -1
	e.lastWordProgress = 0
	e.lineChangeValid = false
	e.tok++
	e.pendingSwap = nil
	e.pendingClear = nil
	e.outroFired = false
}

// Tick runs one frame: advance the clock, locate, transition the state
// machine, and emit render commands. It never blocks and performs no I/O.
func (e *SyncEngine) Tick(frameWallclock time.Time) TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	visual := e.clk.advance(frameWallclock, e.safeZoneNext)
	smoothed := e.smooth.advance(visual)

	res := TickResult{
		PositionSec: visual,
		LineIndex:   -1,
		WordIndex:   -1,
	}

	// Deferred actions fire cooperatively, and only with a current token.
	if e.pendingClear.due(frameWallclock, e.tok) {
		e.pendingClear = nil
		e.emit(&res, RenderCommand{Kind: CmdClearAll})
	}
	if e.pendingSwap.due(frameWallclock, e.tok) {
		// Line-swap fade finished; word updates resume this frame.
		e.pendingSwap = nil
	}

	loc := timing.Locate(visual, e.tmap)
	res.State = loc.Kind
	res.LineIndex = loc.LineIndex
	res.WordIndex = loc.WordIndex
	res.WordProgress = loc.WordProgress

	safeZone := false
	switch loc.Kind {
	case timing.KindIntro:
		e.tickIntro(&res)
		safeZone = true
	case timing.KindGap:
		e.tickGap(&res, loc)
		safeZone = true
	case timing.KindOutro:
		e.tickOutro(&res, loc, frameWallclock, visual)
		safeZone = true
	case timing.KindLine:
		safeZone = e.tickLine(&res, loc, frameWallclock, smoothed)
	}
	e.safeZoneNext = safeZone

	return res
}

func (e *SyncEngine) tickIntro(res *TickResult) {
	if e.stateKnown && e.state == timing.KindIntro {
		return
	}
	e.enterState(timing.KindIntro, -1)

	e.emit(res, RenderCommand{Kind: CmdClearAll})
	e.emit(res, RenderCommand{Kind: CmdSetCurrentWordStates, LineIndex: -1, Text: e.cfg.GapGlyph})
}

func (e *SyncEngine) tickGap(res *TickResult, loc timing.LocateResult) {
	if e.stateKnown && e.state == timing.KindGap && e.activeLine == loc.LineIndex {
		return
	}
	e.enterState(timing.KindGap, loc.LineIndex)

	e.emit(res, RenderCommand{Kind: CmdSetCurrentWordStates, LineIndex: -1, Text: e.cfg.GapGlyph})
	// "Just finished" semantics: the line that ended is the preceding
	// context, never the current surface.
	e.emit(res, RenderCommand{Kind: CmdSetSurroundingLines, PrevLine: loc.PrevLine, NextLine: loc.NextLine})
}

func (e *SyncEngine) tickOutro(res *TickResult, loc timing.LocateResult, frame time.Time, visual float64) {
	if !e.stateKnown || e.state != timing.KindOutro {
		e.enterState(timing.KindOutro, -1)

		if loc.PrevLine >= 0 && loc.PrevLine < len(e.tmap.Lines) {
			line := e.tmap.Lines[loc.PrevLine]
			e.emit(res, RenderCommand{Kind: CmdSetSurroundingLines, PrevLine: loc.PrevLine - 1, NextLine: -1})
			e.emit(res, RenderCommand{
				Kind:      CmdSetCurrentWordStates,
				LineIndex: loc.PrevLine,
				Text:      line.Text,
				Words:     allSungStates(line),
			})
		}
	}

	if visual-loc.OutroStartSec >= e.cfg.OutroThresholdSec && !e.outroFired {
		e.outroFired = true
		res.OutroReached = true

		e.tok++
		e.pendingSwap = nil
		e.emit(res, RenderCommand{Kind: CmdSetSurroundingLines, PrevLine: -1, NextLine: -1})
		e.pendingClear = &deferred{fireAt: frame.Add(e.cfg.OutroClearDelay), tok: e.tok}
		e.log.Debugf("outro reached at %.2fs", visual)
	}
}

func (e *SyncEngine) tickLine(res *TickResult, loc timing.LocateResult, frame time.Time, smoothed float64) bool {
	if loc.LineIndex < 0 || loc.LineIndex >= len(e.tmap.Lines) {
		// Map and locator disagree; degrade to the glyph instead of failing.
		e.log.Warnf("line %d out of range, degrading to glyph", loc.LineIndex)
		if !e.stateKnown || e.state != timing.KindGap || e.activeLine != -1 {
			e.enterState(timing.KindGap, -1)
			e.emit(res, RenderCommand{Kind: CmdSetCurrentWordStates, LineIndex: -1, Text: e.cfg.GapGlyph})
		}
		return true
	}

	line := e.tmap.Lines[loc.LineIndex]

	if !e.stateKnown || e.state != timing.KindLine || e.activeLine != loc.LineIndex {
		// Line change: invalidate any pending fade or clear, open the
		// post-change correction window, rebuild content.
		e.tok++
		e.pendingClear = nil
		e.pendingSwap = &deferred{fireAt: frame.Add(e.cfg.LineSwapDelay), tok: e.tok}
		e.lineChangedAt = frame
		e.lineChangeValid = true
		e.enterState(timing.KindLine, loc.LineIndex)

		e.emit(res, RenderCommand{Kind: CmdSetSurroundingLines, PrevLine: loc.PrevLine, NextLine: loc.NextLine})
		e.emitWordStates(res, loc, line, smoothed)
		return e.inLineChangeWindow(frame)
	}

	// Same line: only the active word's visual state moves, and not while a
	// swap fade is still pending.
	if e.pendingSwap == nil {
		progress := timing.WordProgressAt(line, loc.WordIndex, smoothed)
		if loc.WordIndex != e.lastWordIndex || progress != e.lastWordProgress {
			e.emitWordStates(res, loc, line, smoothed)
		}
	}

	return loc.AllSung || e.inLineChangeWindow(frame)
}

func (e *SyncEngine) inLineChangeWindow(frame time.Time) bool {
	return e.lineChangeValid && frame.Sub(e.lineChangedAt) <= e.cfg.LineChangeSafeZone
}

func (e *SyncEngine) enterState(kind timing.Kind, lineIndex int) {
	e.state = kind
	e.stateKnown = true
	e.activeLine = lineIndex
	e.lastWordIndex = -1
	e.lastWordProgress = 0
}

func (e *SyncEngine) emitWordStates(res *TickResult, loc timing.LocateResult, line timing.Line, smoothed float64) {
	e.emit(res, RenderCommand{
		Kind:      CmdSetCurrentWordStates,
		LineIndex: loc.LineIndex,
		Text:      line.Text,
		Words:     wordStates(line, loc, smoothed),
	})
	e.lastWordIndex = loc.WordIndex
	e.lastWordProgress = timing.WordProgressAt(line, loc.WordIndex, smoothed)
}

// wordStates builds the per-word visual states. Selection comes from the raw
// clock position (loc); the active word's progress uses the smoothed one.
func wordStates(line timing.Line, loc timing.LocateResult, smoothed float64) []WordState {
	if len(line.Words) == 0 {
		return nil
	}
	states := make([]WordState, len(line.Words))
	for i := range states {
		switch {
		case loc.AllSung || i < loc.WordIndex:
			states[i] = WordState{State: WordSung, Progress: 1}
		case i == loc.WordIndex:
			states[i] = WordState{State: WordActive, Progress: timing.WordProgressAt(line, i, smoothed)}
		default:
			states[i] = WordState{State: WordUnsung}
		}
	}
	return states
}

func allSungStates(line timing.Line) []WordState {
	if len(line.Words) == 0 {
		return nil
	}
	states := make([]WordState, len(line.Words))
	for i := range states {
		states[i] = WordState{State: WordSung, Progress: 1}
	}
	return states
}

func (e *SyncEngine) emit(res *TickResult, cmd RenderCommand) {
	res.Commands = append(res.Commands, cmd)
	if e.sink == nil {
		return
	}
	switch cmd.Kind {
	case CmdSetCurrentWordStates:
		e.sink.SetCurrentWordStates(cmd.LineIndex, cmd.Text, cmd.Words)
	case CmdSetSurroundingLines:
		e.sink.SetSurroundingLines(cmd.PrevLine, cmd.NextLine)
	case CmdClearAll:
		e.sink.ClearAll()
	}
}
