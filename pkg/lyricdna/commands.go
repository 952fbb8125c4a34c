package lyricdna

import "github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"

// WordVisual is the display state of one word on the current surface.
type WordVisual int

const (
	WordUnsung WordVisual = iota
	WordActive
	WordSung
)

func (v WordVisual) String() string {
	switch v {
	case WordUnsung:
		return "unsung"
	case WordActive:
		return "active"
	case WordSung:
		return "sung"
	default:
		return "unknown"
	}
}

// WordState pairs a word's visual state with its highlight progress.
// Progress is meaningful for WordActive only.
type WordState struct {
	State    WordVisual `json:"state"`
	Progress float64    `json:"progress,omitempty"`
}

// CommandKind identifies a render command variant.
type CommandKind int

const (
	// CmdSetCurrentWordStates replaces the current surface: line text plus
	// per-word visual states. LineIndex -1 with glyph text shows the
	// intro/gap glyph.
	CmdSetCurrentWordStates CommandKind = iota

	// CmdSetSurroundingLines updates the preceding/following line context.
	// An index of -1 clears that side.
	CmdSetSurroundingLines

	// CmdClearAll wipes the whole display.
	CmdClearAll
)

func (k CommandKind) String() string {
	switch k {
	case CmdSetCurrentWordStates:
		return "set_current_word_states"
	case CmdSetSurroundingLines:
		return "set_surrounding_lines"
	case CmdClearAll:
		return "clear_all"
	default:
		return "unknown"
	}
}

// RenderCommand is one display mutation. Which fields are meaningful depends
// on Kind.
type RenderCommand struct {
	Kind CommandKind `json:"kind"`

	LineIndex int         `json:"line_index,omitempty"`
	Text      string      `json:"text,omitempty"`
	Words     []WordState `json:"words,omitempty"`

	PrevLine int `json:"prev_line,omitempty"`
	NextLine int `json:"next_line,omitempty"`
}

// TickResult is the output of one frame: the ordered render commands, at most
// one outro event, and a diagnostic snapshot of where the engine thinks
// playback is.
type TickResult struct {
	PositionSec  float64
	Commands     []RenderCommand
	OutroReached bool

	State        timing.Kind
	LineIndex    int
	WordIndex    int
	WordProgress float64
}
