// Package timing holds the word-level lyric timing model and the stateless
// locator that maps a playback position onto the active line and word.
package timing

import "sort"

// Word is a single word inside a line. OffsetSec is relative to the line
// start. DurationSec <= 0 means the duration is unknown and the documented
// fallbacks apply.
type Word struct {
	OffsetSec   float64 `json:"offset_sec"`
	DurationSec float64 `json:"duration_sec,omitempty"`
	Text        string  `json:"text"`
}

// Line is one lyric line. EndSec <= 0 means no explicit end was provided.
// A line with no words is rendered text-only (no word highlighting).
type Line struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec,omitempty"`
	Text     string  `json:"text"`
	Words    []Word  `json:"words,omitempty"`
}

// Map is the complete timing map for one track. It is immutable once loaded
// and replaced wholesale on track change. InstrumentalMarkers are absolute
// timestamps from a line-level source that force gap classification.
type Map struct {
	TrackID             string    `json:"track_id,omitempty"`
	Lines               []Line    `json:"lines"`
	InstrumentalMarkers []float64 `json:"instrumental_markers,omitempty"`
}

// Sanitize returns a copy of m that upholds the model invariants: lines
// sorted ascending by start, markers sorted, and any line whose word offsets
// are not monotonically non-decreasing degraded to text-only. Bad word data
// loses highlighting, never the line itself.
func Sanitize(m Map) Map {
	out := Map{TrackID: m.TrackID}

	out.Lines = make([]Line, len(m.Lines))
	copy(out.Lines, m.Lines)
	sort.SliceStable(out.Lines, func(i, j int) bool {
		return out.Lines[i].StartSec < out.Lines[j].StartSec
	})

	for i := range out.Lines {
		if !wordsMonotonic(out.Lines[i].Words) {
			out.Lines[i].Words = nil
		}
	}

	if len(m.InstrumentalMarkers) > 0 {
		out.InstrumentalMarkers = make([]float64, len(m.InstrumentalMarkers))
		copy(out.InstrumentalMarkers, m.InstrumentalMarkers)
		sort.Float64s(out.InstrumentalMarkers)
	}

	return out
}

func wordsMonotonic(words []Word) bool {
	for i := 1; i < len(words); i++ {
		if words[i].OffsetSec < words[i-1].OffsetSec {
			return false
		}
	}
	return true
}
