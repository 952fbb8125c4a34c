package timing

// Timing constants shared by the locator and word selection. All in seconds.
const (
	// GapThresholdSec is the minimum silence between a line's vocal end and
	// the next line's start for the silence to count as an instrumental gap.
	GapThresholdSec = 6.0

	// lineTailSec pads the last owned moment of a line that has no successor.
	lineTailSec = 0.2

	// wordFallbackSec is the assumed length of a word with unknown duration
	// and no following word to infer it from.
	wordFallbackSec = 0.5

	// lastWordCapSec bounds the last word's window so a malformed line end
	// cannot keep it active indefinitely.
	lastWordCapSec = 4.0
)

// Kind classifies the structural playback state at a position.
type Kind int

const (
	KindIntro Kind = iota
	KindLine
	KindGap
	KindOutro
)

func (k Kind) String() string {
	switch k {
	case KindIntro:
		return "intro"
	case KindLine:
		return "line"
	case KindGap:
		return "gap"
	case KindOutro:
		return "outro"
	default:
		return "unknown"
	}
}

// LocateResult carries everything the frame driver needs to act without
// re-querying the map. Index fields are -1 when not applicable.
type LocateResult struct {
	Kind Kind

	// LineIndex is the active line for KindLine. For KindGap it is the line
	// that just finished.
	LineIndex int
	PrevLine  int
	NextLine  int

	// Word selection, valid for KindLine only.
	WordIndex    int
	WordProgress float64
	AllSung      bool

	GapStartSec   float64
	GapEndSec     float64
	OutroStartSec float64
}

// Locate maps a playback position onto the structural state for the given
// timing map. It is stateless and safe to call every frame.
func Locate(pos float64, m Map) LocateResult {
	if len(m.Lines) == 0 {
		// No usable map yet: treat as intro until one arrives.
		return LocateResult{Kind: KindIntro, LineIndex: -1, PrevLine: -1, NextLine: -1, WordIndex: -1}
	}

	if pos < m.Lines[0].StartSec {
		return LocateResult{Kind: KindIntro, LineIndex: -1, PrevLine: -1, NextLine: 0, WordIndex: -1}
	}

	for i := range m.Lines {
		line := m.Lines[i]
		hasNext := i+1 < len(m.Lines)

		vocalEnd, endKnown := lineVocalEnd(line)

		var ownershipEnd float64
		if hasNext {
			ownershipEnd = m.Lines[i+1].StartSec
		} else if endKnown {
			ownershipEnd = vocalEnd + lineTailSec
		} else {
			// Unbounded ownership: without a determinable end the last line
			// keeps showing rather than producing a spurious outro.
			ownershipEnd = pos + 1
		}

		if pos >= ownershipEnd {
			if hasNext {
				continue
			}
			return LocateResult{
				Kind:          KindOutro,
				LineIndex:     -1,
				PrevLine:      i,
				NextLine:      -1,
				WordIndex:     -1,
				OutroStartSec: ownershipEnd,
			}
		}

		if hasNext {
			nextStart := m.Lines[i+1].StartSec

			// Precomputed instrumental markers override the silence
			// threshold entirely.
			if marker, ok := markerBetween(m.InstrumentalMarkers, line.StartSec, nextStart); ok && pos >= marker {
				return LocateResult{
					Kind:        KindGap,
					LineIndex:   i,
					PrevLine:    i,
					NextLine:    i + 1,
					WordIndex:   -1,
					GapStartSec: marker,
					GapEndSec:   nextStart,
				}
			}

			if endKnown && pos >= vocalEnd && nextStart-vocalEnd >= GapThresholdSec {
				return LocateResult{
					Kind:        KindGap,
					LineIndex:   i,
					PrevLine:    i,
					NextLine:    i + 1,
					WordIndex:   -1,
					GapStartSec: vocalEnd,
					GapEndSec:   nextStart,
				}
			}
		}

		res := LocateResult{
			Kind:      KindLine,
			LineIndex: i,
			PrevLine:  i - 1,
			NextLine:  -1,
			WordIndex: -1,
		}
		if hasNext {
			res.NextLine = i + 1
		}
		word := FindCurrentWord(pos, line)
		res.WordIndex = word.Index
		res.WordProgress = word.Progress
		res.AllSung = word.AllSung
		return res
	}

	// Unreachable: the last line either owns the position or yields outro.
	last := len(m.Lines) - 1
	return LocateResult{Kind: KindOutro, LineIndex: -1, PrevLine: last, NextLine: -1, WordIndex: -1}
}

// lineVocalEnd estimates when the vocals of a line actually finish.
// Priority: explicit end, last word offset+duration, last word offset plus a
// conservative pad. Returns ok=false when nothing is determinable, in which
// case the caller must fail safe toward showing the line.
func lineVocalEnd(line Line) (float64, bool) {
	if line.EndSec > line.StartSec {
		return line.EndSec, true
	}
	if len(line.Words) == 0 {
		return 0, false
	}
	last := line.Words[len(line.Words)-1]
	if last.DurationSec > 0 {
		return line.StartSec + last.OffsetSec + last.DurationSec, true
	}
	return line.StartSec + last.OffsetSec + wordFallbackSec, true
}

// markerBetween returns the first instrumental marker inside (lo, hi), if any.
// Markers are sorted by Sanitize.
func markerBetween(markers []float64, lo, hi float64) (float64, bool) {
	for _, t := range markers {
		if t >= hi {
			break
		}
		if t > lo {
			return t, true
		}
	}
	return 0, false
}
