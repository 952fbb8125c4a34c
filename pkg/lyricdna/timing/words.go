package timing

// WordResult is the within-line word selection for a position. Index is -1
// before the first word starts. AllSung is set once every word of the line
// has finished, so callers can mark the whole line as sung instead of leaving
// the last word active forever.
type WordResult struct {
	Index    int
	Progress float64
	AllSung  bool
}

// FindCurrentWord selects the active word of a line at the given absolute
// position. Silence between two words attributes to the word that just
// finished, not the one about to start.
func FindCurrentWord(pos float64, line Line) WordResult {
	words := line.Words
	if len(words) == 0 {
		return WordResult{Index: -1}
	}

	if pos < line.StartSec+words[0].OffsetSec {
		return WordResult{Index: -1}
	}

	for i := range words {
		wordStart := line.StartSec + words[i].OffsetSec
		wordEnd := wordEndFor(line, i, wordStart)

		if pos < wordStart {
			// Inter-word silence: the previous word is done.
			return WordResult{Index: i - 1, Progress: 1}
		}

		if pos < wordEnd {
			dur := wordEnd - wordStart
			progress := 1.0
			if dur > 0 {
				progress = clamp01((pos - wordStart) / dur)
			}
			return WordResult{Index: i, Progress: progress}
		}
	}

	return WordResult{Index: len(words) - 1, Progress: 1, AllSung: true}
}

// wordEndFor computes the end of word i: explicit duration, else the next
// word's start, else a capped estimate for the last word. The cap keeps a
// malformed line end from freezing the last word indefinitely.
func wordEndFor(line Line, i int, wordStart float64) float64 {
	words := line.Words

	if words[i].DurationSec > 0 {
		return wordStart + words[i].DurationSec
	}
	if i+1 < len(words) {
		return line.StartSec + words[i+1].OffsetSec
	}

	end := wordStart + wordFallbackSec
	if line.EndSec > 0 {
		end = line.EndSec
	}
	if hardCap := wordStart + lastWordCapSec; end > hardCap {
		end = hardCap
	}
	return end
}

// WordProgressAt reports the highlight progress of word i at an absolute
// position. Used with a smoothed render position while selection stays on the
// raw clock.
func WordProgressAt(line Line, i int, pos float64) float64 {
	if i < 0 || i >= len(line.Words) {
		return 0
	}
	wordStart := line.StartSec + line.Words[i].OffsetSec
	wordEnd := wordEndFor(line, i, wordStart)
	if wordEnd <= wordStart {
		return 1
	}
	return clamp01((pos - wordStart) / (wordEnd - wordStart))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
