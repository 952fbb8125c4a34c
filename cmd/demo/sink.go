package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/himanishpuri/LyricDNA/pkg/lyricdna"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

const (
	ansiReset = "\033[0m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiGreen = "\033[32m"
)

// termSink renders the current line to the terminal, rewriting it in place.
// It keeps the timing map so it can print word texts next to their states.
type termSink struct {
	mu       sync.Mutex
	tmap     timing.Map
	prevLine int
	nextLine int
}

func newTermSink(m timing.Map) *termSink {
	return &termSink{tmap: m, prevLine: -1, nextLine: -1}
}

func (t *termSink) SetCurrentWordStates(lineIndex int, text string, words []lyricdna.WordState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	b.WriteString("\r\033[K")

	if lineIndex < 0 || lineIndex >= len(t.tmap.Lines) || len(words) == 0 {
		// Glyph or text-only line.
		b.WriteString(ansiDim + text + ansiReset)
		fmt.Print(b.String())
		return
	}

	line := t.tmap.Lines[lineIndex]
	for i, word := range line.Words {
		if i >= len(words) {
			break
		}
		switch words[i].State {
		case lyricdna.WordSung:
			b.WriteString(ansiGreen + word.Text + ansiReset)
		case lyricdna.WordActive:
			b.WriteString(ansiCyan + highlightWord(word.Text, words[i].Progress) + ansiReset)
		default:
			b.WriteString(ansiDim + word.Text + ansiReset)
		}
		b.WriteString(" ")
	}

	if t.nextLine >= 0 && t.nextLine < len(t.tmap.Lines) {
		b.WriteString(ansiDim + "  → " + t.tmap.Lines[t.nextLine].Text + ansiReset)
	}

	fmt.Print(b.String())
}

// highlightWord underlines the sung prefix of the active word.
func highlightWord(text string, progress float64) string {
	runes := []rune(text)
	cut := int(progress * float64(len(runes)))
	if cut > len(runes) {
		cut = len(runes)
	}
	if cut == 0 {
		return text
	}
	return "\033[4m" + string(runes[:cut]) + "\033[24m" + string(runes[cut:])
}

func (t *termSink) SetSurroundingLines(prevLine, nextLine int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prevLine = prevLine
	t.nextLine = nextLine
}

func (t *termSink) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prevLine = -1
	t.nextLine = -1
	fmt.Print("\r\033[K")
}

// Flush moves to a fresh line so log output does not clobber the lyric line.
func (t *termSink) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Println()
}
