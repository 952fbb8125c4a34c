package timing

import (
	"math"
	"testing"
)

func TestFindCurrentWordBeforeFirstWord(t *testing.T) {
	line := Line{StartSec: 10, Words: []Word{
		{OffsetSec: 1, DurationSec: 0.5, Text: "late"},
	}}

	res := FindCurrentWord(10.5, line)
	if res.Index != -1 {
		t.Errorf("Index = %d, expected -1 before the first word", res.Index)
	}
	if res.Progress != 0 {
		t.Errorf("Progress = %f, expected 0", res.Progress)
	}
}

func TestFindCurrentWordGapAttribution(t *testing.T) {
	// Silence between words belongs to the word that just finished.
	line := Line{StartSec: 0, Words: []Word{
		{OffsetSec: 0.0, DurationSec: 0.3, Text: "quick"},
		{OffsetSec: 1.0, DurationSec: 0.3, Text: "brown"},
	}}

	res := FindCurrentWord(0.5, line)
	if res.Index != 0 {
		t.Errorf("Index = %d, expected 0 (silence attributed to the finished word)", res.Index)
	}
	if res.Progress != 1 {
		t.Errorf("Progress = %f, expected 1", res.Progress)
	}
	if res.AllSung {
		t.Error("AllSung should not be set mid-line")
	}
}

func TestFindCurrentWordProgress(t *testing.T) {
	line := Line{StartSec: 2, Words: []Word{
		{OffsetSec: 0, DurationSec: 1.0, Text: "word"},
	}}

	res := FindCurrentWord(2.25, line)
	if res.Index != 0 {
		t.Fatalf("Index = %d, expected 0", res.Index)
	}
	if math.Abs(res.Progress-0.25) > 1e-9 {
		t.Errorf("Progress = %f, expected 0.25", res.Progress)
	}
}

func TestFindCurrentWordInferredEndFromNextWord(t *testing.T) {
	line := Line{StartSec: 0, Words: []Word{
		{OffsetSec: 0, Text: "no"},
		{OffsetSec: 2, DurationSec: 1, Text: "duration"},
	}}

	res := FindCurrentWord(1.0, line)
	if res.Index != 0 {
		t.Fatalf("Index = %d, expected 0", res.Index)
	}
	if math.Abs(res.Progress-0.5) > 1e-9 {
		t.Errorf("Progress = %f, expected 0.5 (end inferred from next word)", res.Progress)
	}
}

func TestFindCurrentWordLastWordHardCap(t *testing.T) {
	// No duration, no line end: the fallback pad applies.
	line := Line{StartSec: 0, Words: []Word{{OffsetSec: 0, Text: "solo"}}}

	res := FindCurrentWord(0.6, line)
	if !res.AllSung {
		t.Error("expected AllSung past the fallback pad")
	}

	// A bogus huge line end must not keep the last word active forever.
	capped := Line{StartSec: 0, EndSec: 500, Words: []Word{{OffsetSec: 0, Text: "solo"}}}

	res = FindCurrentWord(3.9, capped)
	if res.AllSung {
		t.Error("AllSung before the hard cap")
	}
	if res.Index != 0 {
		t.Errorf("Index = %d, expected 0", res.Index)
	}

	res = FindCurrentWord(4.0, capped)
	if !res.AllSung {
		t.Error("expected AllSung at the hard cap")
	}
	if res.Index != 0 || res.Progress != 1 {
		t.Errorf("got index %d progress %f, expected last word fully sung", res.Index, res.Progress)
	}
}

func TestFindCurrentWordEmptyLine(t *testing.T) {
	res := FindCurrentWord(1.0, Line{StartSec: 0, Text: "text only"})
	if res.Index != -1 || res.AllSung {
		t.Errorf("text-only line: got index %d allSung %v", res.Index, res.AllSung)
	}
}

func TestWordProgressAt(t *testing.T) {
	line := Line{StartSec: 1, Words: []Word{
		{OffsetSec: 0, DurationSec: 2, Text: "long"},
	}}

	tests := []struct {
		pos      float64
		expected float64
	}{
		{0.5, 0},
		{1.0, 0},
		{2.0, 0.5},
		{3.0, 1},
		{9.0, 1},
	}

	for _, tt := range tests {
		got := WordProgressAt(line, 0, tt.pos)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("WordProgressAt(%f) = %f, expected %f", tt.pos, got, tt.expected)
		}
	}

	if got := WordProgressAt(line, -1, 2.0); got != 0 {
		t.Errorf("out-of-range index: got %f, expected 0", got)
	}
}
