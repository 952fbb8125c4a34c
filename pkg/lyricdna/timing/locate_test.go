package timing

import "testing"

func twoLineMap(gapSec float64) Map {
	return Map{
		Lines: []Line{
			{StartSec: 0, EndSec: 2, Text: "first line", Words: []Word{
				{OffsetSec: 0, DurationSec: 1, Text: "first"},
				{OffsetSec: 1, DurationSec: 1, Text: "line"},
			}},
			{StartSec: 2 + gapSec, Text: "second line", Words: []Word{
				{OffsetSec: 0, DurationSec: 1, Text: "second"},
				{OffsetSec: 1, DurationSec: 1, Text: "line"},
			}},
		},
	}
}

func TestLocateIntroBoundary(t *testing.T) {
	m := Map{Lines: []Line{{StartSec: 5.0, Text: "hello"}}}

	res := Locate(4.999, m)
	if res.Kind != KindIntro {
		t.Errorf("Locate(4.999) = %v, expected intro", res.Kind)
	}
	if res.NextLine != 0 {
		t.Errorf("intro NextLine = %d, expected 0", res.NextLine)
	}

	res = Locate(5.0, m)
	if res.Kind == KindIntro {
		t.Error("Locate(5.0) still intro, expected line ownership at the boundary")
	}
}

func TestLocateEmptyMap(t *testing.T) {
	res := Locate(12.5, Map{})
	if res.Kind != KindIntro {
		t.Errorf("empty map: got %v, expected intro", res.Kind)
	}
}

func TestLocateLineOwnership(t *testing.T) {
	m := twoLineMap(1.0) // next line starts at 3.0, silence too short for a gap

	res := Locate(2.5, m)
	if res.Kind != KindLine {
		t.Fatalf("Locate(2.5) = %v, expected line (silence below gap threshold)", res.Kind)
	}
	if res.LineIndex != 0 {
		t.Errorf("LineIndex = %d, expected 0", res.LineIndex)
	}
	if !res.AllSung {
		t.Error("expected AllSung during post-vocal silence of the owning line")
	}
}

func TestLocateGapClassification(t *testing.T) {
	m := twoLineMap(8.0) // vocal end 2.0, next start 10.0: a real instrumental gap

	res := Locate(5.0, m)
	if res.Kind != KindGap {
		t.Fatalf("Locate(5.0) = %v, expected gap", res.Kind)
	}
	if res.PrevLine != 0 || res.NextLine != 1 {
		t.Errorf("gap context = (%d, %d), expected (0, 1)", res.PrevLine, res.NextLine)
	}
	if res.GapStartSec != 2.0 {
		t.Errorf("GapStartSec = %f, expected 2.0 (vocal end)", res.GapStartSec)
	}
	if res.GapEndSec != 10.0 {
		t.Errorf("GapEndSec = %f, expected 10.0", res.GapEndSec)
	}

	// Before the vocal end the line still owns the position.
	res = Locate(1.5, m)
	if res.Kind != KindLine {
		t.Errorf("Locate(1.5) = %v, expected line", res.Kind)
	}
}

func TestLocateInstrumentalMarkerOverridesThreshold(t *testing.T) {
	m := twoLineMap(2.0) // next start 4.0: silence far below the 6s threshold
	m.InstrumentalMarkers = []float64{2.5}
	m = Sanitize(m)

	res := Locate(3.0, m)
	if res.Kind != KindGap {
		t.Fatalf("Locate(3.0) = %v, expected marker-forced gap", res.Kind)
	}
	if res.GapStartSec != 2.5 {
		t.Errorf("GapStartSec = %f, expected the marker at 2.5", res.GapStartSec)
	}

	// Before the marker the line still owns the position.
	res = Locate(2.2, m)
	if res.Kind != KindLine {
		t.Errorf("Locate(2.2) = %v, expected line before the marker", res.Kind)
	}
}

func TestLocateMarkerWithoutNextLineFallsToOutro(t *testing.T) {
	m := Map{
		Lines: []Line{{StartSec: 0, EndSec: 2, Text: "only", Words: []Word{
			{OffsetSec: 0, DurationSec: 1, Text: "only"},
		}}},
		InstrumentalMarkers: []float64{3.0},
	}

	res := Locate(5.0, m)
	if res.Kind != KindOutro {
		t.Errorf("Locate(5.0) = %v, expected outro (no gap trap after last line)", res.Kind)
	}
}

func TestLocateOutro(t *testing.T) {
	m := Map{Lines: []Line{{StartSec: 1, EndSec: 2, Text: "last", Words: []Word{
		{OffsetSec: 0, DurationSec: 0.5, Text: "last"},
	}}}}

	res := Locate(10.0, m)
	if res.Kind != KindOutro {
		t.Fatalf("Locate(10.0) = %v, expected outro", res.Kind)
	}
	if res.PrevLine != 0 {
		t.Errorf("outro PrevLine = %d, expected 0", res.PrevLine)
	}
	want := 2.0 + lineTailSec
	if res.OutroStartSec != want {
		t.Errorf("OutroStartSec = %f, expected %f", res.OutroStartSec, want)
	}

	// Inside the tail window the line still owns the position.
	res = Locate(2.1, m)
	if res.Kind != KindLine {
		t.Errorf("Locate(2.1) = %v, expected line inside the tail pad", res.Kind)
	}
}

func TestLocateNoDeterminableEndShowsLine(t *testing.T) {
	// No explicit end and no words: nothing to compute a vocal end from, so
	// the last line keeps showing instead of producing a spurious outro.
	m := Map{Lines: []Line{{StartSec: 1, Text: "textonly"}}}

	res := Locate(500.0, m)
	if res.Kind != KindLine {
		t.Errorf("Locate(500) = %v, expected line (fail safe toward showing it)", res.Kind)
	}
}

func TestLineVocalEndPriority(t *testing.T) {
	tests := []struct {
		name     string
		line     Line
		expected float64
		ok       bool
	}{
		{
			name:     "explicit end wins",
			line:     Line{StartSec: 1, EndSec: 3, Words: []Word{{OffsetSec: 0, DurationSec: 10}}},
			expected: 3, ok: true,
		},
		{
			name:     "last word duration",
			line:     Line{StartSec: 1, Words: []Word{{OffsetSec: 2, DurationSec: 0.5}}},
			expected: 3.5, ok: true,
		},
		{
			name:     "last word fallback pad",
			line:     Line{StartSec: 1, Words: []Word{{OffsetSec: 2}}},
			expected: 3.5, ok: true,
		},
		{
			name: "nothing determinable",
			line: Line{StartSec: 1},
			ok:   false,
		},
	}

	for _, tt := range tests {
		end, ok := lineVocalEnd(tt.line)
		if ok != tt.ok {
			t.Errorf("%s: ok = %v, expected %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && end != tt.expected {
			t.Errorf("%s: end = %f, expected %f", tt.name, end, tt.expected)
		}
	}
}

func TestSanitizeSortsAndDegrades(t *testing.T) {
	m := Sanitize(Map{
		Lines: []Line{
			{StartSec: 10, Text: "second"},
			{StartSec: 1, Text: "first", Words: []Word{
				{OffsetSec: 2, Text: "out"},
				{OffsetSec: 1, Text: "of order"},
			}},
		},
		InstrumentalMarkers: []float64{9, 3},
	})

	if m.Lines[0].StartSec != 1 {
		t.Errorf("lines not sorted by start: first starts at %f", m.Lines[0].StartSec)
	}
	if m.Lines[0].Words != nil {
		t.Error("non-monotonic word offsets should degrade the line to text-only")
	}
	if m.InstrumentalMarkers[0] != 3 {
		t.Errorf("markers not sorted: first is %f", m.InstrumentalMarkers[0])
	}
}
