package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWav(t *testing.T, sampleRate, numSamples int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating wav file: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, numSamples),
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing wav samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing wav encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing wav file: %v", err)
	}
	return path
}

func TestDuration(t *testing.T) {
	path := writeTestWav(t, 8000, 16000) // two seconds of silence

	got, err := Duration(path)
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if math.Abs(got-2.0) > 0.01 {
		t.Errorf("duration = %f, expected 2.0", got)
	}
}

func TestDurationMissingFile(t *testing.T) {
	if _, err := Duration(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
