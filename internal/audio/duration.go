// Package audio probes local audio files for playback metadata. The demo uses
// it to bound the simulated player with a real track's duration.
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Duration returns the playback length of a WAV file in seconds.
func Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	dur, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("reading wav duration: %w", err)
	}
	return dur.Seconds(), nil
}
