package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/himanishpuri/LyricDNA/internal/audio"
	"github.com/himanishpuri/LyricDNA/internal/player"
	"github.com/himanishpuri/LyricDNA/pkg/logger"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/storage"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

var (
	dbPath      string
	trackID     string
	mapFile     string
	wavFile     string
	durationSec float64
	jitterMs    int
	pollMs      int
	frameMs     int
	startSec    float64
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("LYRICDNA_DB_PATH", "lyricdna.sqlite3"), "Path to the SQLite timing-map cache")
	flag.StringVar(&trackID, "track", "", "Track ID to load from the cache")
	flag.StringVar(&mapFile, "map", "", "Path to a timing map JSON file (alternative to -track)")
	flag.StringVar(&wavFile, "wav", "", "Optional WAV file; its duration bounds the simulated playback")
	flag.Float64Var(&durationSec, "duration", 0, "Simulated track duration in seconds (0: infer from the map)")
	flag.IntVar(&jitterMs, "jitter", 40, "Position sample jitter in milliseconds")
	flag.IntVar(&pollMs, "poll", 100, "Poll interval in milliseconds")
	flag.IntVar(&frameMs, "frame", 33, "Frame interval in milliseconds")
	flag.Float64Var(&startSec, "start", 0, "Start position in seconds")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	m, err := loadMap()
	if err != nil {
		log.Fatalf("Failed to load timing map: %v", err)
	}
	log.Infof("Timing map: %d lines, %d instrumental markers", len(m.Lines), len(m.InstrumentalMarkers))

	duration, err := trackDuration(m)
	if err != nil {
		log.Fatalf("Failed to determine track duration: %v", err)
	}
	log.Infof("Simulated duration: %.1fs", duration)

	sink := newTermSink(m)
	engine := lyricdna.NewSyncEngine(lyricdna.WithSink(sink))
	engine.LoadTimingMap(m)

	sim := player.NewSimulator(duration,
		player.WithJitter(float64(jitterMs)/1000.0),
	)
	if startSec > 0 {
		sim.SeekTo(time.Duration(startSec * float64(time.Second)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sim.Poll(ctx, time.Duration(pollMs)*time.Millisecond, engine)
	sim.Play()

	frames := lyricdna.NewTickerFrameSource(time.Duration(frameMs) * time.Millisecond)
	defer frames.Stop()

	err = lyricdna.Drive(ctx, engine, frames, func(result lyricdna.TickResult) {
		if result.OutroReached {
			sink.Flush()
			log.Infof("Outro reached at %.1fs", result.PositionSec)
			cancel()
		}
		if sim.Done(time.Now()) && result.State == timing.KindOutro {
			cancel()
		}
	})
	if err != nil && err != context.Canceled {
		log.Fatalf("Frame loop failed: %v", err)
	}

	fmt.Println()
	log.Infof("Done")
}

// loadMap reads the timing map from the JSON file or the SQLite cache.
func loadMap() (timing.Map, error) {
	if mapFile != "" {
		data, err := os.ReadFile(mapFile)
		if err != nil {
			return timing.Map{}, fmt.Errorf("reading map file: %w", err)
		}
		var m timing.Map
		if err := json.Unmarshal(data, &m); err != nil {
			return timing.Map{}, fmt.Errorf("parsing map file: %w", err)
		}
		return timing.Sanitize(m), nil
	}

	if trackID == "" {
		return timing.Map{}, fmt.Errorf("either -map or -track is required")
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		return timing.Map{}, fmt.Errorf("opening cache: %w", err)
	}
	defer store.Close()

	return store.TimingMap(context.Background(), trackID)
}

// trackDuration prefers the WAV file's real duration, then the -duration
// flag, then the end of the last line plus a tail for the outro.
func trackDuration(m timing.Map) (float64, error) {
	if wavFile != "" {
		return audio.Duration(wavFile)
	}
	if durationSec > 0 {
		return durationSec, nil
	}
	if len(m.Lines) == 0 {
		return 0, fmt.Errorf("empty timing map and no -duration given")
	}
	last := m.Lines[len(m.Lines)-1]
	end := last.StartSec
	if last.EndSec > end {
		end = last.EndSec
	}
	return end + 10, nil
}
