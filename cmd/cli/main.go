package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/himanishpuri/LyricDNA/pkg/logger"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/storage"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

// Global flags
var dbPath string

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("LYRICDNA_DB_PATH", storage.DefaultDBFile), "Path to the SQLite timing-map cache")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func openStore() (*storage.Store, error) {
	return storage.NewStore(dbPath)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("Executing command: %s", command)

	switch command {
	case "add":
		handleAdd()
	case "show":
		handleShow()
	case "list":
		handleList()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
 _               _      ____  _   _    _
| |   _   _ _ __(_) ___|  _ \| \ | |  / \
| |  | | | | '__| |/ __| | | |  \| | / _ \
| |__| |_| | |  | | (__| |_| | |\  |/ ___ \
|_____\__, |_|  |_|\___|____/|_| \_/_/   \_\
      |___/

        Word Timing Cache Management Tool
`
	fmt.Println(banner)
}

func handleAdd() {
	log := logger.GetLogger()

	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	mapFile := addCmd.String("map", "", "Path to the timing map JSON file (required)")
	title := addCmd.String("title", "", "Song title (required)")
	artist := addCmd.String("artist", "", "Artist name (required)")
	durationMs := addCmd.Int("duration-ms", 0, "Track duration in milliseconds (optional)")

	addCmd.Parse(os.Args[2:])

	if *mapFile == "" || *title == "" || *artist == "" {
		fmt.Println("Error: --map, --title and --artist are required")
		fmt.Println("Usage: lyricdna add --map <file.json> --title <title> --artist <artist> [--duration-ms <ms>]")
		log.Warnf("Missing required arguments for add")
		os.Exit(1)
	}

	data, err := os.ReadFile(*mapFile)
	if err != nil {
		fmt.Printf("Failed to read timing map: %v\n", err)
		log.Errorf("Reading map file failed: %v", err)
		os.Exit(1)
	}

	var m timing.Map
	if err := json.Unmarshal(data, &m); err != nil {
		fmt.Printf("Failed to parse timing map: %v\n", err)
		log.Errorf("Parsing map file failed: %v", err)
		os.Exit(1)
	}
	m = timing.Sanitize(m)
	if len(m.Lines) == 0 {
		fmt.Println("Error: timing map has no lines")
		log.Errorf("Timing map has no lines")
		os.Exit(1)
	}

	store, err := openStore()
	if err != nil {
		fmt.Printf("Failed to open cache: %v\n", err)
		log.Errorf("Store initialization failed: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	trackID, err := store.RegisterTrack(*title, *artist, *durationMs)
	if err != nil {
		fmt.Printf("Failed to register track: %v\n", err)
		log.Errorf("RegisterTrack failed: %v", err)
		os.Exit(1)
	}

	if err := store.SaveTimingMap(trackID, m); err != nil {
		fmt.Printf("Failed to save timing map: %v\n", err)
		log.Errorf("SaveTimingMap failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\nSuccessfully cached timing map!")
	fmt.Printf("   ID:      %s\n", trackID)
	fmt.Printf("   Title:   %s\n", *title)
	fmt.Printf("   Artist:  %s\n", *artist)
	fmt.Printf("   Lines:   %d\n", len(m.Lines))
	fmt.Printf("   Markers: %d\n", len(m.InstrumentalMarkers))
	log.Infof("Cached timing map for track %s (%d lines)", trackID, len(m.Lines))
}

func handleShow() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: lyricdna show <track_id>")
		os.Exit(1)
	}
	trackID := os.Args[2]

	store, err := openStore()
	if err != nil {
		fmt.Printf("Failed to open cache: %v\n", err)
		log.Errorf("Store initialization failed: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	track, err := store.GetTrack(trackID)
	if err != nil {
		fmt.Printf("Track not found (ID: %s)\n", trackID)
		log.Warnf("Track %s not found: %v", trackID, err)
		os.Exit(1)
	}

	m, err := store.TimingMap(context.Background(), trackID)
	if err != nil {
		fmt.Printf("Failed to load timing map: %v\n", err)
		log.Errorf("TimingMap failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n\"%s\" by %s\n\n", track.Title, track.Artist)
	for i, line := range m.Lines {
		fmt.Printf("%3d. [%7.2fs] %s", i, line.StartSec, line.Text)
		if len(line.Words) > 0 {
			fmt.Printf("  (%d words)", len(line.Words))
		}
		fmt.Println()
	}
	if len(m.InstrumentalMarkers) > 0 {
		fmt.Printf("\nInstrumental markers: %v\n", m.InstrumentalMarkers)
	}
	log.Infof("Showed timing map for track %s", trackID)
}

func handleList() {
	log := logger.GetLogger()

	store, err := openStore()
	if err != nil {
		fmt.Printf("Failed to open cache: %v\n", err)
		log.Errorf("Store initialization failed: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	tracks, err := store.ListTracks()
	if err != nil {
		fmt.Printf("Failed to list tracks: %v\n", err)
		log.Errorf("ListTracks failed: %v", err)
		os.Exit(1)
	}

	if len(tracks) == 0 {
		fmt.Println("\nNo tracks in cache")
		log.Infof("No tracks in cache")
		return
	}

	fmt.Printf("\nFound %d track(s):\n\n", len(tracks))
	for i, track := range tracks {
		fmt.Printf("%d. \"%s\" by %s (ID: %s)\n", i+1, track.Title, track.Artist, track.ID)
		if track.DurationMs > 0 {
			duration := track.DurationMs / 1000
			fmt.Printf("   Duration: %d:%02d\n", duration/60, duration%60)
		}
	}
	fmt.Println()
	log.Infof("Listed %d tracks", len(tracks))
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: lyricdna delete <track_id>")
		os.Exit(1)
	}
	trackID := os.Args[2]

	store, err := openStore()
	if err != nil {
		fmt.Printf("Failed to open cache: %v\n", err)
		log.Errorf("Store initialization failed: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	track, err := store.GetTrack(trackID)
	if err != nil {
		fmt.Printf("Track not found (ID: %s)\n", trackID)
		log.Warnf("Track %s not found: %v", trackID, err)
		os.Exit(1)
	}

	if err := store.DeleteTrack(trackID); err != nil {
		fmt.Printf("Failed to delete track: %v\n", err)
		log.Errorf("DeleteTrack failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\nSuccessfully deleted track:\n")
	fmt.Printf("   ID:     %s\n", track.ID)
	fmt.Printf("   Title:  %s\n", track.Title)
	fmt.Printf("   Artist: %s\n", track.Artist)
	log.Infof("Deleted track %s ('%s' by '%s')", track.ID, track.Title, track.Artist)
}

func printUsage() {
	fmt.Println("LyricDNA - Word Timing Cache Management")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite cache (env: LYRICDNA_DB_PATH, default: lyricdna.sqlite3)")
	fmt.Println("\nUsage:")
	fmt.Println("  lyricdna [global-options] add --map <file.json> --title <title> --artist <artist> [--duration-ms <ms>]")
	fmt.Println("  lyricdna [global-options] show <track_id>")
	fmt.Println("  lyricdna [global-options] list")
	fmt.Println("  lyricdna [global-options] delete <track_id>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Cache a timing map")
	fmt.Println("  lyricdna --db maps.sqlite3 add --map song.json --title \"Song\" --artist \"Artist\"")
	fmt.Println()
	fmt.Println("  # Inspect a cached map")
	fmt.Println("  lyricdna show 2f1c9a4e-8d3b-4c6f-9e2a-1b5d7f3a8c0e")
}
