package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/himanishpuri/LyricDNA/pkg/lyricdna"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/storage"
)

var (
	port           int
	dbPath         string
	frameMs        int
	allowedOrigins string
	lineLatency    float64
	wordLatency    float64
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("LYRICDNA_DB_PATH", "lyricdna.sqlite3"), "Path to SQLite timing-map cache")
	flag.IntVar(&frameMs, "frame", 33, "Frame interval in milliseconds")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.Float64Var(&lineLatency, "line-latency", 0, "Line-sync latency compensation in seconds")
	flag.Float64Var(&wordLatency, "word-latency", 0, "Word-sync latency compensation in seconds")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open timing-map cache: %v", err)
	}
	defer store.Close()

	engine := lyricdna.NewSyncEngine(
		lyricdna.WithLineSyncLatency(lineLatency),
		lyricdna.WithWordSyncLatency(wordLatency),
	)

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		FrameInterval:  time.Duration(frameMs) * time.Millisecond,
		AllowedOrigins: origins,
	}

	server := NewServer(engine, store, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
