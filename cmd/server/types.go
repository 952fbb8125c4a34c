package main

import (
	"fmt"

	"github.com/himanishpuri/LyricDNA/pkg/lyricdna"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

// Limits for timing-map uploads.
const (
	// MaxLines is the absolute maximum line count accepted per map.
	MaxLines = 2000

	// MaxWordsPerLine bounds a single line's word list.
	MaxWordsPerLine = 200
)

// AddTrackRequest is the request body for POST /api/tracks.
type AddTrackRequest struct {
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	DurationMs int        `json:"duration_ms,omitempty"`
	Map        timing.Map `json:"map"`
}

// Validate checks if the request is valid.
func (r *AddTrackRequest) Validate() error {
	if r.Title == "" || r.Artist == "" {
		return fmt.Errorf("title and artist are required")
	}
	if len(r.Map.Lines) == 0 {
		return fmt.Errorf("timing map must contain at least one line")
	}
	if len(r.Map.Lines) > MaxLines {
		return fmt.Errorf("too many lines: %d (maximum: %d)", len(r.Map.Lines), MaxLines)
	}
	for i, line := range r.Map.Lines {
		if len(line.Words) > MaxWordsPerLine {
			return fmt.Errorf("line %d has too many words: %d (maximum: %d)", i, len(line.Words), MaxWordsPerLine)
		}
	}
	return nil
}

// AddTrackResponse is the response for successful track registration.
type AddTrackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Lines   int    `json:"lines"`
}

// TrackDTO represents a track in API responses.
type TrackDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	DurationMs int    `json:"duration_ms"`
}

// ListTracksResponse is the response for GET /api/tracks.
type ListTracksResponse struct {
	Tracks []TrackDTO `json:"tracks"`
	Count  int        `json:"count"`
}

// DeleteTrackResponse is the response for DELETE /api/tracks/{id}.
type DeleteTrackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// LoadSessionRequest selects the track whose timing map drives the session.
type LoadSessionRequest struct {
	TrackID string `json:"track_id"`
}

// Validate checks if the request is valid.
func (r *LoadSessionRequest) Validate() error {
	if r.TrackID == "" {
		return fmt.Errorf("track_id is required")
	}
	return nil
}

// AnchorRequest is the request body for POST /api/session/anchor. ObservedAt
// is RFC3339Nano; empty means "now".
type AnchorRequest struct {
	PositionSec float64 `json:"position_sec"`
	ObservedAt  string  `json:"observed_at,omitempty"`
	Playing     bool    `json:"playing"`
	LatencySec  float64 `json:"latency_sec,omitempty"`
}

// Validate checks if the request is valid.
func (r *AnchorRequest) Validate() error {
	if r.PositionSec < 0 {
		return fmt.Errorf("position_sec must be non-negative")
	}
	return nil
}

// SessionStateResponse is the latest frame snapshot for GET /api/session/state.
type SessionStateResponse struct {
	TrackID      string                   `json:"track_id,omitempty"`
	PositionSec  float64                  `json:"position_sec"`
	State        string                   `json:"state"`
	LineIndex    int                      `json:"line_index"`
	WordIndex    int                      `json:"word_index"`
	WordProgress float64                  `json:"word_progress"`
	OutroReached bool                     `json:"outro_reached"`
	Commands     []lyricdna.RenderCommand `json:"commands,omitempty"`
}

// MetricsResponse provides server health and cache metrics.
type MetricsResponse struct {
	Status        string `json:"status"`
	DatabasePath  string `json:"database_path"`
	TrackCount    int    `json:"track_count"`
	FrameInterval string `json:"frame_interval"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
