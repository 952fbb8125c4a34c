package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/himanishpuri/LyricDNA/pkg/logger"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/storage"
	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

// Server hosts the sync engine for a remote poller and display client.
type Server struct {
	engine *lyricdna.SyncEngine
	store  *storage.Store
	config *ServerConfig
	log    lyricdna.Logger

	mu           sync.Mutex
	trackID      string
	lastResult   lyricdna.TickResult
	outroLatched bool
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	DBPath         string
	FrameInterval  time.Duration
	AllowedOrigins []string
}

// NewServer creates a new server instance.
func NewServer(engine *lyricdna.SyncEngine, store *storage.Store, config *ServerConfig) *Server {
	return &Server{
		engine: engine,
		store:  store,
		config: config,
		log:    logger.GetLogger(),
	}
}

// runFrames drives the engine on the configured frame interval and keeps the
// latest result for GET /api/session/state.
func (s *Server) runFrames() {
	ticker := time.NewTicker(s.config.FrameInterval)
	defer ticker.Stop()

	for frame := range ticker.C {
		result := s.engine.Tick(frame)

		s.mu.Lock()
		s.lastResult = result
		if result.OutroReached {
			// Latch so a state poll between frames still sees the event.
			s.outroLatched = true
		}
		s.mu.Unlock()
	}
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "LyricDNA API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":      "GET /health",
			"metrics":     "GET /api/health/metrics",
			"tracks":      "GET /api/tracks",
			"addTrack":    "POST /api/tracks",
			"getTrack":    "GET /api/tracks/{id}",
			"deleteTrack": "DELETE /api/tracks/{id}",
			"loadSession": "POST /api/session/load",
			"anchor":      "POST /api/session/anchor",
			"state":       "GET /api/session/state",
			"reset":       "POST /api/session/reset",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.store.ListTracks()
	if err != nil {
		s.log.Errorf("Failed to get track count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:        "healthy",
		DatabasePath:  s.config.DBPath,
		TrackCount:    len(tracks),
		FrameInterval: s.config.FrameInterval.String(),
	})
}

// handleTracks handles GET and POST /api/tracks
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTracks(w, r)
	case http.MethodPost:
		s.handleAddTrack(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleListTracks handles GET /api/tracks
func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.store.ListTracks()
	if err != nil {
		s.log.Errorf("Failed to list tracks: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve tracks")
		return
	}

	trackDTOs := make([]TrackDTO, len(tracks))
	for i, track := range tracks {
		trackDTOs[i] = TrackDTO{
			ID:         track.ID,
			Title:      track.Title,
			Artist:     track.Artist,
			DurationMs: track.DurationMs,
		}
	}

	s.respondJSON(w, http.StatusOK, ListTracksResponse{
		Tracks: trackDTOs,
		Count:  len(trackDTOs),
	})
}

// handleAddTrack handles POST /api/tracks
func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	var req AddTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	trackID, err := s.store.RegisterTrack(req.Title, req.Artist, req.DurationMs)
	if err != nil {
		s.log.Errorf("Failed to register track: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to register track")
		return
	}

	sanitized := timing.Sanitize(req.Map)
	if err := s.store.SaveTimingMap(trackID, sanitized); err != nil {
		s.log.Errorf("Failed to save timing map for %s: %v", trackID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save timing map")
		return
	}

	s.log.Infof("Registered track: %s by %s (ID: %s, %d lines)", req.Title, req.Artist, trackID, len(sanitized.Lines))
	s.respondJSON(w, http.StatusCreated, AddTrackResponse{
		Message: "Track registered successfully",
		ID:      trackID,
		Title:   req.Title,
		Artist:  req.Artist,
		Lines:   len(sanitized.Lines),
	})
}

// handleTrack handles GET and DELETE /api/tracks/{id}
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	trackID := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	if trackID == "" || strings.Contains(trackID, "/") {
		s.respondError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetTrack(w, r, trackID)
	case http.MethodDelete:
		s.handleDeleteTrack(w, r, trackID)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleGetTrack handles GET /api/tracks/{id}
func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	track, err := s.store.GetTrack(trackID)
	if err != nil {
		s.log.Warnf("Track not found: %s", trackID)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	s.respondJSON(w, http.StatusOK, TrackDTO{
		ID:         track.ID,
		Title:      track.Title,
		Artist:     track.Artist,
		DurationMs: track.DurationMs,
	})
}

// handleDeleteTrack handles DELETE /api/tracks/{id}
func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request, trackID string) {
	track, err := s.store.GetTrack(trackID)
	if err != nil {
		s.log.Warnf("Track not found for deletion: %s", trackID)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Track %s not found", trackID))
		return
	}

	if err := s.store.DeleteTrack(trackID); err != nil {
		s.log.Errorf("Failed to delete track %s: %v", trackID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}

	s.log.Infof("Deleted track: %s by %s (ID: %s)", track.Title, track.Artist, trackID)
	s.respondJSON(w, http.StatusOK, DeleteTrackResponse{
		Message: "Track deleted successfully",
		ID:      trackID,
	})
}

// handleLoadSession handles POST /api/session/load
func (s *Server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LoadSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := s.store.TimingMap(r.Context(), req.TrackID)
	if err != nil {
		s.log.Warnf("No timing map for track %s: %v", req.TrackID, err)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("No timing map cached for track %s", req.TrackID))
		return
	}

	// Track change: fresh clock, fresh render state, then the new map.
	s.engine.Reset()
	s.engine.LoadTimingMap(m)

	s.mu.Lock()
	s.trackID = req.TrackID
	s.outroLatched = false
	s.mu.Unlock()

	s.log.Infof("Session loaded track %s (%d lines)", req.TrackID, len(m.Lines))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message":  "Session loaded",
		"track_id": req.TrackID,
	})
}

// handleAnchor handles POST /api/session/anchor
func (s *Server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnchorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	observedAt := time.Now()
	if req.ObservedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, req.ObservedAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "observed_at must be RFC3339")
			return
		}
		observedAt = parsed
	}

	s.engine.UpdateAnchor(req.PositionSec, observedAt, req.Playing, req.LatencySec)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionState handles GET /api/session/state
func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result := s.lastResult
	trackID := s.trackID
	outro := s.outroLatched
	s.outroLatched = false
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, SessionStateResponse{
		TrackID:      trackID,
		PositionSec:  result.PositionSec,
		State:        result.State.String(),
		LineIndex:    result.LineIndex,
		WordIndex:    result.WordIndex,
		WordProgress: result.WordProgress,
		OutroReached: outro,
		Commands:     result.Commands,
	})
}

// handleSessionReset handles POST /api/session/reset
func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.engine.Reset()

	s.mu.Lock()
	s.trackID = ""
	s.lastResult = lyricdna.TickResult{}
	s.outroLatched = false
	s.mu.Unlock()

	s.log.Infof("Session reset")
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Session reset"})
}
