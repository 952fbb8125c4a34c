package main

import (
	"fmt"
	"net/http"
	"strings"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Root endpoint
	mux.HandleFunc("/", s.handleRoot)

	// Health endpoints
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/health/metrics", s.handleMetrics)

	// Track management endpoints
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/api/tracks/", s.handleTrack)

	// Session endpoints
	mux.HandleFunc("/api/session/load", s.handleLoadSession)
	mux.HandleFunc("/api/session/anchor", s.handleAnchor)
	mux.HandleFunc("/api/session/state", s.handleSessionState)
	mux.HandleFunc("/api/session/reset", s.handleSessionReset)

	// Wrap with CORS middleware
	return corsMiddleware(s.config.AllowedOrigins)(mux)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			// Handle preflight requests
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start starts the frame loop and the HTTP server
func (s *Server) Start() error {
	handler := s.setupRoutes()

	go s.runFrames()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("🎤 LyricDNA server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	s.log.Infof("   Frame interval: %s", s.config.FrameInterval)
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("\nEndpoints:")
	s.log.Infof("   GET    /health               - Health check")
	s.log.Infof("   GET    /api/health/metrics   - Server metrics")
	s.log.Infof("   GET    /api/tracks           - List cached tracks")
	s.log.Infof("   POST   /api/tracks           - Register track + timing map")
	s.log.Infof("   GET    /api/tracks/{id}      - Get track by ID")
	s.log.Infof("   DELETE /api/tracks/{id}      - Delete track by ID")
	s.log.Infof("   POST   /api/session/load     - Load a track into the session")
	s.log.Infof("   POST   /api/session/anchor   - Push a position sample")
	s.log.Infof("   GET    /api/session/state    - Latest frame snapshot")
	s.log.Infof("   POST   /api/session/reset    - Reset the session")

	return http.ListenAndServe(addr, handler)
}
