// Package storage caches timing maps in SQLite so a track's word timings are
// fetched from the remote provider once and served locally afterwards. It
// implements the engine's TimingProvider interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/LyricDNA/pkg/lyricdna/timing"
)

const DefaultDBFile = "lyricdna.sqlite3"
const errStoreNil = "store is nil"

// Store is a SQLite-backed timing-map cache.
type Store struct {
	DB *gorm.DB
	db *sql.DB
}

// Track is a song whose timing map is cached.
type Track struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	Title      string `gorm:"uniqueIndex:idx_track_unique,priority:1" json:"title"`
	Artist     string `gorm:"uniqueIndex:idx_track_unique,priority:2" json:"artist"`
	DurationMs int    `json:"duration_ms"`
	CreatedAt  time.Time
}

// TimingLine is one lyric line of a track's timing map.
type TimingLine struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"`
	TrackID  string  `gorm:"type:varchar(36);index:idx_line_track"`
	Idx      int     `json:"idx"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
}

// TimingWord is one word of a line, keyed by track and line index.
type TimingWord struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	TrackID     string  `gorm:"type:varchar(36);index:idx_word_track"`
	LineIdx     int     `json:"line_idx"`
	Idx         int     `json:"idx"`
	OffsetSec   float64 `json:"offset_sec"`
	DurationSec float64 `json:"duration_sec"`
	Text        string  `json:"text"`
}

// InstrumentalMarker is a precomputed instrumental timestamp for a track.
type InstrumentalMarker struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	TrackID     string  `gorm:"type:varchar(36);index:idx_marker_track"`
	PositionSec float64 `json:"position_sec"`
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Track{}, &TimingLine{}, &TimingWord{}, &InstrumentalMarker{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{DB: db, db: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RegisterTrack returns the ID for a title/artist pair, creating the track if
// it does not exist yet.
func (s *Store) RegisterTrack(title, artist string, durationMs int) (string, error) {
	if s == nil || s.DB == nil {
		return "", errors.New(errStoreNil)
	}

	var track Track
	err := s.DB.Where("title = ? AND artist = ?", title, artist).First(&track).Error
	if err == nil {
		return track.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing track: %w", err)
	}

	track = Track{ID: uuid.NewString(), Title: title, Artist: artist, DurationMs: durationMs}
	if err := s.DB.Create(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if fetchErr := s.DB.Where("title = ? AND artist = ?", title, artist).First(&track).Error; fetchErr != nil {
				return "", fmt.Errorf("fetching track after constraint violation: %w", fetchErr)
			}
			return track.ID, nil
		}
		return "", fmt.Errorf("creating track: %w", err)
	}

	return track.ID, nil
}

// SaveTimingMap replaces the cached timing map for a track.
func (s *Store) SaveTimingMap(trackID string, m timing.Map) error {
	if s == nil || s.DB == nil {
		return errors.New(errStoreNil)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&TimingWord{}).Error; err != nil {
			return fmt.Errorf("deleting old words: %w", err)
		}
		if err := tx.Where("track_id = ?", trackID).Delete(&TimingLine{}).Error; err != nil {
			return fmt.Errorf("deleting old lines: %w", err)
		}
		if err := tx.Where("track_id = ?", trackID).Delete(&InstrumentalMarker{}).Error; err != nil {
			return fmt.Errorf("deleting old markers: %w", err)
		}

		lines := make([]TimingLine, 0, len(m.Lines))
		words := make([]TimingWord, 0, 256)
		for i, line := range m.Lines {
			lines = append(lines, TimingLine{
				TrackID:  trackID,
				Idx:      i,
				StartSec: line.StartSec,
				EndSec:   line.EndSec,
				Text:     line.Text,
			})
			for j, word := range line.Words {
				words = append(words, TimingWord{
					TrackID:     trackID,
					LineIdx:     i,
					Idx:         j,
					OffsetSec:   word.OffsetSec,
					DurationSec: word.DurationSec,
					Text:        word.Text,
				})
			}
		}

		if len(lines) > 0 {
			if err := tx.CreateInBatches(lines, 500).Error; err != nil {
				return fmt.Errorf("batch insert lines: %w", err)
			}
		}
		if len(words) > 0 {
			if err := tx.CreateInBatches(words, 500).Error; err != nil {
				return fmt.Errorf("batch insert words: %w", err)
			}
		}

		markers := make([]InstrumentalMarker, 0, len(m.InstrumentalMarkers))
		for _, pos := range m.InstrumentalMarkers {
			markers = append(markers, InstrumentalMarker{TrackID: trackID, PositionSec: pos})
		}
		if len(markers) > 0 {
			if err := tx.CreateInBatches(markers, 500).Error; err != nil {
				return fmt.Errorf("batch insert markers: %w", err)
			}
		}

		return nil
	})
}

// TimingMap loads the cached timing map for a track. Implements the engine's
// TimingProvider.
func (s *Store) TimingMap(ctx context.Context, trackID string) (timing.Map, error) {
	if s == nil || s.DB == nil {
		return timing.Map{}, errors.New(errStoreNil)
	}

	var lineRows []TimingLine
	if err := s.DB.WithContext(ctx).Where("track_id = ?", trackID).Order("idx").Find(&lineRows).Error; err != nil {
		return timing.Map{}, fmt.Errorf("querying lines: %w", err)
	}
	if len(lineRows) == 0 {
		return timing.Map{}, fmt.Errorf("no timing map cached for track %s", trackID)
	}

	var wordRows []TimingWord
	if err := s.DB.WithContext(ctx).Where("track_id = ?", trackID).Order("line_idx, idx").Find(&wordRows).Error; err != nil {
		return timing.Map{}, fmt.Errorf("querying words: %w", err)
	}

	var markerRows []InstrumentalMarker
	if err := s.DB.WithContext(ctx).Where("track_id = ?", trackID).Order("position_sec").Find(&markerRows).Error; err != nil {
		return timing.Map{}, fmt.Errorf("querying markers: %w", err)
	}

	m := timing.Map{TrackID: trackID, Lines: make([]timing.Line, len(lineRows))}
	for i, row := range lineRows {
		m.Lines[i] = timing.Line{
			StartSec: row.StartSec,
			EndSec:   row.EndSec,
			Text:     row.Text,
		}
	}
	for _, row := range wordRows {
		if row.LineIdx < 0 || row.LineIdx >= len(m.Lines) {
			continue
		}
		m.Lines[row.LineIdx].Words = append(m.Lines[row.LineIdx].Words, timing.Word{
			OffsetSec:   row.OffsetSec,
			DurationSec: row.DurationSec,
			Text:        row.Text,
		})
	}
	for _, row := range markerRows {
		m.InstrumentalMarkers = append(m.InstrumentalMarkers, row.PositionSec)
	}

	return timing.Sanitize(m), nil
}

// ListTracks returns all cached tracks.
func (s *Store) ListTracks() ([]Track, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New(errStoreNil)
	}
	var tracks []Track
	if err := s.DB.Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	return tracks, nil
}

// GetTrack returns one track by ID.
func (s *Store) GetTrack(trackID string) (*Track, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New(errStoreNil)
	}
	var track Track
	if err := s.DB.First(&track, "id = ?", trackID).Error; err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}

// DeleteTrack removes a track and its timing rows.
func (s *Store) DeleteTrack(trackID string) error {
	if s == nil || s.DB == nil {
		return errors.New(errStoreNil)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&TimingWord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("track_id = ?", trackID).Delete(&TimingLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("track_id = ?", trackID).Delete(&InstrumentalMarker{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", trackID).Delete(&Track{}).Error; err != nil {
			return err
		}
		return nil
	})
}
