package storage

import (
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
)

const DefaultDBFile = "stemforge.sqlite3"
const errClientNil = "storage client is nil"

// Client is the track catalog: every completed run is recorded so stems can
// later be found by title, key, or tempo.
type Client struct {
	DB *gorm.DB
	db *sql.DB
}

type Track struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Title     string    `gorm:"uniqueIndex:idx_track_unique,priority:1" json:"title"`
	YouTubeID string    `gorm:"column:youtube_id;uniqueIndex:idx_track_unique,priority:2;index:idx_youtube_id" json:"youtube_id"`
	KeyLabel  string    `gorm:"index:idx_key_label" json:"key_label"`
	BPM       float64   `json:"bpm"`
	OutputDir string    `json:"output_dir"`
	CreatedAt time.Time
}

type Stem struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	TrackID string `gorm:"type:varchar(36);index:idx_stem_track" json:"track_id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
}

func Open(dbPath string) (*Client, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
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

	if err := db.AutoMigrate(&Track{}, &Stem{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Client{DB: db, db: sqlDB}, nil
}

func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterTrack records a completed run, updating key/tempo/location on a
// re-run of the same track rather than duplicating it.
func (c *Client) RegisterTrack(title, youtubeID, keyLabel string, bpm float64, outputDir string) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errClientNil)
	}

	var track Track
	err := c.DB.Where("title = ? AND youtube_id = ?", title, youtubeID).First(&track).Error
	if err == nil {
		updates := map[string]any{
			"key_label":  keyLabel,
			"bpm":        bpm,
			"output_dir": outputDir,
		}
		if err := c.DB.Model(&track).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("updating track: %w", err)
		}
		// Stems are re-written on a re-run; drop the stale rows.
		if err := c.DB.Where("track_id = ?", track.ID).Delete(&Stem{}).Error; err != nil {
			return "", fmt.Errorf("clearing stale stems: %w", err)
		}
		return track.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing track: %w", err)
	}

	track = Track{
		ID:        uuid.NewString(),
		Title:     title,
		YouTubeID: youtubeID,
		KeyLabel:  keyLabel,
		BPM:       bpm,
		OutputDir: outputDir,
	}
	if err := c.DB.Create(&track).Error; err != nil {
		return "", fmt.Errorf("creating track: %w", err)
	}
	return track.ID, nil
}

// StoreStems records the persisted stem files of a track.
func (c *Client) StoreStems(trackID string, stems map[string]string) error {
	if c == nil || c.DB == nil {
		return errors.New(errClientNil)
	}
	if len(stems) == 0 {
		return nil
	}

	entries := make([]Stem, 0, len(stems))
	for name, path := range stems {
		entries = append(entries, Stem{TrackID: trackID, Name: name, Path: path})
	}
	if err := c.DB.CreateInBatches(entries, 100).Error; err != nil {
		return fmt.Errorf("batch insert stems: %w", err)
	}
	return nil
}

func (c *Client) GetTrackByID(trackID string) (*Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errClientNil)
	}
	var track Track
	if err := c.DB.First(&track, "id = ?", trackID).Error; err != nil {
		return nil, err
	}
	return &track, nil
}

func (c *Client) ListTracks() ([]Track, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errClientNil)
	}
	var tracks []Track
	if err := c.DB.Order("created_at").Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *Client) ListStems(trackID string) ([]Stem, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errClientNil)
	}
	var stems []Stem
	if err := c.DB.Where("track_id = ?", trackID).Order("name").Find(&stems).Error; err != nil {
		return nil, err
	}
	return stems, nil
}

// DeleteTrackByID removes a track and its stem records in one transaction.
func (c *Client) DeleteTrackByID(trackID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&Stem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", trackID).Delete(&Track{}).Error
	})
}
