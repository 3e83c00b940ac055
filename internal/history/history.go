package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/defaultxr/multiplicative/internal/core"
)

type HistoryManager struct {
	db *gorm.DB
}

// PlaybackEntry records one playback of a file: when it started, and how
// far into it the user got before it ended or was abandoned.
type PlaybackEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Path     string `gorm:"index"`
	Title    string
	Duration float64
	Position float64
}

// Age renders how long ago the playback started, for OSD display.
func (e *PlaybackEntry) Age() string {
	return humanize.Time(e.CreatedAt)
}

const (
	historySchemaVersion = 1
)

func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking history db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}

	if needsMigration(dbFileExists, db) {
		if err := db.AutoMigrate(&PlaybackEntry{}); err != nil {
			return nil, fmt.Errorf("error auto-migrating database schema: %w", err)
		}
		if err := writeSchemaVersion(historySchemaVersion); err != nil {
			return nil, fmt.Errorf("error writing history schema version: %w", err)
		}
	}

	return &HistoryManager{
		db: db,
	}, nil
}

func needsMigration(dbFileExists bool, db *gorm.DB) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := schemaVersionMatches()
	if err != nil || !versionMatches {
		return true
	}

	// If the version marker is present but the table is missing (corruption or manual deletion),
	// re-run migrations to restore the schema.
	return !db.Migrator().HasTable(&PlaybackEntry{})
}

func writeSchemaVersion(version int) error {
	versionPath := schemaVersionPath()
	return os.WriteFile(versionPath, []byte(strconv.Itoa(version)), 0644)
}

func schemaVersionMatches() (bool, error) {
	versionPath := schemaVersionPath()
	data, err := os.ReadFile(versionPath)
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(string(data))
	version, err := strconv.Atoi(trimmed)
	if err != nil {
		return false, err
	}
	if version != historySchemaVersion {
		return false, fmt.Errorf("history schema version mismatch: got %d, want %d", version, historySchemaVersion)
	}
	return true, nil
}

func schemaVersionPath() string {
	return filepath.Join(core.DataDir(), "history_schema_version")
}

// StartPlayback records that playback of a file began.
func (historyManager *HistoryManager) StartPlayback(path string, title string, duration float64) (*PlaybackEntry, error) {
	entry := PlaybackEntry{
		Path:     path,
		Title:    title,
		Duration: duration,
	}

	result := historyManager.db.Create(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// FinishPlayback records the position reached when playback of the entry ended.
func (historyManager *HistoryManager) FinishPlayback(entry *PlaybackEntry, position float64) (*PlaybackEntry, error) {
	entry.Position = position

	result := historyManager.db.Save(entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return entry, nil
}

// GetRecentEntries returns the most recent playbacks in chronological order.
func (historyManager *HistoryManager) GetRecentEntries(limit int) ([]PlaybackEntry, error) {
	var entries []PlaybackEntry
	result := historyManager.db.Order("created_at desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(entries)
	return entries, nil
}

// GetEntriesByPath returns past playbacks of one file, most recent first.
func (historyManager *HistoryManager) GetEntriesByPath(path string, limit int) ([]PlaybackEntry, error) {
	var entries []PlaybackEntry
	result := historyManager.db.Where("path = ?", path).
		Order("created_at desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// SearchHistory searches for playbacks whose path or title contains the
// given substring. Returns entries most recent first.
func (historyManager *HistoryManager) SearchHistory(query string, limit int) ([]PlaybackEntry, error) {
	var entries []PlaybackEntry
	result := historyManager.db.Where("path LIKE ? OR title LIKE ?", "%"+query+"%", "%"+query+"%").
		Order("created_at desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// DeleteEntry removes one history entry.
func (historyManager *HistoryManager) DeleteEntry(id uint) error {
	result := historyManager.db.Delete(&PlaybackEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no history entry found with id %d", id)
	}

	return nil
}

// ResetHistory removes all history entries.
func (historyManager *HistoryManager) ResetHistory() error {
	result := historyManager.db.Exec("DELETE FROM playback_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}
