// Package history records generated commit messages in a local JSON file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxEntries is the default maximum number of history entries.
	DefaultMaxEntries = 1000
)

// Mode records which diff a message was generated from.
type Mode string

const (
	ModeStaged  Mode = "staged"
	ModeSummary Mode = "summary"
)

// Entry represents a single history entry.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Message     string    `json:"message"`
	DiffSummary string    `json:"diff_summary"`
	Model       string    `json:"model"`
	Endpoint    string    `json:"endpoint"`
	Mode        Mode      `json:"mode"`
	// Base is the base revision of a summary-mode entry.
	Base      string `json:"base,omitempty"`
	Committed bool   `json:"committed"`
}

// Manager defines the interface for history management.
type Manager interface {
	Save(entry *Entry) error
	List(limit int) ([]*Entry, error)
	Clear() error
}

// FileManager implements Manager using a JSON file for storage.
type FileManager struct {
	filePath   string
	maxEntries int
	mu         sync.Mutex
}

// NewFileManager creates a new FileManager with the specified file path and max entries.
func NewFileManager(filePath string, maxEntries int) *FileManager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &FileManager{
		filePath:   filePath,
		maxEntries: maxEntries,
	}
}

// Save appends entry to the history file, assigning an ID and timestamp
// when missing. The oldest entries are dropped beyond maxEntries.
func (m *FileManager) Save(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entries, err := m.loadEntries()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load history: %w", err)
	}

	entries = append(entries, entry)
	if len(entries) > m.maxEntries {
		entries = entries[len(entries)-m.maxEntries:]
	}

	if err := m.writeEntries(entries); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first, up to limit.
// A limit of 0 or less returns every entry.
func (m *FileManager) List(limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.loadEntries()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	newestFirst := make([]*Entry, len(entries))
	for i, e := range entries {
		newestFirst[len(entries)-1-i] = e
	}
	return newestFirst, nil
}

// Clear removes all entries from the history file.
func (m *FileManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeEntries([]*Entry{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Path returns the location of the history file.
func (m *FileManager) Path() string {
	return m.filePath
}

func (m *FileManager) loadEntries() ([]*Entry, error) {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return entries, nil
}

// writeEntries replaces the history file through a temporary file so an
// interrupted write never leaves truncated JSON behind.
func (m *FileManager) writeEntries(entries []*Entry) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	// CreateTemp already uses 0600; keep it explicit for existing umasks.
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to set history file permissions: %w", err)
	}
	if err := os.Rename(tmpName, m.filePath); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
