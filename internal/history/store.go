// Package history persists past calculations.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const storeVersion = "v1"

// Store keeps calculation entries in memory and writes them to a JSON file.
type Store struct {
	mu         sync.Mutex
	filepath   string
	maxEntries int
	entries    []Entry
}

// Entry represents one evaluated equation.
type Entry struct {
	Expression string    `json:"expression"`
	Left       string    `json:"left"`
	Operator   string    `json:"operator"`
	Right      string    `json:"right"`
	Result     string    `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
}

// Stats represents aggregated history statistics.
type Stats struct {
	TotalEntries int            `json:"totalEntries"`
	ByOperator   map[string]int `json:"byOperator"`
	First        time.Time      `json:"first,omitempty"`
	Last         time.Time      `json:"last,omitempty"`
}

// New creates a history store backed by path, loading existing entries.
// maxEntries <= 0 keeps every entry.
func New(path string, maxEntries int) (*Store, error) {
	store := &Store{
		filepath:   path,
		maxEntries: maxEntries,
	}

	if err := store.load(); err != nil {
		// A missing file is created on the first Save.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return store, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.filepath
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var historyData struct {
		Entries []Entry `json:"entries"`
	}

	if err := json.Unmarshal(data, &historyData); err != nil {
		return fmt.Errorf("failed to unmarshal history data: %w", err)
	}

	s.entries = historyData.Entries
	s.trim()

	return nil
}

// Save writes the history to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	historyData := struct {
		Entries []Entry   `json:"entries"`
		SavedAt time.Time `json:"savedAt"`
		Version string    `json:"version"`
	}{
		Entries: s.entries,
		SavedAt: time.Now(),
		Version: storeVersion,
	}

	if historyData.Entries == nil {
		historyData.Entries = []Entry{}
	}

	data, err := json.MarshalIndent(historyData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history data: %w", err)
	}

	if dir := filepath.Dir(s.filepath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	if err := os.WriteFile(s.filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// Record appends an entry, stamping it with the current time if unset.
func (s *Store) Record(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.entries = append(s.entries, entry)
	s.trim()
}

// Entries returns up to limit of the most recent entries, oldest first.
// limit <= 0 returns all of them.
func (s *Store) Entries(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if limit > 0 && len(s.entries) > limit {
		start = len(s.entries) - limit
	}

	out := make([]Entry, len(s.entries)-start)
	copy(out, s.entries[start:])

	return out
}

// Clear drops every entry. The file is rewritten on the next Save.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
}

// GetStats returns statistics over the stored entries.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalEntries: len(s.entries),
		ByOperator:   make(map[string]int),
	}

	for i, entry := range s.entries {
		stats.ByOperator[entry.Operator]++

		if i == 0 || entry.Timestamp.Before(stats.First) {
			stats.First = entry.Timestamp
		}

		if entry.Timestamp.After(stats.Last) {
			stats.Last = entry.Timestamp
		}
	}

	return stats
}

// trim drops the oldest entries beyond maxEntries. Callers hold mu or own s.
func (s *Store) trim() {
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.entries = append([]Entry(nil), s.entries[len(s.entries)-s.maxEntries:]...)
	}
}
