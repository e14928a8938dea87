package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lunori/pkg/errors"
	"lunori/pkg/models"
)

// EntryStore persists journal entries as one JSON document per entry,
// keyed by the entry ID. Entries are immutable snapshots: there is no
// update path, only save, read and delete.
type EntryStore struct {
	dataDir string
	logger  *slog.Logger
}

// NewEntryStore creates the store and its directory
func NewEntryStore(dataDir string, logger *slog.Logger) (*EntryStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create entries directory %s: %w", dataDir, err)
	}
	return &EntryStore{dataDir: dataDir, logger: logger}, nil
}

func (s *EntryStore) entryPath(id string) string {
	return filepath.Join(s.dataDir, filepath.Base(id)+".json")
}

// Exists reports whether an entry document with this ID is on disk
func (s *EntryStore) Exists(id string) bool {
	_, err := os.Stat(s.entryPath(id))
	return err == nil
}

// Save writes an entry document and returns its path
func (s *EntryStore) Save(entry *models.Entry) (string, error) {
	path := s.entryPath(entry.ID)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal entry %s: %w", entry.ID, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write entry %s: %w", entry.ID, err)
	}

	return path, nil
}

// Get returns the full entry document by ID
func (s *EntryStore) Get(id string) (*models.Entry, error) {
	data, err := os.ReadFile(s.entryPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrEntryNotFound.WithContext("id", id)
		}
		return nil, fmt.Errorf("read entry %s: %w", id, err)
	}

	var entry models.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal entry %s: %w", id, err)
	}

	return &entry, nil
}

// Remove deletes the entry document. An already-missing document is a
// NotFound, not a silent success: a second delete of the same entry must
// surface as such.
func (s *EntryStore) Remove(id string) error {
	err := os.Remove(s.entryPath(id))
	if os.IsNotExist(err) {
		return errors.ErrEntryNotFound.WithContext("id", id)
	}
	return err
}

// List scans all entry documents and returns the reduced listing
// projection, newest first. Unreadable or corrupt documents are skipped,
// never fatal: one bad file must not take down the whole history view.
func (s *EntryStore) List() ([]models.EntryListItem, error) {
	files, err := filepath.Glob(filepath.Join(s.dataDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan entries directory: %w", err)
	}

	items := make([]models.EntryListItem, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			s.logger.Warn("skipping unreadable entry", "file", file, "error", err)
			continue
		}

		var entry models.Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			s.logger.Warn("skipping corrupt entry", "file", file, "error", err)
			continue
		}

		items = append(items, models.EntryListItem{
			ID:            entry.ID,
			CreatedAt:     entry.CreatedAt,
			AudioFilename: entry.AudioFilename,
			Words:         entry.Words,
			Mood:          entry.Mood,
			EmotionsTop3:  entry.EmotionsTop3,
			ImageCount:    len(entry.Images),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return sortKey(items[i]) > sortKey(items[j])
	})

	return items, nil
}

// sortKey orders by creation time, falling back to the ID, which is itself
// timestamp-derived
func sortKey(item models.EntryListItem) string {
	if strings.TrimSpace(item.CreatedAt) != "" {
		return item.CreatedAt
	}
	return item.ID
}
