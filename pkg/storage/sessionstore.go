package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lunori/pkg/errors"
)

// rollingStem is the fixed logical name of the one always-complete audio
// container each session keeps. Every incoming chunk overwrites it whole.
const rollingStem = "latest"

// SessionStore manages the per-session directories holding rolling live
// recording containers. Sessions are independent per ID and need no
// cross-session locking.
type SessionStore struct {
	dataDir string
	logger  *slog.Logger
}

// NewSessionStore creates the store and its directory
func NewSessionStore(dataDir string, logger *slog.Logger) (*SessionStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create sessions directory %s: %w", dataDir, err)
	}
	return &SessionStore{dataDir: dataDir, logger: logger}, nil
}

func (s *SessionStore) sessionDir(sessionID string) string {
	return filepath.Join(s.dataDir, filepath.Base(sessionID))
}

// Exists reports whether a session directory is present
func (s *SessionStore) Exists(sessionID string) bool {
	info, err := os.Stat(s.sessionDir(sessionID))
	return err == nil && info.IsDir()
}

// WriteRolling overwrites the session's rolling container with blob,
// creating the session directory on first use. The blob is expected to be
// the entire recording so far, so every write leaves a complete,
// independently decodable container behind.
func (s *SessionStore) WriteRolling(sessionID, ext string, blob []byte) (string, error) {
	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create session directory %s: %w", sessionID, err)
	}

	path := filepath.Join(dir, rollingStem+ext)
	if err := os.WriteFile(path, blob, 0644); err != nil {
		return "", fmt.Errorf("write rolling container %s: %w", sessionID, err)
	}

	return path, nil
}

// LatestContainer returns the path of the session's rolling container.
// Older clients wrote chunk-* files instead of a rolling container; if no
// rolling file exists the lexicographically last chunk wins.
func (s *SessionStore) LatestContainer(sessionID string) (string, error) {
	dir := s.sessionDir(sessionID)
	if _, err := os.Stat(dir); err != nil {
		return "", errors.ErrSessionNotFound.WithContext("session_id", sessionID)
	}

	matches, err := filepath.Glob(filepath.Join(dir, rollingStem+".*"))
	if err == nil && len(matches) > 0 {
		sort.Strings(matches)
		return matches[0], nil
	}

	chunks, err := filepath.Glob(filepath.Join(dir, "chunk-*"))
	if err != nil || len(chunks) == 0 {
		return "", errors.ErrSessionEmpty.WithContext("session_id", sessionID)
	}
	sort.Strings(chunks)
	return chunks[len(chunks)-1], nil
}

// Remove deletes a session directory and everything in it
func (s *SessionStore) Remove(sessionID string) error {
	return os.RemoveAll(s.sessionDir(sessionID))
}

// SweepOlderThan removes session directories whose newest file has not
// been touched since the cutoff, and returns the removed session IDs.
// Abandoned sessions would otherwise accumulate forever.
func (s *SessionStore) SweepOlderThan(cutoff time.Time) []string {
	dirEntries, err := os.ReadDir(s.dataDir)
	if err != nil {
		s.logger.Warn("session sweep failed to read sessions directory", "error", err)
		return nil
	}

	var removed []string
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}

		sessionID := dirEntry.Name()
		if s.newestModTime(sessionID).After(cutoff) {
			continue
		}

		if err := s.Remove(sessionID); err != nil {
			s.logger.Warn("session sweep failed to remove session", "session_id", sessionID, "error", err)
			continue
		}
		removed = append(removed, sessionID)
	}

	return removed
}

// newestModTime returns the most recent modification time of any file in
// the session directory, falling back to the directory's own mtime
func (s *SessionStore) newestModTime(sessionID string) time.Time {
	dir := s.sessionDir(sessionID)

	newest := time.Time{}
	if info, err := os.Stat(dir); err == nil {
		newest = info.ModTime()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return newest
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}

	return newest
}

// ContainerExtension derives the container extension from a stored
// rolling-container path, defaulting when unrecognized
func ContainerExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsAllowedExtension(ext) {
		return DefaultExtension
	}
	return ext
}
