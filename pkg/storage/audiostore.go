package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lunori/pkg/errors"
)

// RawExtensions is the allowed set of recording container formats. The
// browser's recorder usually produces .webm; .ogg, .wav and .mp3 cover
// uploads from other sources.
var RawExtensions = []string{".webm", ".ogg", ".wav", ".mp3"}

// DefaultExtension is used when an uploaded filename carries no
// recognizable container extension
const DefaultExtension = ".webm"

// IsAllowedExtension reports whether ext is an accepted audio container
func IsAllowedExtension(ext string) bool {
	for _, allowed := range RawExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// NormalizeExtension derives a safe container extension from an uploaded
// filename, defaulting when absent or unrecognized
func NormalizeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !IsAllowedExtension(ext) {
		return DefaultExtension
	}
	return ext
}

// AudioStore manages the two durable audio directories: playback-ready
// files and the raw containers they were converted from.
type AudioStore struct {
	playbackDir string
	rawDir      string
}

// NewAudioStore creates the store and its directories
func NewAudioStore(playbackDir, rawDir string) (*AudioStore, error) {
	for _, dir := range []string{playbackDir, rawDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create audio directory %s: %w", dir, err)
		}
	}
	return &AudioStore{playbackDir: playbackDir, rawDir: rawDir}, nil
}

// PlaybackPath returns the playback-store path for a filename
func (s *AudioStore) PlaybackPath(name string) string {
	return filepath.Join(s.playbackDir, filepath.Base(name))
}

// RawPath returns the raw-store path for a filename
func (s *AudioStore) RawPath(name string) string {
	return filepath.Join(s.rawDir, filepath.Base(name))
}

// SavePlayback writes a playback-ready audio file and returns its path
func (s *AudioStore) SavePlayback(name string, data []byte) (string, error) {
	path := s.PlaybackPath(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write audio file %s: %w", name, err)
	}
	return path, nil
}

// SaveRaw writes a raw container file and returns its path
func (s *AudioStore) SaveRaw(name string, data []byte) (string, error) {
	path := s.RawPath(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write raw audio file %s: %w", name, err)
	}
	return path, nil
}

// PlaybackExists reports whether a playback file with this name exists
func (s *AudioStore) PlaybackExists(name string) bool {
	_, err := os.Stat(s.PlaybackPath(name))
	return err == nil
}

// HasStem reports whether any stored file, playback or raw, uses this
// filename stem. Used to detect same-second ID collisions.
func (s *AudioStore) HasStem(stem string) bool {
	for _, ext := range RawExtensions {
		if _, err := os.Stat(s.RawPath(stem + ext)); err == nil {
			return true
		}
	}
	_, err := os.Stat(s.PlaybackPath(stem + ".wav"))
	return err == nil
}

// Resolve locates a stored audio file by basename, checking the playback
// store before falling back to the raw store
func (s *AudioStore) Resolve(filename string) (string, error) {
	name := filepath.Base(filename)
	for _, path := range []string{s.PlaybackPath(name), s.RawPath(name)} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.ErrAudioNotFound.WithContext("filename", name)
}

// DeletePlayback removes a playback file, reporting whether a file was
// actually removed. An already-missing file is not an error.
func (s *AudioStore) DeletePlayback(name string) bool {
	return os.Remove(s.PlaybackPath(name)) == nil
}

// DeleteRawByStem removes raw containers sharing the filename stem across
// all known extensions. Each removal is independently best-effort.
func (s *AudioStore) DeleteRawByStem(stem string) bool {
	removed := false
	for _, ext := range RawExtensions {
		if os.Remove(s.RawPath(stem+ext)) == nil {
			removed = true
		}
	}
	return removed
}
