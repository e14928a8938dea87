package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lunori/pkg/errors"
)

func newTestSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(t.TempDir(), slog.Default())
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	return store
}

func TestWriteRollingOverwrites(t *testing.T) {
	store := newTestSessionStore(t)

	// Each chunk is the whole recording so far; after N chunks the
	// container must equal the Nth chunk exactly, not a concatenation.
	var path string
	var err error
	for i := 1; i <= 5; i++ {
		path, err = store.WriteRolling("sess-1", ".webm", []byte(fmt.Sprintf("recording-through-chunk-%d", i)))
		if err != nil {
			t.Fatalf("WriteRolling chunk %d failed: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "recording-through-chunk-5" {
		t.Errorf("rolling container = %q, want last chunk only", data)
	}
}

func TestLatestContainerRolling(t *testing.T) {
	store := newTestSessionStore(t)

	store.WriteRolling("sess-1", ".ogg", []byte("audio"))

	path, err := store.LatestContainer("sess-1")
	if err != nil {
		t.Fatalf("LatestContainer failed: %v", err)
	}
	if filepath.Base(path) != "latest.ogg" {
		t.Errorf("LatestContainer = %q, want latest.ogg", path)
	}
}

func TestLatestContainerLegacyChunks(t *testing.T) {
	store := newTestSessionStore(t)

	dir := store.sessionDir("legacy")
	os.MkdirAll(dir, 0755)
	for _, name := range []string{"chunk-001.webm", "chunk-003.webm", "chunk-002.webm"} {
		os.WriteFile(filepath.Join(dir, name), []byte(name), 0644)
	}

	path, err := store.LatestContainer("legacy")
	if err != nil {
		t.Fatalf("LatestContainer failed: %v", err)
	}
	if filepath.Base(path) != "chunk-003.webm" {
		t.Errorf("LatestContainer = %q, want lexicographically last chunk", path)
	}
}

func TestLatestContainerMissingSession(t *testing.T) {
	store := newTestSessionStore(t)

	_, err := store.LatestContainer("ghost")
	if !errors.IsNotFound(err) {
		t.Errorf("LatestContainer missing session error = %v, want not found", err)
	}
}

func TestLatestContainerEmptySession(t *testing.T) {
	store := newTestSessionStore(t)

	os.MkdirAll(store.sessionDir("empty"), 0755)

	_, err := store.LatestContainer("empty")
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Type != errors.ErrTypeInvalidState {
		t.Errorf("LatestContainer empty session error = %v, want invalid state", err)
	}
}

func TestContainerExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/x/latest.webm", ".webm"},
		{"/x/latest.OGG", ".ogg"},
		{"/x/chunk-003", ".webm"},
		{"/x/latest.bin", ".webm"},
	}
	for _, tt := range tests {
		if got := ContainerExtension(tt.path); got != tt.want {
			t.Errorf("ContainerExtension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSweepOlderThan(t *testing.T) {
	store := newTestSessionStore(t)

	store.WriteRolling("stale", ".webm", []byte("old"))
	store.WriteRolling("fresh", ".webm", []byte("new"))

	// Backdate the stale session's files.
	old := time.Now().Add(-48 * time.Hour)
	staleDir := store.sessionDir("stale")
	entries, _ := os.ReadDir(staleDir)
	for _, entry := range entries {
		os.Chtimes(filepath.Join(staleDir, entry.Name()), old, old)
	}
	os.Chtimes(staleDir, old, old)

	removed := store.SweepOlderThan(time.Now().Add(-24 * time.Hour))

	if len(removed) != 1 || removed[0] != "stale" {
		t.Fatalf("SweepOlderThan removed %v, want [stale]", removed)
	}
	if store.Exists("stale") {
		t.Error("stale session still present")
	}
	if !store.Exists("fresh") {
		t.Error("fresh session was removed")
	}
}
