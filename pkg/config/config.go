package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// DefaultWhisperModel is used when the config file is missing or invalid
const DefaultWhisperModel = "small.en"

// allowedWhisperModels is the fixed set of loadable transcription models
var allowedWhisperModels = map[string]bool{
	"tiny":      true,
	"base.en":   true,
	"small.en":  true,
	"medium.en": true,
}

// IsAllowedWhisperModel reports whether name is a loadable model name
func IsAllowedWhisperModel(name string) bool {
	return allowedWhisperModels[name]
}

// AllowedWhisperModels returns the allow-listed model names, sorted
func AllowedWhisperModels() []string {
	names := make([]string, 0, len(allowedWhisperModels))
	for name := range allowedWhisperModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config holds the persisted user preferences
type Config struct {
	WhisperModel string `json:"whisper_model"`
}

// Store persists the config as a small JSON document at a fixed path
type Store struct {
	path string
}

// NewStore creates a config store for the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the config from disk, falling back to defaults when the file
// is missing, unreadable, or carries an unknown model name
func (s *Store) Load() *Config {
	cfg := &Config{WhisperModel: DefaultWhisperModel}

	if data, err := os.ReadFile(s.path); err == nil {
		var loaded Config
		if err := json.Unmarshal(data, &loaded); err == nil && IsAllowedWhisperModel(loaded.WhisperModel) {
			cfg.WhisperModel = loaded.WhisperModel
		}
	}

	return cfg
}

// Save writes the config to disk
func (s *Store) Save(cfg *Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// EnsureExists writes the default config on first run
func (s *Store) EnsureExists() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.Save(&Config{WhisperModel: DefaultWhisperModel})
}
