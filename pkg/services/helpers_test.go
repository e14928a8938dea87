package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"lunori/pkg/config"
	"lunori/pkg/engine"
	"lunori/pkg/models"
	"lunori/pkg/storage"
)

type stubTranscriber struct {
	result   *models.Transcription
	err      error
	calls    int
	lastPath string
	lastOpts engine.TranscribeOptions
}

func (s *stubTranscriber) Transcribe(ctx context.Context, path string, opts engine.TranscribeOptions) (*models.Transcription, error) {
	s.calls++
	s.lastPath = path
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &models.Transcription{Text: "stub transcript", Language: "en", Segments: []models.Segment{}}, nil
}

type stubClassifier struct {
	scores []models.EmotionScore
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, text string) ([]models.EmotionScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.scores != nil {
		return s.scores, nil
	}
	return []models.EmotionScore{{Label: "joy", Score: 1}}, nil
}

type stubCaptioner struct {
	caption string
	err     error
}

func (s *stubCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	return s.caption, s.err
}

// stubTranscoder optionally simulates a broken ffmpeg install
type stubTranscoder struct {
	fail  bool
	calls int
}

func (s *stubTranscoder) ToWAV(ctx context.Context, src, dst string) error {
	s.calls++
	if s.fail {
		return fmt.Errorf("exit status 1")
	}
	return os.WriteFile(dst, []byte("wav-audio"), 0644)
}

func newTestRegistry(t *testing.T, transcriber engine.Transcriber, classifier engine.EmotionClassifier, captioner engine.Captioner) *engine.Registry {
	t.Helper()

	cfgStore := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	factory := func(name string) (engine.Transcriber, error) {
		return transcriber, nil
	}

	registry, err := engine.NewRegistry(factory, cfgStore, classifier, captioner, slog.Default())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return registry
}

type recordingFixture struct {
	service    *RecordingService
	sessions   *storage.SessionStore
	audio      *storage.AudioStore
	transcoder *stubTranscoder
	scribe     *stubTranscriber
}

func newRecordingFixture(t *testing.T) *recordingFixture {
	t.Helper()

	dir := t.TempDir()
	logger := slog.Default()

	sessions, err := storage.NewSessionStore(filepath.Join(dir, "sessions"), logger)
	if err != nil {
		t.Fatal(err)
	}
	audio, err := storage.NewAudioStore(filepath.Join(dir, "audio"), filepath.Join(dir, "raw_audio"))
	if err != nil {
		t.Fatal(err)
	}

	scribe := &stubTranscriber{}
	transcoder := &stubTranscoder{}
	registry := newTestRegistry(t, scribe, &stubClassifier{}, &stubCaptioner{})

	return &recordingFixture{
		service:    NewRecordingService(sessions, audio, registry, transcoder, logger),
		sessions:   sessions,
		audio:      audio,
		transcoder: transcoder,
		scribe:     scribe,
	}
}
