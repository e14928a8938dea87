package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/storage"
)

type stubMoodClassifier struct {
	scores []models.EmotionScore
	err    error
}

func (s *stubMoodClassifier) ClassifyEmotion(ctx context.Context, text string) ([]models.EmotionScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.scores != nil {
		return s.scores, nil
	}
	return []models.EmotionScore{{Label: "joy", Score: 1}}, nil
}

type journalFixture struct {
	service *JournalService
	entries *storage.EntryStore
	audio   *storage.AudioStore
	mood    *stubMoodClassifier
}

func newJournalFixture(t *testing.T) *journalFixture {
	t.Helper()

	dir := t.TempDir()
	logger := slog.Default()

	entries, err := storage.NewEntryStore(filepath.Join(dir, "entries"), logger)
	if err != nil {
		t.Fatal(err)
	}
	audio, err := storage.NewAudioStore(filepath.Join(dir, "audio"), filepath.Join(dir, "raw_audio"))
	if err != nil {
		t.Fatal(err)
	}

	classifier := &stubMoodClassifier{}
	return &journalFixture{
		service: NewJournalService(entries, audio, classifier, logger),
		entries: entries,
		audio:   audio,
		mood:    classifier,
	}
}

func (f *journalFixture) storePlayback(t *testing.T, name string) {
	t.Helper()
	if _, err := f.audio.SavePlayback(name, []byte("audio")); err != nil {
		t.Fatal(err)
	}
}

func TestJournalSaveMissingAudio(t *testing.T) {
	f := newJournalFixture(t)

	_, _, err := f.service.Save(context.Background(), "ghost.wav", "hello", nil)
	if !errors.IsNotFound(err) {
		t.Errorf("Save with missing audio = %v, want not found", err)
	}
}

func TestJournalSave(t *testing.T) {
	f := newJournalFixture(t)
	f.storePlayback(t, "rec.wav")
	f.mood.scores = []models.EmotionScore{
		{Label: "joy", Score: 0.7},
		{Label: "sadness", Score: 0.3},
	}

	entry, path, err := f.service.Save(context.Background(), "rec.wav", "  a small win today  ", nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if entry.Transcript != "a small win today" || entry.Words != 4 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.AudioFilename != "rec.wav" {
		t.Errorf("AudioFilename = %q", entry.AudioFilename)
	}
	// joy 0.7*1.0 + sadness 0.3*-1.0 = 0.4 -> 40
	if entry.Mood != 40 {
		t.Errorf("Mood = %v, want 40", entry.Mood)
	}
	if len(entry.EmotionsTop3) != 2 || entry.EmotionsTop3[0].Label != "joy" {
		t.Errorf("EmotionsTop3 = %+v", entry.EmotionsTop3)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("entry document missing: %v", err)
	}
	stored, err := f.service.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get after Save failed: %v", err)
	}
	if stored.Transcript != entry.Transcript || stored.Mood != entry.Mood {
		t.Errorf("stored = %+v", stored)
	}
}

func TestJournalSaveMoodFailure(t *testing.T) {
	f := newJournalFixture(t)
	f.storePlayback(t, "rec.wav")
	f.mood.err = os.ErrDeadlineExceeded

	_, _, err := f.service.Save(context.Background(), "rec.wav", "hello", nil)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Type != errors.ErrTypeUnavailable {
		t.Errorf("error = %v, want unavailable", err)
	}
}

func TestJournalSaveNormalizesImages(t *testing.T) {
	f := newJournalFixture(t)
	f.storePlayback(t, "rec.wav")

	images := []models.ImageMeta{{
		Filename: "/tmp/sub/photo.jpg",
		Caption:  "  a cat  ",
		Tags:     []string{" Cat ", "cat", "MAT", ""},
	}}

	entry, _, err := f.service.Save(context.Background(), "rec.wav", "hello", images)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(entry.Images) != 1 {
		t.Fatalf("Images = %+v", entry.Images)
	}
	img := entry.Images[0]
	if img.Filename != "photo.jpg" || img.Caption != "a cat" {
		t.Errorf("image = %+v", img)
	}
	if !reflect.DeepEqual(img.Tags, []string{"cat", "mat"}) {
		t.Errorf("tags = %v", img.Tags)
	}
}

func TestJournalDelete(t *testing.T) {
	f := newJournalFixture(t)
	f.storePlayback(t, "rec.wav")
	if _, err := f.audio.SaveRaw("rec.webm", []byte("raw")); err != nil {
		t.Fatal(err)
	}

	entry, _, err := f.service.Save(context.Background(), "rec.wav", "hello", nil)
	if err != nil {
		t.Fatal(err)
	}

	result, err := f.service.Delete(entry.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !result.JSON || !result.Audio || !result.Raw {
		t.Errorf("result = %+v, want all artifacts removed", result)
	}

	if _, err := f.service.Get(entry.ID); !errors.IsNotFound(err) {
		t.Errorf("Get after delete = %v", err)
	}
	if _, err := f.audio.Resolve("rec.wav"); !errors.IsNotFound(err) {
		t.Errorf("audio survived delete: %v", err)
	}

	// Second delete of the same entry is a clean not-found.
	if _, err := f.service.Delete(entry.ID); !errors.IsNotFound(err) {
		t.Errorf("double delete = %v, want not found", err)
	}
}

func TestJournalDeleteReportsMissingAudio(t *testing.T) {
	f := newJournalFixture(t)
	f.storePlayback(t, "rec.wav")

	entry, _, err := f.service.Save(context.Background(), "rec.wav", "hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	f.audio.DeletePlayback("rec.wav")

	result, err := f.service.Delete(entry.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !result.JSON || result.Audio || result.Raw {
		t.Errorf("result = %+v, want json only", result)
	}
}

func TestJournalList(t *testing.T) {
	f := newJournalFixture(t)
	f.storePlayback(t, "rec.wav")

	first, _, err := f.service.Save(context.Background(), "rec.wav", "first entry here", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := f.service.Save(context.Background(), "rec.wav", "second", nil)
	if err != nil {
		t.Fatal(err)
	}

	items, err := f.service.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %+v", items)
	}

	got := map[string]int{}
	for _, item := range items {
		got[item.ID] = item.Words
	}
	if got[first.ID] != 3 || got[second.ID] != 1 {
		t.Errorf("listing projection = %+v", items)
	}
}
