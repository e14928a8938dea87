package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/mood"
	"lunori/pkg/storage"
	"lunori/pkg/utils"
)

// createdAtLayout matches the entry ID granularity: seconds
const createdAtLayout = "2006-01-02T15:04:05"

// JournalService persists and retrieves journal entries. A saved entry is
// an immutable snapshot: transcript, mood and emotions are computed once
// at save time and never recomputed.
type JournalService struct {
	entries    *storage.EntryStore
	audio      *storage.AudioStore
	classifier mood.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewJournalService creates the journal service
func NewJournalService(entries *storage.EntryStore, audio *storage.AudioStore, classifier mood.Classifier, logger *slog.Logger) *JournalService {
	return &JournalService{
		entries:    entries,
		audio:      audio,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Save builds an entry from a transcript and a stored audio reference,
// scores its mood, and writes one document. The audio file must already
// exist; the entry references it but does not own its bytes.
func (s *JournalService) Save(ctx context.Context, audioFilename, transcript string, images []models.ImageMeta) (*models.Entry, string, error) {
	audioPath, err := s.audio.Resolve(audioFilename)
	if err != nil {
		return nil, "", err
	}

	text := strings.TrimSpace(transcript)

	report, err := mood.Analyze(ctx, s.classifier, text)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrTypeUnavailable, "MOOD_FAILED", "emotion scoring failed")
	}

	now := s.now()
	entry := &models.Entry{
		ID:            utils.UniqueTimestampID(now, s.entries.Exists),
		CreatedAt:     now.Format(createdAtLayout),
		AudioFilename: filepath.Base(audioFilename),
		AudioPath:     audioPath,
		Transcript:    text,
		Words:         utils.CountWords(text),
		Mood:          report.Mood,
		EmotionsTop3:  report.TopEmotions,
		EmotionsAll:   report.All,
		Images:        normalizeImages(images),
	}

	path, err := s.entries.Save(entry)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrTypeFileSystem, "ENTRY_SAVE_FAILED", "failed to save entry")
	}

	return entry, path, nil
}

// List returns the reduced listing projection, newest first
func (s *JournalService) List() ([]models.EntryListItem, error) {
	return s.entries.List()
}

// Get returns a full entry document by ID
func (s *JournalService) Get(id string) (*models.Entry, error) {
	return s.entries.Get(id)
}

// Delete removes the entry document, then best-effort removes the
// referenced playback audio and any raw container sharing its stem. Each
// artifact removal is independent; already-absent files are not errors.
// The per-artifact outcome lets callers detect partial cleanup.
func (s *JournalService) Delete(id string) (*models.DeleteResult, error) {
	if !s.entries.Exists(id) {
		return nil, errors.ErrEntryNotFound.WithContext("id", id)
	}

	// A corrupt document still gets deleted; it just loses the audio
	// cleanup, since the reference is unreadable.
	audioFilename := ""
	if entry, err := s.entries.Get(id); err == nil {
		audioFilename = entry.AudioFilename
	} else {
		s.logger.Warn("deleting entry with unreadable document", "id", id, "error", err)
	}

	result := &models.DeleteResult{}
	if err := s.entries.Remove(id); err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "ENTRY_DELETE_FAILED", "failed to delete entry")
	}
	result.JSON = true

	if audioFilename != "" {
		name := filepath.Base(audioFilename)
		result.Audio = s.audio.DeletePlayback(name)

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		result.Raw = s.audio.DeleteRawByStem(stem)
	}

	return result, nil
}

// normalizeImages trims captions, lowercases and deduplicates tags
// order-preserving, and reduces filenames to their basename
func normalizeImages(images []models.ImageMeta) []models.ImageMeta {
	if len(images) == 0 {
		return nil
	}

	out := make([]models.ImageMeta, 0, len(images))
	for _, img := range images {
		seen := make(map[string]bool)
		var tags []string
		for _, tag := range img.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}

		out = append(out, models.ImageMeta{
			Filename: filepath.Base(img.Filename),
			Caption:  strings.TrimSpace(img.Caption),
			Tags:     tags,
		})
	}

	return out
}
