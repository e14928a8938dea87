package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lunori/pkg/engine"
	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/storage"
	"lunori/pkg/transcode"
	"lunori/pkg/utils"
)

// RecordingService turns client-submitted audio into transcripts and
// durable recordings. Live capture keeps one rolling container per
// session: every chunk is the entire recording so far and overwrites the
// container whole, so any write leaves a complete, decodable file behind.
// Incrementally appended containers would carry headers or trailers that
// are only valid once the stream closes.
type RecordingService struct {
	sessions   *storage.SessionStore
	audio      *storage.AudioStore
	registry   *engine.Registry
	transcoder transcode.Transcoder
	logger     *slog.Logger
	now        func() time.Time
}

// NewRecordingService creates the recording service
func NewRecordingService(sessions *storage.SessionStore, audio *storage.AudioStore, registry *engine.Registry, transcoder transcode.Transcoder, logger *slog.Logger) *RecordingService {
	return &RecordingService{
		sessions:   sessions,
		audio:      audio,
		registry:   registry,
		transcoder: transcoder,
		logger:     logger,
		now:        time.Now,
	}
}

// IngestChunk overwrites the session's rolling container with the latest
// full-recording blob and returns a best-effort live preview transcript.
// A preview transcription failure yields an empty preview, never a failed
// request: live preview must not block live capture. The index is
// diagnostic only; chunks are idempotent overwrites, so ordering has no
// correctness impact.
func (s *RecordingService) IngestChunk(ctx context.Context, sessionID string, index int, filename string, blob []byte) (*models.ChunkPreview, error) {
	sid := utils.SanitizeIdentifier(sessionID)
	if sid == "" {
		return nil, errors.ErrInvalidSessionID
	}
	if len(blob) == 0 {
		return nil, errors.InvalidArgument("EMPTY_CHUNK", "empty chunk")
	}

	ext := storage.NormalizeExtension(filename)
	path, err := s.sessions.WriteRolling(sid, ext, blob)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "CHUNK_WRITE_FAILED", "failed to store chunk")
	}

	preview := &models.ChunkPreview{
		SessionID: sid,
		Index:     index,
		Segments:  []models.Segment{},
	}

	result, err := s.registry.Transcribe(ctx, path, engine.PreviewOptions())
	if err != nil {
		s.logger.Warn("live preview transcription failed", "session_id", sid, "index", index, "error", err)
		return preview, nil
	}

	preview.Transcript = strings.TrimSpace(result.Text)
	preview.Segments = trimSegments(result.Segments)
	return preview, nil
}

// Finalize runs the one full transcription a session ends with and
// persists two artifacts: the rolling container copied verbatim into the
// raw store, and, when the transcoder cooperates, a 16 kHz mono WAV in the
// playback store. Conversion failure degrades to the raw container as the
// canonical audio reference; it never fails the call. Finalize-time
// transcription failure does fail the call, the caller needs a real
// transcript here.
func (s *RecordingService) Finalize(ctx context.Context, sessionID string) (*models.FinalizeResult, error) {
	sid := utils.SanitizeIdentifier(sessionID)
	if sid == "" {
		return nil, errors.ErrInvalidSessionID
	}

	latest, err := s.sessions.LatestContainer(sid)
	if err != nil {
		return nil, err
	}

	result, err := s.registry.Transcribe(ctx, latest, engine.PreviewOptions())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeUnavailable, "TRANSCRIBE_FAILED", "final transcription failed")
	}

	finalText := strings.TrimSpace(result.Text)

	blob, err := os.ReadFile(latest)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "SESSION_READ_FAILED", "failed to read session audio")
	}

	ts := utils.UniqueTimestampID(s.now(), s.audio.HasStem)
	ext := storage.ContainerExtension(latest)

	rawName := ts + ext
	rawPath, err := s.audio.SaveRaw(rawName, blob)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "RAW_SAVE_FAILED", "failed to store raw audio")
	}

	wavName := ts + ".wav"
	wavPath := s.audio.PlaybackPath(wavName)

	converted := true
	if err := s.transcoder.ToWAV(ctx, rawPath, wavPath); err != nil {
		converted = false
		s.logger.Warn("playback conversion failed, falling back to raw container", "session_id", sid, "error", err)
	}

	final := &models.FinalizeResult{
		SessionID:        sid,
		FinalTranscript:  finalText,
		Words:            utils.CountWords(finalText),
		RawAudioFilename: rawName,
		RawAudioPath:     rawPath,
		Converted:        converted,
		Note:             "Rolled up to a single container; WAV returned when available.",
	}
	if converted {
		final.AudioFilename = wavName
		final.AudioPath = wavPath
	} else {
		final.AudioFilename = rawName
		final.AudioPath = rawPath
	}

	return final, nil
}

// TranscribeUpload stores a one-shot audio upload in the playback store
// and transcribes it with language auto-detection.
func (s *RecordingService) TranscribeUpload(ctx context.Context, filename string, blob []byte) (*models.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !storage.IsAllowedExtension(ext) {
		return nil, errors.InvalidArgument("UNSUPPORTED_FORMAT", "please upload a supported audio format")
	}
	if len(blob) == 0 {
		return nil, errors.ErrEmptyPayload
	}

	name := utils.UniqueTimestampID(s.now(), s.audio.HasStem) + ext
	path, err := s.audio.SavePlayback(name, blob)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "AUDIO_SAVE_FAILED", "failed to store audio")
	}

	result, err := s.registry.Transcribe(ctx, path, engine.TranscribeOptions{Temperature: 0})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeUnavailable, "TRANSCRIBE_FAILED", "transcription failed")
	}

	return &models.UploadResult{
		Filename:   name,
		Path:       path,
		Note:       fmt.Sprintf("Transcribed with Whisper (%s).", s.registry.ModelName()),
		Language:   result.Language,
		Transcript: strings.TrimSpace(result.Text),
		Segments:   trimSegments(result.Segments),
		SizeBytes:  len(blob),
	}, nil
}

// ResolveAudio locates a stored audio file by basename, preferring the
// playback store over the raw store
func (s *RecordingService) ResolveAudio(filename string) (string, error) {
	return s.audio.Resolve(filename)
}

// StartReaper sweeps abandoned session directories on every interval
// until ctx is cancelled. Sessions idle longer than ttl are removed.
func (s *RecordingService) StartReaper(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.sessions.SweepOlderThan(s.now().Add(-ttl)); len(removed) > 0 {
					s.logger.Info("reaped abandoned sessions", "count", len(removed), "session_ids", removed)
				}
			}
		}
	}()
}

func trimSegments(segments []models.Segment) []models.Segment {
	out := make([]models.Segment, len(segments))
	for i, seg := range segments {
		out[i] = models.Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)}
	}
	return out
}
