package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/services"
)

// maxUploadMemory bounds the in-memory part of multipart parsing
const maxUploadMemory = 32 << 20

// TranscribeHandlers contains the live recording and upload endpoints
type TranscribeHandlers struct {
	recording *services.RecordingService
	logger    *slog.Logger
}

// NewTranscribeHandlers creates a new transcribe handlers instance
func NewTranscribeHandlers(recording *services.RecordingService, logger *slog.Logger) *TranscribeHandlers {
	return &TranscribeHandlers{
		recording: recording,
		logger:    logger,
	}
}

// ChunkHandler ingests one live chunk and returns the preview transcript
func (h *TranscribeHandlers) ChunkHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_FORM", "invalid multipart form"))
		return
	}

	sessionID := r.FormValue("session_id")
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_INDEX", "index must be an integer"))
		return
	}

	filename, blob, err := readUploadedFile(r, "file")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	preview, err := h.recording.IngestChunk(r.Context(), sessionID, index, filename, blob)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*models.ChunkPreview
	}{true, preview})
}

// FinalizeHandler ends a live session and returns the final artifacts
func (h *TranscribeHandlers) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_JSON", "invalid JSON body"))
		return
	}

	result, err := h.recording.Finalize(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*models.FinalizeResult
	}{true, result})
}

// UploadHandler transcribes a one-shot audio file upload
func (h *TranscribeHandlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_FORM", "invalid multipart form"))
		return
	}

	filename, blob, err := readUploadedFile(r, "file")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.recording.TranscribeUpload(r.Context(), filename, blob)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*models.UploadResult
	}{true, result})
}

// readUploadedFile pulls one file out of a parsed multipart form
func readUploadedFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, errors.InvalidArgument("MISSING_FILE", "missing %q field in multipart form", field)
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrTypeApp, "UPLOAD_READ_FAILED", "failed to read upload")
	}

	return header.Filename, blob, nil
}

// ServeAudioHandler returns a stored audio file, checking the playback
// store before the raw store
func (h *TranscribeHandlers) ServeAudioHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	path, err := h.recording.ResolveAudio(name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.ServeFile(w, r, path)
}
