package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lunori/pkg/engine"
	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/services"
)

// APIHandlers contains the journal entry and config endpoint handlers
type APIHandlers struct {
	journal  *services.JournalService
	registry *engine.Registry
	logger   *slog.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(journal *services.JournalService, registry *engine.Registry, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		journal:  journal,
		registry: registry,
		logger:   logger,
	}
}

// HealthHandler is a simple liveness probe
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SaveEntryHandler persists a journal entry from a transcript and a stored
// audio reference
func (h *APIHandlers) SaveEntryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename   string             `json:"filename"`
		Transcript string             `json:"transcript"`
		Images     []models.ImageMeta `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_JSON", "invalid JSON body"))
		return
	}

	entry, path, err := h.journal.Save(r.Context(), req.Filename, req.Transcript, req.Images)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"id":   entry.ID,
		"path": path,
	})
}

// ListEntriesHandler returns the lightweight entry listing
func (h *APIHandlers) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.journal.List()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"items": items,
	})
}

// GetEntryHandler returns the full JSON document for a single entry
func (h *APIHandlers) GetEntryHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntryHandler deletes an entry plus its audio artifacts and reports
// the per-artifact outcome
func (h *APIHandlers) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.journal.Delete(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"deleted": deleted,
	})
}

// GetWhisperModelHandler returns the active transcription model name
func (h *APIHandlers) GetWhisperModelHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"name": h.registry.ModelName(),
	})
}

// SetWhisperModelHandler switches the active transcription model
func (h *APIHandlers) SetWhisperModelHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_JSON", "invalid JSON body"))
		return
	}

	if err := h.registry.SetModel(req.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"name": h.registry.ModelName(),
	})
}
