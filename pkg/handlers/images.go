package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/services"
)

// ImageHandlers contains the image upload and retrieval endpoints
type ImageHandlers struct {
	images *services.ImageService
	logger *slog.Logger
}

// NewImageHandlers creates a new image handlers instance
func NewImageHandlers(images *services.ImageService, logger *slog.Logger) *ImageHandlers {
	return &ImageHandlers{
		images: images,
		logger: logger,
	}
}

// UploadImageHandler stores one image and returns its caption and tags
func (h *ImageHandlers) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, h.logger, errors.InvalidArgument("INVALID_FORM", "invalid multipart form"))
		return
	}

	filename, blob, err := readUploadedFile(r, "file")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.images.Upload(r.Context(), filename, blob)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*models.ImageUploadResult
	}{true, result})
}

// ServeImageHandler returns a previously stored image
func (h *ImageHandlers) ServeImageHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	path, err := h.images.Resolve(name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.ServeFile(w, r, path)
}
