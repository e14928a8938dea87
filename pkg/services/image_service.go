package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"lunori/pkg/errors"
	"lunori/pkg/models"
	"lunori/pkg/storage"
	"lunori/pkg/utils"
)

// maxTags caps how many keywords one caption can produce
const maxTags = 12

var tagSplitter = regexp.MustCompile(`[^a-z0-9]+`)

// tagStopwords are filler words that make useless tags
var tagStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "on": true,
	"in": true, "and": true, "with": true, "to": true, "at": true,
	"for": true, "from": true, "is": true, "are": true, "this": true,
	"that": true, "it": true, "its": true, "by": true, "near": true,
}

// Captioner is the single model capability the image pipeline needs
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// ImageService handles the stateless upload pipeline: validate, store,
// caption, tag.
type ImageService struct {
	images    *storage.ImageStore
	captioner Captioner
	logger    *slog.Logger
	now       func() time.Time
}

// NewImageService creates the image service
func NewImageService(images *storage.ImageStore, captioner Captioner, logger *slog.Logger) *ImageService {
	return &ImageService{
		images:    images,
		captioner: captioner,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload stores one image under a timestamp-derived name and enriches it
// with a caption and tags. Captioning is best-effort: when the model is
// unavailable or fails, the image is stored with an empty caption.
func (s *ImageService) Upload(ctx context.Context, filename string, blob []byte) (*models.ImageUploadResult, error) {
	ext := storage.NormalizeImageExtension(filename)
	if !storage.IsAllowedImageExtension(ext) {
		return nil, errors.InvalidArgument("UNSUPPORTED_IMAGE", "please upload .jpg, .jpeg, .png, or .webp")
	}
	if len(blob) == 0 {
		return nil, errors.InvalidArgument("EMPTY_IMAGE", "empty image")
	}

	name := utils.UniqueTimestampID(s.now(), s.images.HasStem) + ext
	path, err := s.images.Save(name, blob)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "IMAGE_SAVE_FAILED", "failed to store image")
	}

	caption := ""
	if got, err := s.captioner.Caption(ctx, blob); err != nil {
		s.logger.Warn("image captioning failed", "filename", name, "error", err)
	} else {
		caption = strings.TrimSpace(got)
	}

	return &models.ImageUploadResult{
		Filename: name,
		Path:     path,
		URL:      "/images/" + name,
		Caption:  caption,
		Tags:     TagsFromCaption(caption),
	}, nil
}

// Resolve locates a stored image by basename
func (s *ImageService) Resolve(filename string) (string, error) {
	return s.images.Resolve(filename)
}

// TagsFromCaption extracts simple lowercase keywords from a caption:
// tokens split on non-alphanumeric boundaries, stopwords and short tokens
// dropped, deduplicated in first-seen order, capped at maxTags.
func TagsFromCaption(caption string) []string {
	text := strings.ToLower(strings.TrimSpace(caption))
	if text == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tags []string
	for _, tok := range tagSplitter.Split(text, -1) {
		if tok == "" || len(tok) < 3 || tagStopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tags = append(tags, tok)
		if len(tags) == maxTags {
			break
		}
	}

	return tags
}
