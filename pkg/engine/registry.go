package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"lunori/pkg/config"
	"lunori/pkg/errors"
	"lunori/pkg/models"
)

// Registry owns the active model instances. All transcription shares one
// mutex with model swapping: the underlying engine is not assumed safe for
// concurrent inference or reload. The classifier and captioner are
// unrelated resources and each serialize on their own lock, so captioning
// never waits on a running transcription.
type Registry struct {
	mu          sync.Mutex
	transcriber Transcriber
	modelName   string
	factory     TranscriberFactory
	cfgStore    *config.Store

	classifyMu sync.Mutex
	classifier EmotionClassifier

	captionMu sync.Mutex
	captioner Captioner

	logger *slog.Logger
}

// NewRegistry loads the persisted model preference and the initial
// transcriber instance. A transcriber load failure is fatal; a nil
// captioner or classifier is not, callers degrade per capability.
func NewRegistry(factory TranscriberFactory, cfgStore *config.Store, classifier EmotionClassifier, captioner Captioner, logger *slog.Logger) (*Registry, error) {
	cfg := cfgStore.Load()

	transcriber, err := factory(cfg.WhisperModel)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeUnavailable, "MODEL_LOAD_FAILED",
			"failed to load transcription model "+cfg.WhisperModel)
	}

	return &Registry{
		transcriber: transcriber,
		modelName:   cfg.WhisperModel,
		factory:     factory,
		cfgStore:    cfgStore,
		classifier:  classifier,
		captioner:   captioner,
		logger:      logger,
	}, nil
}

// Transcribe runs the active model against an audio file. Concurrent calls
// queue behind the model lock.
func (r *Registry) Transcribe(ctx context.Context, path string, opts TranscribeOptions) (*models.Transcription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcriber.Transcribe(ctx, path, opts)
}

// ModelName returns the active transcription model name
func (r *Registry) ModelName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modelName
}

// SetModel validates the name, reloads the transcriber under the model
// lock, and persists the new preference. Concurrent transcriptions block
// until the reload completes.
func (r *Registry) SetModel(name string) error {
	if !config.IsAllowedWhisperModel(name) {
		return errors.InvalidArgument("MODEL_NOT_ALLOWED",
			"unsupported model %q, allowed: %s", name, strings.Join(config.AllowedWhisperModels(), ", "))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if name == r.modelName {
		return nil
	}

	transcriber, err := r.factory(name)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeUnavailable, "MODEL_LOAD_FAILED",
			"failed to load transcription model "+name)
	}

	r.transcriber = transcriber
	r.modelName = name

	cfg := r.cfgStore.Load()
	cfg.WhisperModel = name
	if err := r.cfgStore.Save(cfg); err != nil {
		// The swap itself succeeded; a lost preference only costs the
		// default model on next start.
		r.logger.Warn("failed to persist model preference", "model", name, "error", err)
	}

	r.logger.Info("transcription model switched", "model", name)
	return nil
}

// ClassifyEmotion returns the label distribution for a text
func (r *Registry) ClassifyEmotion(ctx context.Context, text string) ([]models.EmotionScore, error) {
	if r.classifier == nil {
		return nil, errors.New(errors.ErrTypeUnavailable, "CLASSIFIER_UNAVAILABLE", "emotion model not loaded")
	}
	r.classifyMu.Lock()
	defer r.classifyMu.Unlock()
	return r.classifier.Classify(ctx, text)
}

// Caption returns a caption for image bytes
func (r *Registry) Caption(ctx context.Context, image []byte) (string, error) {
	if r.captioner == nil {
		return "", errors.New(errors.ErrTypeUnavailable, "CAPTIONER_UNAVAILABLE", "caption model not loaded")
	}
	r.captionMu.Lock()
	defer r.captionMu.Unlock()
	return r.captioner.Caption(ctx, image)
}
