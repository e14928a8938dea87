// Package engine holds the pluggable model capabilities behind the journal:
// speech-to-text, emotion classification, and image captioning. The models
// themselves are external collaborators; this package only knows how to
// invoke them and how to serialize access to them.
package engine

import (
	"context"

	"lunori/pkg/models"
)

// TranscribeOptions configures decoding for one transcriber invocation
type TranscribeOptions struct {
	// Language pins the decode language; empty means auto-detect
	Language string
	// Temperature zero selects greedy decoding
	Temperature float64
}

// PreviewOptions returns the pinned low-latency settings used for live
// preview and finalization: language fixed, greedy decoding.
func PreviewOptions() TranscribeOptions {
	return TranscribeOptions{Language: "en", Temperature: 0}
}

// Transcriber converts an audio file into text with timestamped segments
type Transcriber interface {
	Transcribe(ctx context.Context, path string, opts TranscribeOptions) (*models.Transcription, error)
}

// EmotionClassifier returns per-label probabilities for a text
type EmotionClassifier interface {
	Classify(ctx context.Context, text string) ([]models.EmotionScore, error)
}

// Captioner produces a natural-language caption for image bytes
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// TranscriberFactory loads a transcriber instance for an allow-listed
// model name
type TranscriberFactory func(name string) (Transcriber, error)
