package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"lunori/pkg/models"
)

// WhisperCLI transcribes by shelling out to the whisper.cpp CLI with JSON
// output enabled. One instance is bound to one model file.
type WhisperCLI struct {
	binPath   string
	modelPath string
}

// NewWhisperCLI creates a transcriber for the given binary and model file.
// The model file must exist; a missing model is a load failure, not a
// per-request one.
func NewWhisperCLI(binPath, modelPath string) (*WhisperCLI, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("whisper model %q: %w", modelPath, err)
	}
	return &WhisperCLI{binPath: binPath, modelPath: modelPath}, nil
}

// WhisperModelPath resolves an allow-listed model name to its ggml file
// inside modelsDir.
func WhisperModelPath(modelsDir, name string) string {
	return filepath.Join(modelsDir, "ggml-"+name+".bin")
}

// whisperOutput mirrors the whisper.cpp -oj JSON document
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs the CLI against the audio file and parses its JSON output
func (w *WhisperCLI) Transcribe(ctx context.Context, path string, opts TranscribeOptions) (*models.Transcription, error) {
	outDir, err := os.MkdirTemp("", "whisper-out-")
	if err != nil {
		return nil, fmt.Errorf("whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	outPrefix := filepath.Join(outDir, "result")
	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", w.modelPath,
		"-f", path,
		"-l", lang,
		"--temperature", strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
		"-oj",
		"-of", outPrefix,
		"-np",
	}

	cmd := exec.CommandContext(ctx, w.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper-cli failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper output missing: %w", err)
	}

	return parseWhisperOutput(data)
}

func parseWhisperOutput(data []byte) (*models.Transcription, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("whisper output parse: %w", err)
	}

	result := &models.Transcription{
		Language: out.Result.Language,
		Segments: make([]models.Segment, 0, len(out.Transcription)),
	}
	if result.Language == "" {
		result.Language = "unknown"
	}

	var parts []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		result.Segments = append(result.Segments, models.Segment{
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
			Text:  text,
		})
		if text != "" {
			parts = append(parts, text)
		}
	}
	result.Text = strings.Join(parts, " ")

	return result, nil
}
