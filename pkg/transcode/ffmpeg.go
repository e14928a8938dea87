// Package transcode wraps the external ffmpeg binary for audio container
// conversion.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Transcoder converts an audio container into a playback-ready format
type Transcoder interface {
	ToWAV(ctx context.Context, src, dst string) error
}

// FFmpeg shells out to ffmpeg. A non-zero exit is a conversion failure,
// not a process error; callers fall back to the raw container.
type FFmpeg struct {
	binPath string
}

// NewFFmpeg creates a transcoder using the given ffmpeg binary
func NewFFmpeg(binPath string) *FFmpeg {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpeg{binPath: binPath}
}

// ToWAV converts src into a 16 kHz mono WAV at dst
func (f *FFmpeg) ToWAV(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.binPath, f.wavArgs(src, dst)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// wavArgs returns the fixed argument shape: input, force mono, force
// 16 kHz, output.
func (f *FFmpeg) wavArgs(src, dst string) []string {
	return []string{"-y", "-i", src, "-ac", "1", "-ar", "16000", dst}
}
