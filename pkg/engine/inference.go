package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lunori/pkg/models"
)

// The emotion and caption models are served by a small local inference
// sidecar (transformers behind HTTP). Both adapters point at its base URL.

// HTTPClassifier calls the sidecar's text-classification endpoint
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier creates a classifier against the local inference server
func NewHTTPClassifier(baseURL string) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Classify posts the text and returns the full label distribution
func (c *HTTPClassifier) Classify(ctx context.Context, text string) ([]models.EmotionScore, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emotion model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emotion model returned status %d", resp.StatusCode)
	}

	var scores []models.EmotionScore
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, fmt.Errorf("emotion model response: %w", err)
	}

	return scores, nil
}

// HTTPCaptioner calls the sidecar's image-to-text endpoint
type HTTPCaptioner struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCaptioner creates a captioner against the local inference server
func NewHTTPCaptioner(baseURL string) *HTTPCaptioner {
	return &HTTPCaptioner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Caption posts raw image bytes and returns the generated caption
func (c *HTTPCaptioner) Caption(ctx context.Context, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/caption", bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("caption model returned status %d", resp.StatusCode)
	}

	var out struct {
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("caption model response: %w", err)
	}

	return out.Caption, nil
}
