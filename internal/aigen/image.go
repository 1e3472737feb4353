package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultImageBaseURL is the hosted inference endpoint prefix; the
	// model name is appended to form the full URL.
	DefaultImageBaseURL = "https://router.huggingface.co/hf-inference/models"
	// DefaultImageModel is the diffusion model used for renders.
	DefaultImageModel = "stabilityai/stable-diffusion-xl-base-1.0"

	imageRequestTimeout = 120 * time.Second
	maxImageBytes       = 20 * 1024 * 1024 // 20 MB
)

// ImageClient generates product renders via the hosted inference API.
type ImageClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewImageClient creates an image generation client. Empty baseURL or
// model fall back to the defaults.
func NewImageClient(baseURL, apiKey, model string) *ImageClient {
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	if model == "" {
		model = DefaultImageModel
	}
	return &ImageClient{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/" + model,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: imageRequestTimeout,
		},
	}
}

// GenerateImage renders an image for the prompt. The response body is the
// raw image; its content type is returned alongside the bytes. One
// blocking call, no retry.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build image request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("image request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, "", &UpstreamError{Status: resp.StatusCode, Message: readBodyText(resp.Body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", &UpstreamError{Status: resp.StatusCode, Message: "empty image response"}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return data, contentType, nil
}
