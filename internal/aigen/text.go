package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTextBaseURL is the router's OpenAI-compatible endpoint.
	DefaultTextBaseURL = "https://router.huggingface.co/v1"
	// DefaultTextModel is the instruction-following model used for copy.
	DefaultTextModel = "Qwen/Qwen3-Coder-480B-A35B-Instruct"

	descriptionMaxTokens   = 60
	descriptionTemperature = 0.7

	textRequestTimeout = 60 * time.Second
)

// ErrEmptyCompletion means the model returned no choices.
var ErrEmptyCompletion = errors.New("model returned no completion")

// TextClient generates product descriptions via the chat completions API.
type TextClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewTextClient creates a text generation client. Empty baseURL or model
// fall back to the defaults.
func NewTextClient(baseURL, apiKey, model string) *TextClient {
	if baseURL == "" {
		baseURL = DefaultTextBaseURL
	}
	if model == "" {
		model = DefaultTextModel
	}
	return &TextClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: textRequestTimeout,
		},
	}
}

// GenerateDescription asks the chat model for a short catchy description
// of the given product. One blocking call, no retry.
func (c *TextClient) GenerateDescription(ctx context.Context, product, brand, color, features string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short 3 line, catchy description for a %s %s %s with features: %s.",
		color, brand, product, features,
	)

	body, err := json.Marshal(chatCompletionsRequest{
		Model:       c.model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   descriptionMaxTokens,
		Temperature: descriptionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Status: resp.StatusCode, Message: readBodyText(resp.Body)}
	}

	var result chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if result.Error != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Message: result.Error.Message}
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func readBodyText(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	return string(raw)
}

func closeBody(body io.Closer) {
	_ = body.Close()
}
