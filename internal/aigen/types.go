// Package aigen calls the two hosted inference endpoints: a chat model for
// marketing copy and a diffusion model for product renders. Both are single
// blocking calls with no retry and no streaming; chaining them is the
// caller's concern.
package aigen

import "fmt"

// ChatMessage represents a single message in a chat conversation.
// Content is a plain string only; no multimodal content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionsRequest is the request body for the router's
// OpenAI-compatible chat completions endpoint.
type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatCompletionsResponse is the subset of the completion response we
// read: the first choice's message, or the error the router reports
// in-band.
type chatCompletionsResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *upstreamErrorBody `json:"error,omitempty"`
}

type upstreamErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// UpstreamError reports a failure from an inference endpoint. The upstream
// status and message are surfaced verbatim; there is no fallback.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inference request failed (status %d): %s", e.Status, e.Message)
	}
	return "inference request failed: " + e.Message
}
