package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"supportdesk/internal/aigen"
	"supportdesk/internal/observability"
)

// TextGenerator produces marketing copy for a product.
type TextGenerator interface {
	GenerateDescription(ctx context.Context, product, brand, color, features string) (string, error)
}

// ImageGenerator renders an image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (data []byte, contentType string, err error)
}

// AIHandler handles the product-exploration AI endpoints.
type AIHandler struct {
	text  TextGenerator
	image ImageGenerator
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(text TextGenerator, image ImageGenerator) *AIHandler {
	return &AIHandler{text: text, image: image}
}

type describeRequest struct {
	Product  string `json:"product"`
	Brand    string `json:"brand"`
	Color    string `json:"color"`
	Features string `json:"features"`
}

func (req *describeRequest) complete() bool {
	return req.Product != "" && req.Brand != "" && req.Color != "" && req.Features != ""
}

// Description handles POST /api/v1/ai/description.
func (h *AIHandler) Description(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	text, err := h.text.GenerateDescription(r.Context(), req.Product, req.Brand, req.Color, req.Features)
	if err != nil {
		writeUpstreamError(w, r, err, "description generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"description": text})
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

// Image handles POST /api/v1/ai/image. The response carries the render as
// a data URL so clients can drop it straight into an <img> tag.
func (h *AIHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	data, contentType, err := h.image.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		writeUpstreamError(w, r, err, "image generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"image": dataURL(data, contentType)})
}

// Concept handles POST /api/v1/ai/concept: generate a description, then
// feed it to the image model as the prompt. The image step depending on
// the text step is the point of the endpoint. If the image call fails the
// description is still returned — downstream failure never discards the
// copy that was already generated.
func (h *AIHandler) Concept(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	text, err := h.text.GenerateDescription(r.Context(), req.Product, req.Brand, req.Color, req.Features)
	if err != nil {
		writeUpstreamError(w, r, err, "description generation failed")
		return
	}

	data, contentType, err := h.image.GenerateImage(r.Context(), text)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("image generation failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{
			"description": text,
			"image_error": upstreamMessage(err, "image generation failed"),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"description": text,
		"image":       dataURL(data, contentType),
	})
}

func dataURL(data []byte, contentType string) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

func upstreamMessage(err error, fallback string) string {
	var upErr *aigen.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Message
	}
	return fallback
}

// writeUpstreamError surfaces inference failures verbatim as 502; anything
// else is an internal error.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	observability.LoggerFromContext(r.Context()).Error(fallback, "error", err)

	var upErr *aigen.UpstreamError
	if errors.As(err, &upErr) {
		writeError(w, http.StatusBadGateway, upErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}
