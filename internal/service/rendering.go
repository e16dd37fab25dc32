package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/prompts"
)

// RenderRequest is the input of the rendering phase for one platform.
type RenderRequest struct {
	Image             *domain.ImagePayload
	PlatformName      string
	PostType          string
	AspectRatio       domain.AspectRatio
	CreativeReasoning string
	Theme             domain.Theme
	Brief             string
}

// Renderer re-lays out the source image for a platform.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (*domain.ImagePayload, error)
}

// GeminiRenderer implements Renderer with an image-output Gemini model.
type GeminiRenderer struct {
	api *geminiClient
}

// NewGeminiRenderer creates a rendering client; cfg.Model selects the image model.
func NewGeminiRenderer(cfg *GeminiConfig) *GeminiRenderer {
	return &GeminiRenderer{api: newGeminiClient(cfg, "rendering")}
}

// Render returns the first inline image of the answer. A response without
// image data is a *domain.ServiceError wrapping domain.ErrNoImageInResponse.
func (r *GeminiRenderer) Render(ctx context.Context, req RenderRequest) (*domain.ImagePayload, error) {
	if req.Image.Empty() {
		return nil, fmt.Errorf("render: %w", domain.ErrInvalidImage)
	}

	prompt := prompts.RenderPrompt(req.PlatformName, req.PostType, req.AspectRatio, req.CreativeReasoning, req.Theme, req.Brief)
	body := &generateContentRequest{
		Contents: userTurn(req.Image, prompt),
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &imageConfig{AspectRatio: string(req.AspectRatio)},
		},
	}

	resp, err := r.api.generateContent(ctx, "render", body)
	if err != nil {
		return nil, err
	}

	parts := resp.parts()
	if len(parts) == 0 {
		return nil, &domain.ServiceError{Service: "rendering", Op: "render", Err: domain.ErrEmptyResponse}
	}

	for _, p := range parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, &domain.ServiceError{
				Service: "rendering",
				Op:      "render",
				Err:     fmt.Errorf("%w: bad image encoding: %v", domain.ErrMalformedResponse, err),
			}
		}
		mime := p.InlineData.MIMEType
		if mime == "" {
			mime = domain.DefaultImageMIME
		}
		return &domain.ImagePayload{MIMEType: mime, Data: data}, nil
	}

	return nil, &domain.ServiceError{Service: "rendering", Op: "render", Err: domain.ErrNoImageInResponse}
}
