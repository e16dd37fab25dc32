package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/prompts"
)

// StrategyRequest is the input of the strategy phase for one platform.
type StrategyRequest struct {
	Image        *domain.ImagePayload
	PlatformName string
	PostType     string
	Brief        string
	Theme        domain.Theme
}

// Strategist produces caption, hashtags and creative reasoning for a platform.
type Strategist interface {
	Brainstorm(ctx context.Context, req StrategyRequest) (*domain.Strategy, error)
}

// GeminiStrategist implements Strategist with a structured-output Gemini call.
type GeminiStrategist struct {
	api *geminiClient
}

// NewGeminiStrategist creates a strategy client.
// Parameters:
//   - cfg: connection settings; cfg.Model selects the text model.
//
// Returns:
//   - *GeminiStrategist: ready-to-use client.
func NewGeminiStrategist(cfg *GeminiConfig) *GeminiStrategist {
	return &GeminiStrategist{api: newGeminiClient(cfg, "strategy")}
}

// Brainstorm asks the model for a copy plan. Service failures are returned as
// *domain.ServiceError; an answer that cannot be decoded is replaced by
// FallbackStrategy and is not an error.
func (s *GeminiStrategist) Brainstorm(ctx context.Context, req StrategyRequest) (*domain.Strategy, error) {
	if req.Image.Empty() {
		return nil, fmt.Errorf("brainstorm: %w", domain.ErrInvalidImage)
	}

	body := &generateContentRequest{
		Contents: userTurn(req.Image, prompts.StrategyPrompt(req.PlatformName, req.PostType, req.Theme, req.Brief)),
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   prompts.StrategyResponseSchema(),
		},
	}

	resp, err := s.api.generateContent(ctx, "brainstorm", body)
	if err != nil {
		return nil, err
	}

	text := resp.text()
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ServiceError{Service: "strategy", Op: "brainstorm", Err: domain.ErrEmptyResponse}
	}

	strategy, err := parseStrategy(text)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("platform", req.PlatformName).
			Warn("Strategy response unusable, using fallback")
		return FallbackStrategy(req.PlatformName), nil
	}
	return strategy, nil
}

type strategyPayload struct {
	CreativeReasoning *string  `json:"creativeReasoning"`
	Caption           *string  `json:"caption"`
	Hashtags          []string `json:"hashtags"`
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// parseStrategy decodes the model answer. Missing keys count as malformed.
func parseStrategy(text string) (*domain.Strategy, error) {
	text = strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var p strategyPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if p.CreativeReasoning == nil || p.Caption == nil || p.Hashtags == nil {
		return nil, fmt.Errorf("%w: missing required field", domain.ErrMalformedResponse)
	}

	return &domain.Strategy{
		CreativeReasoning: strings.TrimSpace(*p.CreativeReasoning),
		Caption:           strings.TrimSpace(*p.Caption),
		Hashtags:          normalizeHashtags(p.Hashtags),
	}, nil
}

func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || t == "#" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		out = append(out, t)
	}
	return out
}

var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// platformTag derives a hashtag from a display name: "X (Twitter)" -> "#xtwitter".
func platformTag(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
	if slug == "" {
		slug = "social"
	}
	return "#" + slug
}

// FallbackStrategy is the deterministic plan used when the model answer is malformed.
func FallbackStrategy(platformName string) *domain.Strategy {
	return &domain.Strategy{
		CreativeReasoning: fmt.Sprintf("Optimizing layout for %s to maximize visual impact.", platformName),
		Caption:           fmt.Sprintf("Freshly reimagined for your %s feed.", platformName),
		Hashtags:          []string{"#ai-art", "#socialmedia", platformTag(platformName)},
		Fallback:          true,
	}
}
