package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/socialkit/internal/domain"
)

// GeminiConfig holds connection settings shared by the strategy and rendering clients.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// geminiClient posts generateContent requests to the Generative Language API.
type geminiClient struct {
	client  *resty.Client
	baseURL string
	model   string
	service string
}

func newGeminiClient(cfg *GeminiConfig, service string) *geminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	client := resty.New()
	client.SetHeader("x-goog-api-key", cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	return &geminiClient{
		client:  client,
		baseURL: baseURL,
		model:   cfg.Model,
		service: service,
	}
}

// generateContent request/response structures.
type generateContentRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType   string                 `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]interface{} `json:"responseSchema,omitempty"`
	ResponseModalities []string               `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig           `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// userTurn packs the source image and instruction into a single user message.
func userTurn(img *domain.ImagePayload, prompt string) []geminiContent {
	mime := img.MIMEType
	if mime == "" {
		mime = domain.DefaultImageMIME
	}
	return []geminiContent{{
		Role: "user",
		Parts: []geminiPart{
			{InlineData: &geminiInlineData{MIMEType: mime, Data: img.Base64()}},
			{Text: prompt},
		},
	}}
}

// parts flattens every part of every candidate in response order.
func (r *generateContentResponse) parts() []geminiPart {
	var out []geminiPart
	for _, c := range r.Candidates {
		out = append(out, c.Content.Parts...)
	}
	return out
}

// text concatenates the text parts of the first candidate.
func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// generateContent sends req to the configured model. Any transport, HTTP or
// API-level failure comes back as a *domain.ServiceError.
func (c *geminiClient) generateContent(ctx context.Context, op string, req *generateContentRequest) (*generateContentResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var (
		out    generateContentResponse
		apiErr geminiErrorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post(endpoint)
	if err != nil {
		return nil, &domain.ServiceError{Service: c.service, Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		msg := strings.TrimSpace(string(resp.Body()))
		if apiErr.Error != nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if msg == "" {
			msg = resp.Status()
		}
		return nil, &domain.ServiceError{Service: c.service, Op: op, StatusCode: resp.StatusCode(), Err: errors.New(msg)}
	}

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, &domain.ServiceError{
			Service: c.service,
			Op:      op,
			Err:     fmt.Errorf("request blocked: %s", out.PromptFeedback.BlockReason),
		}
	}
	return &out, nil
}
