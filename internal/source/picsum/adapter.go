package picsum

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/source"
)

// Config holds the template gallery endpoint settings.
type Config struct {
	BaseURL string
	Width   int
	Height  int
	Timeout time.Duration
}

var _ source.Source = (*Adapter)(nil)

// Adapter fetches seeded stock images used as starter templates.
type Adapter struct {
	client  *resty.Client
	baseURL string
	width   int
	height  int
}

// NewAdapter creates a template source.
func NewAdapter(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://picsum.photos"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1200
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Adapter{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		width:   cfg.Width,
		height:  cfg.Height,
	}
}

func (a *Adapter) GetSourceID() string {
	return "picsum"
}

func (a *Adapter) GetDisplayName() string {
	return "Template Gallery"
}

// ImageURL returns the gallery URL for seed.
func (a *Adapter) ImageURL(seed string) string {
	return fmt.Sprintf("%s/seed/%s/%d/%d", a.baseURL, url.PathEscape(seed), a.width, a.height)
}

// Load downloads the template image for seed.
func (a *Adapter) Load(ctx context.Context, seed string) (*domain.ImagePayload, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("template seed is required")
	}

	start := time.Now()
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		Get(a.ImageURL(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template %s: %w", seed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("template %s: HTTP %d", seed, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("template %s: empty body", seed)
	}

	mimeType := domain.DefaultImageMIME
	if ct := resp.Header().Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && strings.HasPrefix(mt, "image/") {
			mimeType = mt
		}
	}

	logger.With(logger.Fields{logger.FieldSize: len(body)}).WithDuration(start).
		Debug(ctx, "Fetched template %s", seed)
	return &domain.ImagePayload{MIMEType: mimeType, Data: body}, nil
}
