package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultStrategyModel = "gemini-3-pro-preview"
	DefaultRenderModel   = "gemini-2.5-flash-image"
)

// GeminiConfig configures both generation clients. They share the key and endpoint
// and differ only in model.
type GeminiConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	StrategyModel string        `mapstructure:"strategy_model"`
	RenderModel   string        `mapstructure:"render_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Validate checks the credential before any client is built.
func (c *GeminiConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingCredential
	}
	if c.StrategyModel == "" || c.RenderModel == "" {
		return fmt.Errorf("gemini: strategy_model and render_model are required")
	}
	return nil
}
