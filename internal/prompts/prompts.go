package prompts

import (
	"fmt"
	"strings"

	"github.com/timmy/socialkit/internal/domain"
)

// ============================================================================
// Defaults
// ============================================================================

// DefaultStrategyBrief is used when the user leaves the brief empty.
const DefaultStrategyBrief = "Optimize for high engagement"

// DefaultRenderBrief is the rendering counterpart of DefaultStrategyBrief.
const DefaultRenderBrief = "Apply world-class graphic design principles."

// ============================================================================
// Theme instructions
// ============================================================================

const (
	originalInstruction = "STRICTLY maintain the original color palette, lighting, and brand identity."
	lightInstruction    = "Transform the design into a premium light mode aesthetic. Use high-key lighting, clean whitespace, and soft shadows."
	darkInstruction     = "Transform the design into a premium dark mode aesthetic. Use deep shadows, sophisticated contrast, and elegant dark backgrounds."
)

// ThemeInstruction maps a theme to the rendering guidance sentence.
// Unknown themes fall back to the original-palette instruction.
func ThemeInstruction(theme domain.Theme) string {
	switch theme {
	case domain.ThemeLight:
		return lightInstruction
	case domain.ThemeDark:
		return darkInstruction
	default:
		return originalInstruction
	}
}

// ============================================================================
// Strategy prompt (image + text -> JSON copy plan)
// ============================================================================

// StrategyPrompt builds the instruction sent with the source image to the strategy model.
func StrategyPrompt(platformName, postType string, theme domain.Theme, brief string) string {
	if strings.TrimSpace(brief) == "" {
		brief = DefaultStrategyBrief
	}
	if theme == "" {
		theme = domain.ThemeOriginal
	}

	return fmt.Sprintf(`Analyze this image and plan a native-feeling version for %s (%s) with a %s aesthetic.
User Request: "%s"

Return a JSON object with exactly these keys:
1. "creativeReasoning": how the layout should adapt to this placement (under 120 characters).
2. "caption": an engaging caption written for %s.
3. "hashtags": an array of 5 relevant hashtags, each starting with "#".`,
		platformName, postType, theme, brief, platformName)
}

// StrategyResponseSchema is the structured-output schema for the strategy call.
func StrategyResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"creativeReasoning": map[string]interface{}{"type": "STRING"},
			"caption":           map[string]interface{}{"type": "STRING"},
			"hashtags": map[string]interface{}{
				"type":  "ARRAY",
				"items": map[string]interface{}{"type": "STRING"},
			},
		},
		"required": []string{"creativeReasoning", "caption", "hashtags"},
	}
}

// ============================================================================
// Rendering prompt (image + text -> image)
// ============================================================================

// RenderPrompt builds the instruction sent with the source image to the rendering model.
func RenderPrompt(platformName, postType string, ratio domain.AspectRatio, reasoning string, theme domain.Theme, brief string) string {
	if strings.TrimSpace(brief) == "" {
		brief = DefaultRenderBrief
	}

	return fmt.Sprintf(`TASK: Re-render and RE-LAYOUT this design as a native %s %s with a %s aspect ratio.

CREATIVE DIRECTION: %s

USER BRIEF: %s

THEME: %s

RULES:
1. Recompose the layout for the %s frame; do not simply crop or stretch the original.
2. Keep every logo, product and key text element legible and intact.
3. Preserve the core message and brand identity of the source design.
4. Output a single finished image with no borders, mockups or device frames.`,
		platformName, postType, ratio, reasoning, brief, ThemeInstruction(theme), ratio)
}
