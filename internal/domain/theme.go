package domain

import (
	"fmt"
	"strings"
)

// Theme is the aesthetic direction applied when re-rendering a design.
type Theme string

const (
	ThemeOriginal Theme = "original"
	ThemeLight    Theme = "light"
	ThemeDark     Theme = "dark"
)

// Themes lists the supported themes in display order.
func Themes() []Theme {
	return []Theme{ThemeOriginal, ThemeLight, ThemeDark}
}

// ParseTheme converts user input into a Theme. Empty input means ThemeOriginal.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case "", ThemeOriginal:
		return ThemeOriginal, nil
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}
