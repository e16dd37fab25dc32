package domain

import "strings"

// Strategy is the copy and creative direction produced for one platform.
type Strategy struct {
	CreativeReasoning string   `json:"creative_reasoning"`
	Caption           string   `json:"caption"`
	Hashtags          []string `json:"hashtags"`
	// Fallback is set when the model answer could not be used and the
	// deterministic default was substituted.
	Fallback bool `json:"fallback"`
}

// GeneratedResult is one rendered asset plus its copy.
type GeneratedResult struct {
	ID                string         `json:"id"`
	Platform          PlatformTarget `json:"platform"`
	ImageURL          string         `json:"image_url"`
	Caption           string         `json:"caption"`
	Hashtags          []string       `json:"hashtags"`
	CreativeReasoning string         `json:"creative_reasoning"`
	Theme             Theme          `json:"theme"`
	Timestamp         int64          `json:"timestamp"`
	IsRegenerating    bool           `json:"is_regenerating"`
}

// Clone returns a copy that shares no mutable state with r.
func (r *GeneratedResult) Clone() *GeneratedResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Hashtags = append([]string(nil), r.Hashtags...)
	return &c
}

// CopyText is the caption followed by a blank line and the space-joined hashtags.
func (r *GeneratedResult) CopyText() string {
	return r.Caption + "\n\n" + strings.Join(r.Hashtags, " ")
}

// Image decodes the stored data URL.
func (r *GeneratedResult) Image() (*ImagePayload, error) {
	return ParseDataURL(r.ImageURL)
}

// Filename returns the download name for the rendered image.
func (r *GeneratedResult) Filename() string {
	ext := "png"
	if img, err := r.Image(); err == nil {
		ext = img.Extension()
	}
	return KitFilename(r.Platform.ID, r.Theme, ext)
}
