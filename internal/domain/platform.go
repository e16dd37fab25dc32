package domain

import "fmt"

// AspectRatio is the width:height ratio requested from the rendering model.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectVertical  AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// Valid reports whether r is one of the supported ratios.
func (r AspectRatio) Valid() bool {
	switch r {
	case AspectSquare, AspectPortrait, AspectLandscape, AspectVertical, AspectWide:
		return true
	}
	return false
}

// PlatformTarget describes one social media placement the kit can be rendered for.
type PlatformTarget struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PostType    string      `json:"type"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	Dimensions  string      `json:"dimensions"`
	Icon        string      `json:"icon"`
	Description string      `json:"description"`
}

var platformCatalog = []PlatformTarget{
	{
		ID: "ig-square", Name: "Instagram", PostType: "Square Post", AspectRatio: AspectSquare,
		Dimensions: "1080 x 1080 px", Icon: "fa-brands fa-instagram",
		Description: "The standard square format for the main feed.",
	},
	{
		ID: "ig-portrait", Name: "Instagram", PostType: "Portrait Post", AspectRatio: AspectPortrait,
		Dimensions: "1080 x 1350 px", Icon: "fa-solid fa-expand",
		Description: "Taller feed posts for better visibility on mobile.",
	},
	{
		ID: "ig-story", Name: "Instagram", PostType: "Story / Reel", AspectRatio: AspectVertical,
		Dimensions: "1080 x 1920 px", Icon: "fa-solid fa-mobile-screen",
		Description: "Vertical format for full-screen immersive content.",
	},
	{
		ID: "fb-cover", Name: "Facebook", PostType: "Page Cover", AspectRatio: AspectWide,
		Dimensions: "851 x 315 px", Icon: "fa-brands fa-facebook",
		Description: "Wide banner for your profile or page header.",
	},
	{
		ID: "fb-post", Name: "Facebook", PostType: "Feed Post", AspectRatio: AspectWide,
		Dimensions: "1200 x 630 px", Icon: "fa-solid fa-image",
		Description: "Standard landscape post for the Facebook feed.",
	},
	{
		ID: "tw-header", Name: "X (Twitter)", PostType: "Header Banner", AspectRatio: AspectWide,
		Dimensions: "1500 x 500 px", Icon: "fa-brands fa-x-twitter",
		Description: "The wide horizontal banner at the top of your profile.",
	},
	{
		ID: "tw-post", Name: "X (Twitter)", PostType: "In-Stream Post", AspectRatio: AspectWide,
		Dimensions: "1600 x 900 px", Icon: "fa-solid fa-bolt",
		Description: "Optimized post size for the X timeline.",
	},
	{
		ID: "yt-thumbnail", Name: "YouTube", PostType: "Thumbnail", AspectRatio: AspectWide,
		Dimensions: "1280 x 720 px", Icon: "fa-brands fa-youtube",
		Description: "Catchy visuals for your video clicks.",
	},
	{
		ID: "yt-banner", Name: "YouTube", PostType: "Channel Banner", AspectRatio: AspectWide,
		Dimensions: "2560 x 1440 px", Icon: "fa-solid fa-tv",
		Description: "High-res artwork for your channel header.",
	},
	{
		ID: "li-banner", Name: "LinkedIn", PostType: "Profile Banner", AspectRatio: AspectWide,
		Dimensions: "1584 x 396 px", Icon: "fa-brands fa-linkedin",
		Description: "Professional header for your personal profile.",
	},
	{
		ID: "tk-video", Name: "TikTok", PostType: "Native Video", AspectRatio: AspectVertical,
		Dimensions: "1080 x 1920 px", Icon: "fa-brands fa-tiktok",
		Description: "Full-screen vertical videos for FYP.",
	},
	{
		ID: "pin-standard", Name: "Pinterest", PostType: "Standard Pin", AspectRatio: AspectPortrait,
		Dimensions: "1000 x 1500 px", Icon: "fa-brands fa-pinterest",
		Description: "High-performing tall format for Pinterest.",
	},
}

// ListPlatforms returns the catalog in display order.
// The returned slice is a copy; callers may modify it freely.
func ListPlatforms() []PlatformTarget {
	out := make([]PlatformTarget, len(platformCatalog))
	copy(out, platformCatalog)
	return out
}

// PlatformIDs returns every catalog id in display order.
func PlatformIDs() []string {
	ids := make([]string, len(platformCatalog))
	for i, p := range platformCatalog {
		ids[i] = p.ID
	}
	return ids
}

// FindPlatform resolves a platform id against the catalog.
// Parameters:
//   - id: platform identifier, e.g. "ig-square".
// Returns:
//   - PlatformTarget: a copy of the catalog entry.
//   - error: wraps ErrPlatformNotFound when id is unknown.
func FindPlatform(id string) (PlatformTarget, error) {
	for _, p := range platformCatalog {
		if p.ID == id {
			return p, nil
		}
	}
	return PlatformTarget{}, fmt.Errorf("%w: %s", ErrPlatformNotFound, id)
}
