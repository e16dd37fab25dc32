package domain

import (
	"errors"
	"testing"
)

func TestPlatformCatalog(t *testing.T) {
	platforms := ListPlatforms()
	if len(platforms) != 12 {
		t.Fatalf("expected 12 platforms, got %d", len(platforms))
	}

	seen := make(map[string]bool)
	for _, p := range platforms {
		if seen[p.ID] {
			t.Errorf("duplicate platform id %q", p.ID)
		}
		seen[p.ID] = true
		if !p.AspectRatio.Valid() {
			t.Errorf("platform %s has invalid aspect ratio %q", p.ID, p.AspectRatio)
		}
	}

	if platforms[0].ID != "ig-square" || platforms[11].ID != "pin-standard" {
		t.Errorf("unexpected catalog order: first=%s last=%s", platforms[0].ID, platforms[11].ID)
	}
}

func TestListPlatformsReturnsCopy(t *testing.T) {
	platforms := ListPlatforms()
	platforms[0].Name = "changed"

	p, err := FindPlatform("ig-square")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Instagram" {
		t.Errorf("catalog was mutated through ListPlatforms: %q", p.Name)
	}
}

func TestFindPlatform(t *testing.T) {
	tests := []struct {
		id        string
		wantRatio AspectRatio
		wantName  string
		wantErr   bool
	}{
		{id: "ig-story", wantRatio: AspectVertical, wantName: "Instagram"},
		{id: "tw-header", wantRatio: AspectWide, wantName: "X (Twitter)"},
		{id: "pin-standard", wantRatio: AspectPortrait, wantName: "Pinterest"},
		{id: "myspace-top8", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			p, err := FindPlatform(tc.id)
			if tc.wantErr {
				if !errors.Is(err, ErrPlatformNotFound) {
					t.Fatalf("expected ErrPlatformNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.AspectRatio != tc.wantRatio || p.Name != tc.wantName {
				t.Errorf("got %s %s, want %s %s", p.Name, p.AspectRatio, tc.wantName, tc.wantRatio)
			}
		})
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{in: "", want: ThemeOriginal},
		{in: "original", want: ThemeOriginal},
		{in: " Dark ", want: ThemeDark},
		{in: "light", want: ThemeLight},
		{in: "sepia", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTheme(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTheme) {
					t.Fatalf("expected ErrInvalidTheme, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseTheme(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestParseDataURL(t *testing.T) {
	img := &ImagePayload{MIMEType: "image/jpeg", Data: []byte("jpeg-bytes")}

	parsed, err := ParseDataURL(img.DataURL())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.MIMEType != "image/jpeg" || string(parsed.Data) != "jpeg-bytes" {
		t.Errorf("unexpected payload: %+v", parsed)
	}

	bare, err := ParseDataURL(img.Base64())
	if err != nil {
		t.Fatalf("unexpected error for bare base64: %v", err)
	}
	if bare.MIMEType != DefaultImageMIME {
		t.Errorf("bare base64 should default to %s, got %s", DefaultImageMIME, bare.MIMEType)
	}

	for _, bad := range []string{"", "data:image/png;base64", "data:image/png,abc", "data:image/png;base64,!!!"} {
		if _, err := ParseDataURL(bad); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("ParseDataURL(%q) expected ErrInvalidImage, got %v", bad, err)
		}
	}
}

func TestResultCopyTextAndFilename(t *testing.T) {
	img := &ImagePayload{MIMEType: "image/png", Data: []byte{1, 2, 3}}
	r := &GeneratedResult{
		Platform: PlatformTarget{ID: "fb-cover"},
		ImageURL: img.DataURL(),
		Caption:  "Big launch today",
		Hashtags: []string{"#launch", "#sale"},
		Theme:    ThemeDark,
	}

	if got, want := r.CopyText(), "Big launch today\n\n#launch #sale"; got != want {
		t.Errorf("CopyText() = %q, want %q", got, want)
	}
	if got, want := r.Filename(), "kit-fb-cover-dark.png"; got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}

	c := r.Clone()
	c.Hashtags[0] = "#changed"
	if r.Hashtags[0] != "#launch" {
		t.Error("Clone shares the hashtag slice with the original")
	}
}

func TestBatchProgress(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{1, 8, 13},
		{0, 0, 0},
	}
	for _, tc := range tests {
		if got := BatchProgress(tc.done, tc.total); got != tc.want {
			t.Errorf("BatchProgress(%d, %d) = %d, want %d", tc.done, tc.total, got, tc.want)
		}
	}
}

func TestGenerationStatusPhase(t *testing.T) {
	if p := (GenerationStatus{}).Phase(); p != PhaseIdle {
		t.Errorf("zero status phase = %s", p)
	}
	if p := (GenerationStatus{Loading: true}).Phase(); p != PhaseRunning {
		t.Errorf("loading status phase = %s", p)
	}
	if p := (GenerationStatus{Error: "boom"}).Phase(); p != PhaseErrored {
		t.Errorf("error status phase = %s", p)
	}
}

func TestServiceErrorUnwrap(t *testing.T) {
	err := &ServiceError{Service: "rendering", Op: "render", Err: ErrNoImageInResponse}
	if !errors.Is(err, ErrNoImageInResponse) {
		t.Error("ServiceError should unwrap to its cause")
	}
	if !IsServiceError(err) {
		t.Error("IsServiceError should detect *ServiceError")
	}
}
