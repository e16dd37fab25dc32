package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMIME is assumed when a payload arrives without a declared type.
const DefaultImageMIME = "image/png"

// ImagePayload is an encoded image as exchanged with the generation services.
// The orchestrator never inspects pixels; it only carries bytes and their MIME type.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// Empty reports whether the payload carries no image data.
func (p *ImagePayload) Empty() bool {
	return p == nil || len(p.Data) == 0
}

// Base64 returns the standard base64 encoding of the image bytes.
func (p *ImagePayload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURL renders the payload as a data URL, e.g. "data:image/png;base64,....".
func (p *ImagePayload) DataURL() string {
	mime := p.MIMEType
	if mime == "" {
		mime = DefaultImageMIME
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, p.Base64())
}

// Extension maps the MIME type to a file extension without the dot.
func (p *ImagePayload) Extension() string {
	return ExtensionForMIME(p.MIMEType)
}

// Clone returns a deep copy of the payload.
func (p *ImagePayload) Clone() *ImagePayload {
	if p == nil {
		return nil
	}
	data := make([]byte, len(p.Data))
	copy(data, p.Data)
	return &ImagePayload{MIMEType: p.MIMEType, Data: data}
}

// ExtensionForMIME returns the file extension for an image MIME type, defaulting to "png".
func ExtensionForMIME(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// MIMEForFormat maps a decoder format name ("png", "jpeg", ...) to its MIME type.
func MIMEForFormat(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return DefaultImageMIME
	}
}

// ParseDataURL decodes "data:<mime>;base64,<payload>". Bare base64 is accepted
// and treated as DefaultImageMIME.
func ParseDataURL(s string) (*ImagePayload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty data url", ErrInvalidImage)
	}

	mime := DefaultImageMIME
	encoded := s
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("%w: data url has no payload", ErrInvalidImage)
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: data url is not base64 encoded", ErrInvalidImage)
		}
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
		encoded = body
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return &ImagePayload{MIMEType: mime, Data: data}, nil
}

// KitFilename is the download name of a rendered asset: kit-<platformId>-<theme>.<ext>.
func KitFilename(platformID string, theme Theme, ext string) string {
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("kit-%s-%s.%s", platformID, theme, ext)
}
