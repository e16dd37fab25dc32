package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/timmy/socialkit/internal/domain"
)

// MaxSourceBytes bounds accepted uploads.
const MaxSourceBytes = 20 << 20

// ImageInfo is the header information of a source image.
type ImageInfo struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// InspectImage decodes only the image header to validate an upload.
// Supported formats: png, jpeg, gif, webp.
func InspectImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidImage, MaxSourceBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", domain.ErrInvalidImage, cfg.Width, cfg.Height)
	}
	return &ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// NewSourceImage validates data and wraps it with the detected MIME type.
func NewSourceImage(data []byte) (*domain.ImagePayload, *ImageInfo, error) {
	info, err := InspectImage(data)
	if err != nil {
		return nil, nil, err
	}
	return &domain.ImagePayload{MIMEType: domain.MIMEForFormat(info.Format), Data: data}, info, nil
}
