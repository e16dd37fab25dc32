package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/source"
)

var _ source.Source = (*Adapter)(nil)

// Adapter reads source images from the local filesystem.
type Adapter struct {
	baseDir string
}

// NewAdapter creates a file source. Relative refs resolve against baseDir.
func NewAdapter(baseDir string) *Adapter {
	return &Adapter{baseDir: baseDir}
}

func (a *Adapter) GetSourceID() string {
	return "local"
}

func (a *Adapter) GetDisplayName() string {
	return "Local File"
}

// Load reads the file at ref. The MIME type is taken from the extension.
func (a *Adapter) Load(ctx context.Context, ref string) (*domain.ImagePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := ref
	if !filepath.IsAbs(p) && a.baseDir != "" {
		p = filepath.Join(a.baseDir, p)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
	return &domain.ImagePayload{MIMEType: domain.MIMEForFormat(ext), Data: data}, nil
}
