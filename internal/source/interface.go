package source

import (
	"context"

	"github.com/timmy/socialkit/internal/domain"
)

// Source loads a source image for a kit session.
type Source interface {
	// GetSourceID returns the stable identifier of this source, e.g. "picsum".
	GetSourceID() string

	// GetDisplayName returns a human-readable name.
	GetDisplayName() string

	// Load fetches the image identified by ref.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - ref: source-specific reference (template seed, file path).
	// Returns:
	//   - *domain.ImagePayload: raw bytes and their MIME type; callers validate them.
	//   - err: non-nil if the image cannot be fetched.
	Load(ctx context.Context, ref string) (*domain.ImagePayload, error)
}
