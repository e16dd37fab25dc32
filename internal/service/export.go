package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
	"github.com/timmy/socialkit/internal/storage"
)

// ExportedAsset describes one result written to object storage.
type ExportedAsset struct {
	ResultID   string `json:"result_id"`
	ImageKey   string `json:"image_key"`
	ImageURL   string `json:"image_url"`
	CaptionKey string `json:"caption_key"`
	CaptionURL string `json:"caption_url"`
}

// KitExporter writes rendered results and their copy text to object storage.
type KitExporter struct {
	store  storage.ObjectStorage
	prefix string
}

// NewKitExporter creates an exporter writing under prefix (e.g. "kits").
func NewKitExporter(store storage.ObjectStorage, prefix string) *KitExporter {
	return &KitExporter{store: store, prefix: strings.Trim(prefix, "/")}
}

func (e *KitExporter) key(sessionID, name string) string {
	return path.Join(e.prefix, sessionID, name)
}

// Export uploads the image of r as kit-<platformId>-<theme>.<ext> and the copy
// text as a sibling "-caption.txt" object.
func (e *KitExporter) Export(ctx context.Context, sessionID string, r *domain.GeneratedResult) (*ExportedAsset, error) {
	start := time.Now()
	img, err := r.Image()
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", r.ID, err)
	}

	name := domain.KitFilename(r.Platform.ID, r.Theme, img.Extension())
	imageKey := e.key(sessionID, name)
	if err := e.store.Upload(ctx, imageKey, bytes.NewReader(img.Data), int64(len(img.Data)), img.MIMEType); err != nil {
		return nil, fmt.Errorf("export %s: %w", r.ID, err)
	}

	caption := []byte(r.CopyText())
	captionKey := e.key(sessionID, strings.TrimSuffix(name, path.Ext(name))+"-caption.txt")
	if err := e.store.Upload(ctx, captionKey, bytes.NewReader(caption), int64(len(caption)), "text/plain; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("export %s caption: %w", r.ID, err)
	}

	logger.With(logger.Fields{logger.FieldSize: len(img.Data)}).WithDuration(start).
		Info(ctx, "Exported result %s to %s", r.ID, imageKey)

	return &ExportedAsset{
		ResultID:   r.ID,
		ImageKey:   imageKey,
		ImageURL:   e.store.GetURL(imageKey),
		CaptionKey: captionKey,
		CaptionURL: e.store.GetURL(captionKey),
	}, nil
}

// ExportAll exports every result, stopping at the first failure.
func (e *KitExporter) ExportAll(ctx context.Context, sessionID string, results []*domain.GeneratedResult) ([]*ExportedAsset, error) {
	assets := make([]*ExportedAsset, 0, len(results))
	for _, r := range results {
		a, err := e.Export(ctx, sessionID, r)
		if err != nil {
			return assets, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// WriteKit writes every result and its caption file into dir.
func WriteKit(ctx context.Context, dir string, results []*domain.GeneratedResult) ([]*ExportedAsset, error) {
	store, err := storage.NewLocalStorage(dir, "")
	if err != nil {
		return nil, err
	}
	return NewKitExporter(store, "").ExportAll(ctx, "", results)
}
