package storage

import (
	"context"
	"strings"
)

// NewStorage creates an ObjectStorage from cfg. Empty Type is detected from the endpoint.
// localDir is only used for StorageTypeLocal.
func NewStorage(ctx context.Context, cfg *S3Config, localDir string) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}
	if cfg.Type == StorageTypeLocal {
		return NewLocalStorage(localDir, cfg.PublicURL)
	}
	return NewS3Storage(ctx, cfg)
}

func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case endpoint == "":
		return StorageTypeLocal
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
