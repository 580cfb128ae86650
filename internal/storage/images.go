package storage

import (
	"context"
	"fmt"

	"github.com/abduss/blogd/internal/asset"
	"github.com/abduss/blogd/internal/config"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Images bundles the image lifecycle with the optional mirror client backing it.
type Images struct {
	Lifecycle *asset.Lifecycle
	// Mirror is nil unless MINIO_MIRROR_ENABLED is set.
	Mirror *minio.Client
}

// OpenImages prepares the variant directories under the image root and, when configured,
// connects the MinIO mirror.
func OpenImages(ctx context.Context, cfg config.Config, log *zap.Logger) (Images, error) {
	store, err := asset.NewStore(cfg.Images.Root)
	if err != nil {
		return Images{}, fmt.Errorf("open image store: %w", err)
	}
	generator := asset.NewGenerator(store, cfg.Images.ResizedHeight, cfg.Images.ThumbnailSize)

	if !cfg.MinIO.MirrorEnabled {
		return Images{Lifecycle: asset.NewLifecycle(store, generator, nil, log)}, nil
	}

	client, err := NewMinIOClient(cfg.MinIO)
	if err != nil {
		return Images{}, err
	}
	if err := EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		return Images{}, err
	}

	mirror := asset.NewMinIOMirror(client, cfg.MinIO.Bucket, cfg.MinIO.PresignTTL)
	return Images{
		Lifecycle: asset.NewLifecycle(store, generator, mirror, log),
		Mirror:    client,
	}, nil
}
