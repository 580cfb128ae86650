package asset

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
)

// Mirror copies variant files to secondary storage. Lifecycle treats it as best effort.
type Mirror interface {
	Put(ctx context.Context, key, path string) error
	Remove(ctx context.Context, key string) error
}

// Presigner is implemented by mirrors able to hand out time-limited download links.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, time.Duration, error)
}

// DefaultPresignTTL bounds presigned links when no TTL is configured.
const DefaultPresignTTL = 15 * time.Minute

// MirrorKey is the object key of a variant in the mirror.
func MirrorKey(v Variant, name string) string {
	return v.dir() + "/" + name
}

type objectClient interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinIOMirror adapts minio.Client to the Mirror interface.
type MinIOMirror struct {
	client     objectClient
	bucket     string
	presignTTL time.Duration
}

// NewMinIOMirror constructs an adapter writing into bucket. A non-positive presignTTL falls
// back to DefaultPresignTTL.
func NewMinIOMirror(client objectClient, bucket string, presignTTL time.Duration) *MinIOMirror {
	if presignTTL <= 0 {
		presignTTL = DefaultPresignTTL
	}
	return &MinIOMirror{client: client, bucket: bucket, presignTTL: presignTTL}
}

func (m *MinIOMirror) Put(ctx context.Context, key, path string) error {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := m.client.FPutObject(ctx, m.bucket, key, path, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("mirror put %s: %w", key, err)
	}
	return nil
}

func (m *MinIOMirror) Remove(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("mirror remove %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a download link for key valid for the configured TTL.
func (m *MinIOMirror) PresignGet(ctx context.Context, key string) (string, time.Duration, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.presignTTL, url.Values{})
	if err != nil {
		return "", 0, fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), m.presignTTL, nil
}
