package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

const (
	DefaultResizedHeight = 432
	DefaultThumbnailSize = 200
)

// VariantResult is the outcome of producing one derived variant.
type VariantResult struct {
	Variant Variant
	Path    string
	Err     error
}

// GeneratedVariants holds the results for both derived variants.
type GeneratedVariants struct {
	Resized   VariantResult
	Thumbnail VariantResult
}

// Results returns the derived results in a stable order.
func (g GeneratedVariants) Results() []VariantResult {
	return []VariantResult{g.Resized, g.Thumbnail}
}

// Err joins the per-variant failures, or returns nil.
func (g GeneratedVariants) Err() error {
	return errors.Join(g.Resized.Err, g.Thumbnail.Err)
}

// Generator renders the resized and thumbnail variants from a stored original.
type Generator struct {
	store         *Store
	resizedHeight int
	thumbnailSize int
}

// NewGenerator creates a Generator writing into store. Non-positive sizes fall back to defaults.
func NewGenerator(store *Store, resizedHeight, thumbnailSize int) *Generator {
	if resizedHeight <= 0 {
		resizedHeight = DefaultResizedHeight
	}
	if thumbnailSize <= 0 {
		thumbnailSize = DefaultThumbnailSize
	}
	return &Generator{store: store, resizedHeight: resizedHeight, thumbnailSize: thumbnailSize}
}

// Generate decodes the original and writes both derived variants. A write failure on one
// variant does not stop the other from being attempted. The original is never modified.
func (g *Generator) Generate(ctx context.Context, originalPath, assetName string) (GeneratedVariants, error) {
	out := GeneratedVariants{
		Resized:   VariantResult{Variant: VariantResized},
		Thumbnail: VariantResult{Variant: VariantThumbnail},
	}
	fail := func(err error) (GeneratedVariants, error) {
		out.Resized.Err = err
		out.Thumbnail.Err = err
		return out, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	resizedPath, err := g.store.Resolve(VariantResized, assetName)
	if err != nil {
		return fail(err)
	}
	thumbnailPath, err := g.store.Resolve(VariantThumbnail, assetName)
	if err != nil {
		return fail(err)
	}
	out.Resized.Path = resizedPath
	out.Thumbnail.Path = thumbnailPath

	src, err := decodeOriginal(originalPath)
	if err != nil {
		return fail(err)
	}

	resized := imaging.Resize(src, 0, g.resizedHeight, imaging.Lanczos)
	out.Resized.Err = writeVariant(VariantResized, resized, resizedPath)

	thumb := imaging.Fill(src, g.thumbnailSize, g.thumbnailSize, imaging.Center, imaging.Lanczos)
	out.Thumbnail.Err = writeVariant(VariantThumbnail, thumb, thumbnailPath)

	return out, out.Err()
}

func decodeOriginal(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, nil
}

func writeVariant(v Variant, img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		_ = os.Remove(path)
		return &VariantError{Variant: v, Path: path, Err: err}
	}
	return nil
}
