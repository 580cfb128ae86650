package asset

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMimeType indicates the upload is not declared as an image.
	ErrInvalidMimeType = errors.New("invalid mime type")
	// ErrMissingOrInvalidExtension indicates the filename lacks an accepted image extension.
	ErrMissingOrInvalidExtension = errors.New("missing or invalid extension")
	// ErrUnsupportedFormat indicates the original could not be decoded.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrWriteFailure indicates a derived variant could not be persisted.
	ErrWriteFailure = errors.New("variant write failure")
	// ErrInvalidAssetName rejects names that could escape the image root.
	ErrInvalidAssetName = errors.New("invalid asset name")
	// ErrAssetNotFound signals that the requested variant file does not exist.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrEmptyUpload is returned when an upload carries no content.
	ErrEmptyUpload = errors.New("upload has no content")
	// ErrMirrorDisabled is returned for mirror-only operations when no presigning mirror is set.
	ErrMirrorDisabled = errors.New("image mirror disabled")
)

// IsNameError reports whether err is an upload naming (user input) error.
func IsNameError(err error) bool {
	return errors.Is(err, ErrInvalidMimeType) || errors.Is(err, ErrMissingOrInvalidExtension)
}

// VariantError records a failed derived variant.
type VariantError struct {
	Variant Variant
	Path    string
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("%s variant %s: %v", e.Variant, e.Path, e.Err)
}

func (e *VariantError) Unwrap() []error {
	return []error{ErrWriteFailure, e.Err}
}
