package asset

import (
	"fmt"
	"strings"
	"time"
)

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"gif":  {},
}

// Namer derives asset names for uploads. Names are <field>-<unix millis>.<ext>; two uploads
// on the same field within one millisecond collide, which is an accepted risk.
type Namer struct {
	nowFunc func() time.Time
}

// NewNamer creates a Namer using the wall clock.
func NewNamer() *Namer {
	return &Namer{nowFunc: time.Now}
}

// NameUpload validates the declared type and extension and returns the asset identity.
func (n *Namer) NameUpload(fieldName, originalFileName, mimeType string) (Asset, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return Asset{}, ErrInvalidMimeType
	}

	idx := strings.LastIndex(originalFileName, ".")
	if idx < 0 || idx == len(originalFileName)-1 {
		return Asset{}, ErrMissingOrInvalidExtension
	}
	ext := strings.ToLower(originalFileName[idx+1:])
	if _, ok := allowedExtensions[ext]; !ok {
		return Asset{}, ErrMissingOrInvalidExtension
	}

	now := n.nowFunc()
	return Asset{
		Name:      fmt.Sprintf("%s-%d.%s", fieldName, now.UnixMilli(), ext),
		Extension: ext,
		CreatedAt: now,
	}, nil
}
