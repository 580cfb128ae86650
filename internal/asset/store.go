package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store maps asset names onto the three sibling variant directories under an image root.
type Store struct {
	root string
}

// NewStore prepares the variant directories under root.
func NewStore(root string) (*Store, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("image root is required")
	}
	trimmed = filepath.Clean(trimmed)
	for _, v := range Variants {
		if err := os.MkdirAll(filepath.Join(trimmed, v.dir()), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", v, err)
		}
	}
	return &Store{root: trimmed}, nil
}

// Root returns the configured image root.
func (s *Store) Root() string {
	return s.root
}

// Path derives the storage path of a variant. It performs no validation; callers handling
// untrusted names go through Resolve.
func (s *Store) Path(v Variant, name string) string {
	return filepath.Join(s.root, v.dir(), name)
}

// OriginalPath is where the uploaded bytes of name are kept.
func (s *Store) OriginalPath(name string) string { return s.Path(VariantOriginal, name) }

// ResizedPath is where the fixed-height variant of name is kept.
func (s *Store) ResizedPath(name string) string { return s.Path(VariantResized, name) }

// ThumbnailPath is where the square thumbnail of name is kept.
func (s *Store) ThumbnailPath(name string) string { return s.Path(VariantThumbnail, name) }

// Resolve is the guarded path lookup used at every boundary that receives a name.
func (s *Store) Resolve(v Variant, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, v.dir())
	path := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel != name {
		return "", ErrInvalidAssetName
	}
	return path, nil
}

// ValidateName rejects empty names, separators and dot segments.
func ValidateName(name string) error {
	if name == "" || strings.TrimSpace(name) != name {
		return ErrInvalidAssetName
	}
	if name == "." || name == ".." {
		return ErrInvalidAssetName
	}
	if strings.ContainsAny(name, `/\`+"\x00") {
		return ErrInvalidAssetName
	}
	return nil
}

// Exists reports whether a regular file is present at path.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// SaveOriginal writes the uploaded bytes to the original directory.
func (s *Store) SaveOriginal(name string, data io.Reader) (string, error) {
	if data == nil {
		return "", ErrEmptyUpload
	}
	dest, err := s.Resolve(VariantOriginal, name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create original: %w", err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("write original: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("close original: %w", err)
	}
	return dest, nil
}

// DeleteVariant removes one variant file. A missing file is reported as StatusNotFound, not
// as an error.
func (s *Store) DeleteVariant(path string) (DeleteStatus, error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StatusNotFound, nil
		}
		return StatusError, fmt.Errorf("remove variant: %w", err)
	}
	return StatusDeleted, nil
}

// FetchForServing opens a variant for reading. The caller closes the file.
func (s *Store) FetchForServing(v Variant, name string) (*os.File, fs.FileInfo, error) {
	path, err := s.Resolve(v, name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrAssetNotFound
		}
		return nil, nil, fmt.Errorf("open variant: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat variant: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrAssetNotFound
	}
	return f, info, nil
}

// ListAssets returns the names of every stored original.
func (s *Store) ListAssets() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, VariantOriginal.dir()))
	if err != nil {
		return nil, fmt.Errorf("list originals: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
