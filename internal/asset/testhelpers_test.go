package asset

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	return store
}

func newTestLifecycle(t *testing.T, mirror Mirror) (*Lifecycle, *Store) {
	t.Helper()
	store := newTestStore(t)
	return NewLifecycle(store, NewGenerator(store, 0, 0), mirror, zap.NewNop()), store
}

func encodeTestImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// blockDir replaces a variant directory with a regular file so writes into it fail.
func blockDir(t *testing.T, store *Store, v Variant) {
	t.Helper()
	dir := filepath.Join(store.Root(), v.dir())
	require.NoError(t, os.RemoveAll(dir))
	writeFile(t, dir, []byte("blocked"))
}

// mkdirWithChild creates a non-empty directory at path so os.Remove on it fails.
func mkdirWithChild(path string) error {
	return os.MkdirAll(filepath.Join(path, "child"), 0o755)
}

type fakeMirror struct {
	mu       sync.Mutex
	puts     []string
	removes  []string
	failPuts bool
}

func (f *fakeMirror) Put(ctx context.Context, key, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPuts {
		return os.ErrPermission
	}
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeMirror) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, key)
	return nil
}
