package asset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNamer(ms int64) *Namer {
	return &Namer{nowFunc: func() time.Time { return time.UnixMilli(ms) }}
}

func TestNameUploadAcceptsImageExtensions(t *testing.T) {
	n := fixedNamer(1700000000123)

	cases := []struct {
		filename string
		ext      string
	}{
		{"cat.jpg", "jpg"},
		{"cat.JPG", "jpg"},
		{"holiday.photo.jpeg", "jpeg"},
		{"scan.BMP", "bmp"},
		{"anim.gif", "gif"},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			a, err := n.NameUpload("img_upload", tc.filename, "image/jpeg")
			require.NoError(t, err)
			assert.Equal(t, "img_upload-1700000000123."+tc.ext, a.Name)
			assert.True(t, strings.HasSuffix(a.Name, "."+tc.ext))
			assert.Equal(t, tc.ext, a.Extension)
			assert.Equal(t, int64(1700000000123), a.CreatedAt.UnixMilli())
		})
	}
}

func TestNameUploadRejectsNonImageMimeTypes(t *testing.T) {
	n := NewNamer()
	for _, mimeType := range []string{"", "text/plain", "application/octet-stream", "imagex/jpeg"} {
		_, err := n.NameUpload("img_upload", "cat.jpg", mimeType)
		assert.ErrorIs(t, err, ErrInvalidMimeType, "mime %q", mimeType)
		assert.True(t, IsNameError(err))
	}
}

func TestNameUploadRejectsMissingOrInvalidExtensions(t *testing.T) {
	n := NewNamer()
	for _, filename := range []string{"cat.png", "notes.txt", "noextension", "trailing.", "archive.jpg.zip"} {
		_, err := n.NameUpload("img_upload", filename, "image/png")
		assert.ErrorIs(t, err, ErrMissingOrInvalidExtension, "filename %q", filename)
		assert.True(t, IsNameError(err))
	}
}

func TestNameUploadChecksMimeTypeFirst(t *testing.T) {
	_, err := NewNamer().NameUpload("img_upload", "notes.txt", "text/plain")
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestNameUploadUsesCurrentTime(t *testing.T) {
	n := fixedNamer(1)
	first, err := n.NameUpload("img_upload", "a.gif", "image/gif")
	require.NoError(t, err)

	n.nowFunc = func() time.Time { return time.UnixMilli(2) }
	second, err := n.NameUpload("img_upload", "a.gif", "image/gif")
	require.NoError(t, err)

	assert.NotEqual(t, first.Name, second.Name)
}
