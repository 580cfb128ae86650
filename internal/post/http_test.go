package post

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/abduss/blogd/internal/asset"
	"github.com/abduss/blogd/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostRouter(t *testing.T, userID uuid.UUID, maxUpload int64) (*gin.Engine, fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	router := gin.New()
	v1 := router.Group("/v1")
	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		auth.SetCurrentUser(c, auth.ContextUser{ID: userID.String()})
		c.Next()
	})
	RegisterRoutes(v1, protected, f.service, maxUpload)
	return router, f
}

type part struct {
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+UploadField+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func send(router http.Handler, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreatePostEndpoint(t *testing.T) {
	router, f := newPostRouter(t, uuid.New(), 10<<20)

	body, ct := multipartBody(t, map[string]string{"title": "Hello", "body": "world"}, &part{"sunset.jpg", "image/jpeg", testJPEG(t)})
	rec := send(router, http.MethodPost, "/v1/posts", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp writeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Post.Image)
	assert.Regexp(t, `^img_upload-\d+\.jpg$`, *resp.Post.Image)
	assert.Equal(t, "/v1/images/thumbnail/"+*resp.Post.Image, resp.Post.Images[asset.VariantThumbnail])
	assert.Empty(t, resp.Warnings)
	f.assertVariants(t, *resp.Post.Image, true)

	rec = send(router, http.MethodGet, "/v1/posts/"+resp.Post.ID.String(), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(router, http.MethodGet, "/v1/posts", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Hello"`)
}

func TestCreatePostRejectsBadUploads(t *testing.T) {
	router, _ := newPostRouter(t, uuid.New(), 10<<20)

	body, ct := multipartBody(t, map[string]string{"title": "x"}, &part{"notes.txt", "text/plain", []byte("hi")})
	rec := send(router, http.MethodPost, "/v1/posts", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, map[string]string{"title": "x"}, &part{"image.png", "image/png", []byte("png")})
	rec = send(router, http.MethodPost, "/v1/posts", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, map[string]string{"title": ""}, nil)
	rec = send(router, http.MethodPost, "/v1/posts", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodPost, "/v1/posts", bytes.NewBufferString(`{"title":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePostUploadTooLarge(t *testing.T) {
	router, _ := newPostRouter(t, uuid.New(), 16)

	body, ct := multipartBody(t, map[string]string{"title": "x"}, &part{"big.jpg", "image/jpeg", testJPEG(t)})
	rec := send(router, http.MethodPost, "/v1/posts", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreatePostDegradedImage(t *testing.T) {
	router, _ := newPostRouter(t, uuid.New(), 10<<20)

	body, ct := multipartBody(t, map[string]string{"title": "x"}, &part{"broken.bmp", "image/bmp", []byte("BM nope")})
	rec := send(router, http.MethodPost, "/v1/posts", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp writeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Post.Image)
	assert.NotEmpty(t, resp.Warnings)
}

func TestUpdateAndDeleteEndpoints(t *testing.T) {
	author := uuid.New()
	router, f := newPostRouter(t, author, 10<<20)
	created, err := f.service.Create(context.Background(), author, CreateInput{Title: "v1"}, jpegUpload(t))
	require.NoError(t, err)
	id := created.Post.ID.String()

	body, ct := multipartBody(t, map[string]string{"title": "v2"}, nil)
	rec := send(router, http.MethodPut, "/v1/posts/"+id, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"v2"`)

	rec = send(router, http.MethodDelete, "/v1/posts/"+id+"/image", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"success"`)

	rec = send(router, http.MethodDelete, "/v1/posts/"+id+"/image", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(router, http.MethodDelete, "/v1/posts/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(router, http.MethodGet, "/v1/posts/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(router, http.MethodGet, "/v1/posts/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForeignPostIsForbidden(t *testing.T) {
	router, f := newPostRouter(t, uuid.New(), 10<<20)
	created, err := f.service.Create(context.Background(), uuid.New(), CreateInput{Title: "theirs"}, nil)
	require.NoError(t, err)

	rec := send(router, http.MethodDelete, "/v1/posts/"+created.Post.ID.String(), nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
