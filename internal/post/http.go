package post

import (
	"errors"
	"net/http"

	"github.com/abduss/blogd/internal/asset"
	"github.com/abduss/blogd/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadField is the multipart field carrying a post image.
const UploadField = "img_upload"

// formOverhead leaves room for the text fields next to the image in a multipart body.
const formOverhead = 1 << 20

// RegisterRoutes mounts post reads on public and post writes on protected.
func RegisterRoutes(public, protected *gin.RouterGroup, service *Service, maxUploadBytes int64) {
	handler := &httpHandler{service: service, maxUploadBytes: maxUploadBytes}
	public.GET("/posts", handler.listPosts)
	public.GET("/posts/:postID", handler.getPost)

	protected.POST("/posts", handler.createPost)
	protected.PUT("/posts/:postID", handler.updatePost)
	protected.DELETE("/posts/:postID", handler.deletePost)
	protected.DELETE("/posts/:postID/image", handler.deleteImage)
}

type httpHandler struct {
	service        *Service
	maxUploadBytes int64
}

type postResponse struct {
	Post
	Images map[asset.Variant]string `json:"images,omitempty"`
}

type writeResponse struct {
	Post     postResponse         `json:"post"`
	Image    *asset.CreateOutcome `json:"image,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

type deleteResponse struct {
	ID      uuid.UUID            `json:"id"`
	Image   *asset.DeleteOutcome `json:"image,omitempty"`
	Warning string               `json:"warning,omitempty"`
}

func (h *httpHandler) listPosts(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, marshalPost(p))
	}
	c.JSON(http.StatusOK, gin.H{"posts": resp})
}

func (h *httpHandler) getPost(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, marshalPost(p))
}

func (h *httpHandler) createPost(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	upload, closeUpload, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer closeUpload()

	result, err := h.service.Create(c.Request.Context(), userID, CreateInput{
		Title: c.PostForm("title"),
		Body:  c.PostForm("body"),
	}, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, marshalWrite(result))
}

func (h *httpHandler) updatePost(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	upload, closeUpload, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer closeUpload()

	var input UpdateInput
	if title, present := c.GetPostForm("title"); present {
		input.Title = &title
	}
	if body, present := c.GetPostForm("body"); present {
		input.Body = &body
	}

	result, err := h.service.Update(c.Request.Context(), userID, id, input, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, marshalWrite(result))
}

func (h *httpHandler) deletePost(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	result, err := h.service.Delete(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := deleteResponse{ID: result.Post.ID, Image: result.Image}
	if result.Image != nil {
		resp.Warning = result.Image.Warning()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *httpHandler) deleteImage(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parsePostID(c)
	if !ok {
		return
	}

	outcome, err := h.service.DeleteImage(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	asset.RenderDeleteOutcome(c, outcome)
}

// readUpload extracts the optional image part. It writes the error response itself and
// returns ok=false when the request cannot proceed.
func (h *httpHandler) readUpload(c *gin.Context) (*asset.Upload, func(), bool) {
	noop := func() {}
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverhead)
	}

	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return nil, noop, true
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		case errors.Is(err, http.ErrNotMultipart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload"})
		}
		return nil, noop, false
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return nil, noop, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return nil, noop, false
	}

	return &asset.Upload{
		FieldName:   UploadField,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        f,
	}, func() { f.Close() }, true
}

func parsePostID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("postID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.Is(err, ErrNoImage):
		c.JSON(http.StatusNotFound, gin.H{"error": "post has no image"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func marshalPost(p Post) postResponse {
	resp := postResponse{Post: p}
	if p.Image != nil {
		resp.Images = make(map[asset.Variant]string, len(asset.Variants))
		for _, v := range asset.Variants {
			resp.Images[v] = "/v1/images/" + string(v) + "/" + *p.Image
		}
	}
	return resp
}

func marshalWrite(result WriteResult) writeResponse {
	return writeResponse{
		Post:     marshalPost(result.Post),
		Image:    result.Image,
		Warnings: result.Warnings(),
	}
}
