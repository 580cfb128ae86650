package asset

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts image retrieval on public and direct asset deletion on admin.
func RegisterRoutes(public, admin *gin.RouterGroup, lifecycle *Lifecycle) {
	handler := &httpHandler{lifecycle: lifecycle}
	public.GET("/images/:variant/:name", handler.serveVariant)
	public.GET("/images/:variant/:name/url", handler.mirrorURL)
	admin.DELETE("/images/:name", handler.deleteAsset)
}

type httpHandler struct {
	lifecycle *Lifecycle
}

func (h *httpHandler) serveVariant(c *gin.Context) {
	variant, ok := ParseVariant(c.Param("variant"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown image variant"})
		return
	}

	f, info, err := h.lifecycle.Store().FetchForServing(variant, c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAssetName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image name"})
		case errors.Is(err, ErrAssetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		}
		return
	}
	defer f.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func (h *httpHandler) mirrorURL(c *gin.Context) {
	variant, ok := ParseVariant(c.Param("variant"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown image variant"})
		return
	}

	link, ttl, err := h.lifecycle.MirrorURL(c.Request.Context(), variant, c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAssetName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image name"})
		case errors.Is(err, ErrAssetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		case errors.Is(err, ErrMirrorDisabled):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "image mirror is not enabled"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to presign image url"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": link, "expires_in": int(ttl.Seconds())})
}

func (h *httpHandler) deleteAsset(c *gin.Context) {
	outcome, err := h.lifecycle.Delete(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, ErrInvalidAssetName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image name"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete image"})
		return
	}

	RenderDeleteOutcome(c, outcome)
}

type deleteResponse struct {
	DeleteOutcome
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RenderDeleteOutcome writes an itemized delete result: 200 for success, 200 with a warning
// for partial success, 500 when any variant hit an I/O error.
func RenderDeleteOutcome(c *gin.Context, outcome DeleteOutcome) {
	resp := deleteResponse{DeleteOutcome: outcome, Warning: outcome.Warning()}
	status := http.StatusOK
	if outcome.Outcome == OutcomeFailure {
		status = http.StatusInternalServerError
		resp.Error = "failed to delete variants: " + joinVariants(outcome.Failed())
	}
	c.JSON(status, resp)
}
