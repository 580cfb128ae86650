package server

import (
	"encoding/json"
	"net/http"

	"github.com/abduss/blogd/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type trackRequest struct {
	Data json.RawMessage `json:"data"`
}

// registerTrackRoutes mounts the analytics sink. Payloads are logged, not stored.
func registerTrackRoutes(api *gin.RouterGroup, log *zap.Logger) {
	api.POST("/track-data", func(c *gin.Context) {
		var req trackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracking payload"})
			return
		}

		logger.FromContext(c, log).Info("track data", zap.ByteString("data", req.Data))
		c.JSON(http.StatusOK, gin.H{"message": "Success"})
	})
}
