package server

import (
	"context"
	"time"

	"github.com/abduss/blogd/internal/asset"
	"github.com/abduss/blogd/internal/auth"
	"github.com/abduss/blogd/internal/config"
	"github.com/abduss/blogd/internal/logger"
	"github.com/abduss/blogd/internal/metrics"
	"github.com/abduss/blogd/internal/post"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker is satisfied by *minio.Client.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config      config.Config
	DB          Pinger
	ObjectStore BucketChecker // nil when the image mirror is disabled
	AuthService *auth.Service
	PostService *post.Service
	Lifecycle   *asset.Lifecycle
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with middleware, health probes and the /v1 API.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	metrics.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(deps.Logger))
	router.Use(metrics.Middleware())
	if origins := deps.Config.CORS.AllowedOrigins; len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.CorrelationIDHeader},
			ExposeHeaders:    []string{logger.CorrelationIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	registerTrackRoutes(api, deps.Logger)

	if deps.AuthService == nil {
		return router
	}
	auth.RegisterRoutes(api, deps.AuthService)

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware(deps.AuthService))
	auth.RegisterUserRoutes(protected, deps.AuthService)

	admin := protected.Group("")
	admin.Use(auth.RequireAdmin())

	if deps.Lifecycle != nil {
		asset.RegisterRoutes(api, admin, deps.Lifecycle)
	}
	if deps.PostService != nil {
		post.RegisterRoutes(api, protected, deps.PostService, deps.Config.Images.MaxUploadBytes)
	}

	return router
}
