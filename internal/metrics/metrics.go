package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogd",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blogd",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	variantGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogd",
		Subsystem: "images",
		Name:      "variant_generations_total",
		Help:      "Derived image variants generated, by variant and result.",
	}, []string{"variant", "result"})

	assetDeletions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogd",
		Subsystem: "images",
		Name:      "asset_deletions_total",
		Help:      "Asset deletions, by aggregated outcome.",
	}, []string{"outcome"})

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, variantGenerations, assetDeletions)
	})
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Register attaches the Prometheus metrics endpoint to the router, at /metrics when path is empty.
func Register(router *gin.Engine, path string) {
	if path == "" {
		path = "/metrics"
	}
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// ObserveVariantGeneration counts one derived-variant generation attempt.
func ObserveVariantGeneration(variant string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	variantGenerations.WithLabelValues(variant, result).Inc()
}

// ObserveAssetDeletion counts one aggregated asset deletion outcome.
func ObserveAssetDeletion(outcome string) {
	assetDeletions.WithLabelValues(outcome).Inc()
}
