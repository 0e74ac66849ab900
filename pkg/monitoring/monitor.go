package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ImportRows 批量导入逐行结果 result=created|skipped
	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_import_rows_total",
			Help: "Rows processed by the bulk assessment import",
		},
		[]string{"result"},
	)

	ImportBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_import_batches_total",
			Help: "Bulk import batches by outcome",
		},
		[]string{"result"},
	)

	ImportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_import_duration_seconds",
			Help:    "Wall time of a bulk import batch, parse to last row",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	GradingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_grading_operations_total",
			Help: "Grading requests by mode and outcome",
		},
		[]string{"mode", "result"},
	)
)

var registerOnce sync.Once

// Init 注册到默认 registry，重复调用无副作用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ImportRows,
			ImportBatches,
			ImportDuration,
			GradingOperations,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
