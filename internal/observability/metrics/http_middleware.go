package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics instruments the inbound HTTP surface.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewHTTPMetrics(cfg Config, provider metric.MeterProvider) (*HTTPMetrics, error) {
	meter := provider.Meter("couriertrack/http")

	requests, err := meter.Int64Counter("couriertrack_http_requests_total")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"couriertrack_http_request_duration_seconds",
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

func (m *HTTPMetrics) Record(c *gin.Context, elapsed time.Duration) {
	if m == nil {
		return
	}
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", route),
		attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
	)
	opt := metric.WithAttributes(attrs...)
	m.requests.Add(c.Request.Context(), 1, opt)
	m.duration.Record(c.Request.Context(), elapsed.Seconds(), opt)
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Record(c, time.Since(start))
	}
}
