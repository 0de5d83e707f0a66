package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records per-route request counts and latency
type HTTPMetrics struct {
	requestCounter   metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestsInFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics registers the HTTP instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	mb := newMetricBuilder(meter)
	h := &HTTPMetrics{
		requestCounter: mb.Int64Counter(
			"http_requests_total", "Total number of HTTP requests", "{request}"),
		requestDuration: mb.Float64Histogram(
			"http_request_duration_seconds", "Duration of HTTP requests", "s",
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}),
		requestsInFlight: mb.Int64UpDownCounter(
			"http_requests_in_flight", "Number of HTTP requests currently being served", "{request}"),
	}
	if err := mb.Error(); err != nil {
		return nil, err
	}
	return h, nil
}

// Middleware returns a Gin middleware recording every request.
// The route template (c.FullPath) is used as the label to keep cardinality bounded.
// A panic from a later handler is recorded as a 500 and then re-raised for
// the recovery middleware registered ahead of this one.
func (h *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		h.requestsInFlight.Add(ctx, 1)
		start := time.Now()

		defer func() {
			rec := recover()
			h.requestsInFlight.Add(ctx, -1)

			status := c.Writer.Status()
			if rec != nil {
				status = http.StatusInternalServerError
			}
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			attrs := metric.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("http.status_code", strconv.Itoa(status)),
			)
			h.requestCounter.Add(ctx, 1, attrs)
			h.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)

			if rec != nil {
				panic(rec)
			}
		}()

		c.Next()
	}
}
