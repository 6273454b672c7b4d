package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "proup"

// MetricsMiddleware records per-route request metrics. Routes are labelled by
// their template so ids do not create new series.
type MetricsMiddleware struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight prometheus.Gauge
	respSize *prometheus.HistogramVec
	skip     map[string]struct{}
}

// NewMetricsMiddleware registers the HTTP collectors on reg. Requests whose
// route template is in skipPaths are not recorded.
func NewMetricsMiddleware(reg prometheus.Registerer, skipPaths ...string) *MetricsMiddleware {
	factory := promauto.With(reg)

	m := &MetricsMiddleware{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status class",
		}, []string{"method", "route", "class"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
		respSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Size of HTTP responses in bytes",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 7),
		}, []string{"route"}),
		skip: make(map[string]struct{}, len(skipPaths)),
	}
	for _, p := range skipPaths {
		m.skip[p] = struct{}{}
	}
	return m
}

func (m *MetricsMiddleware) CollectMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := m.skip[route]; ok {
			c.Next()
			return
		}

		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		m.total.WithLabelValues(method, route, statusClass(c.Writer.Status())).Inc()
		if size := c.Writer.Size(); size > 0 {
			m.respSize.WithLabelValues(route).Observe(float64(size))
		}
	}
}

// statusClass collapses a status code to "2xx", "4xx" and so on.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
