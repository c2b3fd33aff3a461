package monitoring

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the HTTP metrics of one application instance
type Metrics struct {
	registry *prometheus.Registry

	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge
	PageCacheResults    *prometheus.CounterVec
}

// NewMetrics registers the metrics on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HttpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HttpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_connections",
				Help: "Number of active connections",
			},
		),
		PageCacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_cache_results_total",
				Help: "Index page cache lookups by result",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.HttpRequestsTotal,
		m.HttpRequestDuration,
		m.ActiveConnections,
		m.PageCacheResults,
		collectors.NewGoCollector(),
	)
	return m
}

// Middleware records request count, duration and in-flight requests.
// Requests are labelled by route pattern, not raw path.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				// Skip collecting metrics from metrics endpoint itself
				return next(c)
			}

			m.ActiveConnections.Inc()
			defer m.ActiveConnections.Dec()

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			timer := prometheus.NewTimer(m.HttpRequestDuration.WithLabelValues(path))
			err := next(c)
			timer.ObserveDuration()

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			if cache := c.Response().Header().Get("X-Cache"); cache != "" {
				m.PageCacheResults.WithLabelValues(cache).Inc()
			}
			m.HttpRequestsTotal.WithLabelValues(path, c.Request().Method, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
