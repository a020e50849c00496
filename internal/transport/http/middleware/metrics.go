package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNS = "person_registry"

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: metricsNS, Name: "http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"route", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNS,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route", "method"},
	)
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNS, Name: "http_in_flight", Help: "Requests currently being served",
	})
	timeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNS, Name: "http_timeouts_total", Help: "Requests answered with the timeout code",
	})
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight, timeoutsTotal) }

// Metrics 未命中路由的请求统一记为 "unmatched"，避免路径打爆标签基数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpReqTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
