package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application's collectors
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "varto",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "varto",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	pushSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "varto",
			Subsystem: "push",
			Name:      "sends_total",
			Help:      "Push notifications attempted, by recipient type and result.",
		},
		[]string{"recipient_type", "result"},
	)

	notificationWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "varto",
			Subsystem: "notifications",
			Name:      "writes_total",
			Help:      "Notification rows written, by recipient type and result.",
		},
		[]string{"recipient_type", "result"},
	)

	listingsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "varto",
			Subsystem: "listings",
			Name:      "expired_total",
			Help:      "Listings moved to expired by the sweeper.",
		},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, pushSends, notificationWrites, listingsExpired)
}

// Middleware records request counts and latency per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for scraping
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func RecordPush(recipientType string, err error) {
	pushSends.WithLabelValues(recipientType, result(err)).Inc()
}

func RecordNotificationWrite(recipientType string, err error) {
	notificationWrites.WithLabelValues(recipientType, result(err)).Inc()
}

func RecordListingsExpired(n int64) {
	listingsExpired.Add(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
