package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks HTTP requests served by the API.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// CheckoutsTotal counts checkout attempts by payment method and outcome.
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Checkout attempts by payment method and outcome",
		},
		[]string{"payment_method", "outcome"},
	)

	// StockDecrementsTotal counts remote stock updates issued by checkout.
	StockDecrementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_stock_decrements_total",
			Help: "Stock decrements issued to the backend",
		},
	)

	// OrderAmount tracks placed order totals in major currency units.
	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_order_amount",
			Help:    "Placed order totals in major currency units",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000},
		},
	)

	// BackendBreakerState tracks the backend circuit breaker (0=closed, 1=open, 2=half-open).
	BackendBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_backend_circuit_state",
			Help: "Backend circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit"},
	)

	// BackendFailures counts failed backend calls.
	BackendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_failures_total",
			Help: "Failed calls to the REST backend",
		},
		[]string{"op"},
	)
)

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
