package prometheus

import (
	"inventory-service/pkg/config"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	LoginCounter      prometheus.Counter
	RegisterCounter   prometheus.Counter
	AuthErrorsCounter prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Order workflow metrics
	ClientOrdersPlacedCounter     prometheus.Counter
	ClientOrdersRejectedCounter   prometheus.CounterVec
	PurchaseOrdersReceivedCounter prometheus.Counter
	LowStockAlertsCounter         prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	LoginCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_register_attempts_total",
			Help: "Total number of registration attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors by reason",
		},
		[]string{"reason"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Order workflow metrics
	ClientOrdersPlacedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_client_orders_placed_total",
			Help: "Total number of successfully placed client orders",
		},
	)

	ClientOrdersRejectedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_client_orders_rejected_total",
			Help: "Total number of rejected client orders by reason",
		},
		[]string{"reason"},
	)

	PurchaseOrdersReceivedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_purchase_orders_received_total",
			Help: "Total number of purchase orders received into a warehouse",
		},
	)

	LowStockAlertsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_low_stock_alerts_total",
			Help: "Total number of low stock alerts emitted",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAuthError increments the counter for authentication errors
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordOrderRejection increments the counter for rejected client orders
func RecordOrderRejection(reason string) {
	ClientOrdersRejectedCounter.WithLabelValues(reason).Inc()
}

// RecordLowStockAlert increments the counter for low stock alerts
func RecordLowStockAlert() {
	LowStockAlertsCounter.Inc()
}
