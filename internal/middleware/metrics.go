package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreErrors counts storage backend failures by collection and error code.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayboard_store_errors_total",
		Help: "Total number of storage backend errors by collection and code",
	}, []string{"collection", "code"})

	// FanoutLatency records search/stats aggregator fan-out latency.
	FanoutLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dayboard_fanout_latency_seconds",
		Help:    "Aggregator fan-out latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"aggregator"})
)

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus HTTP middleware for the service. The
// instance is shared: the underlying collectors can only be registered once
// per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware adapts the Prometheus middleware into a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
