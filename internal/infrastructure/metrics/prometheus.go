package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HandlerMetrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type StoreMetrics struct {
	MethodCount    *prometheus.CounterVec
	MethodDuration *prometheus.HistogramVec
}

type SlotMetrics struct {
	OpCount    *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec
}

func NewHandlerMetrics() *HandlerMetrics {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_requests_total",
			Help: "Total number of HTTP requests handled by the handler layer.",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handler_request_duration_seconds",
			Help:    "Histogram of response latency for handler in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	prometheus.MustRegister(requestCount, requestDuration)

	return &HandlerMetrics{
		RequestCount:    requestCount,
		RequestDuration: requestDuration,
	}
}

func NewStoreMetrics() *StoreMetrics {
	methodCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_methods_total",
			Help: "Total number of advertisement store methods executed.",
		},
		[]string{"method", "status"},
	)

	methodDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_method_duration_seconds",
			Help:    "Histogram of store method execution duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(methodCount, methodDuration)

	return &StoreMetrics{
		MethodCount:    methodCount,
		MethodDuration: methodDuration,
	}
}

func NewSlotMetrics() *SlotMetrics {
	opCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slot_operations_total",
			Help: "Total number of durable slot reads and writes executed.",
		},
		[]string{"op", "status"},
	)

	opDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slot_operation_duration_seconds",
			Help:    "Histogram of durable slot operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	prometheus.MustRegister(opCount, opDuration)

	return &SlotMetrics{
		OpCount:    opCount,
		OpDuration: opDuration,
	}
}

func (hm *HandlerMetrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
