// Package metrics giữ các Prometheus collector của service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shds_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shds_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shds_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	collectionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shds_collection_operations_total",
			Help: "Collection engine operations by collection, operation and outcome kind.",
		},
		[]string{"collection", "operation", "outcome"},
	)

	inviteTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shds_invite_transitions_total",
			Help: "Invite lifecycle events (issued, accepted, manual, rejected).",
		},
		[]string{"event"},
	)

	registerOnce sync.Once
)

// Init đăng ký collector vào default registry, gọi nhiều lần vẫn an toàn
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, collectionOps, inviteTransitions)
	})
}

// Handler trả về handler Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}

// TrackRequest gọi ở đầu request; hàm trả về được gọi khi request kết thúc
func TrackRequest(method string) func(route string, status int) {
	httpInFlight.Inc()
	start := time.Now()
	return func(route string, status int) {
		code := strconv.Itoa(status)
		httpRequestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, route, code).Inc()
		httpInFlight.Dec()
	}
}

// ObserveCollectionOp ghi nhận một lần create/list; outcome = "ok" hoặc tên Kind lỗi
func ObserveCollectionOp(collection, operation, outcome string) {
	collectionOps.WithLabelValues(collection, operation, outcome).Inc()
}

// ObserveInvite ghi nhận sự kiện vòng đời lời mời
func ObserveInvite(event string) {
	inviteTransitions.WithLabelValues(event).Inc()
}
