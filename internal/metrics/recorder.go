// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// content operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blog"

// Result labels for content operations
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder holds the registered collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry        *prom.Registry
	requestDuration *prom.HistogramVec
	requests        *prom.CounterVec
	operations      *prom.CounterVec
	idAttempts      prom.Histogram
}

// NewRecorder registers all collectors on reg, or on a fresh registry when reg is nil
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		registry: reg,
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "route"}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "post_operations_total",
			Help:      "Content operations by kind and result",
		}, []string{"operation", "result"}),
		idAttempts: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "post_id_attempts",
			Help:      "Id allocation attempts needed per created post",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50},
		}),
	}
	reg.MustRegister(r.requestDuration, r.requests, r.operations, r.idAttempts)
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return r
}

// ObserveRequest records one served request. route is the matched pattern,
// never the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// IncOperation counts a content operation outcome
func (r *Recorder) IncOperation(op string, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	r.operations.WithLabelValues(op, result).Inc()
}

// ObserveIDAttempts records how many ids were tried before a create succeeded
func (r *Recorder) ObserveIDAttempts(n int) {
	if r == nil {
		return
	}
	r.idAttempts.Observe(float64(n))
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
