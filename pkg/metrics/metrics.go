package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics tracks the API traffic of one client process
type ClientMetrics struct {
	Requests        *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	RequestFailures *prometheus.CounterVec

	UploadedFiles prometheus.Counter
	FailedUploads prometheus.Counter
	UploadedBytes prometheus.Counter

	registry *prometheus.Registry
}

// NewClientMetrics creates the client metrics on a private registry
func NewClientMetrics() *ClientMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &ClientMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicloud_client_requests_total",
			Help: "Total number of API requests by route and status code",
		}, []string{"method", "route", "status"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minicloud_client_request_duration_seconds",
			Help:    "API request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicloud_client_request_failures_total",
			Help: "API requests that failed before a response was received",
		}, []string{"method", "route"}),

		UploadedFiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "minicloud_client_uploaded_files_total",
			Help: "Files uploaded successfully",
		}),
		FailedUploads: factory.NewCounter(prometheus.CounterOpts{
			Name: "minicloud_client_failed_uploads_total",
			Help: "Files whose upload failed",
		}),
		UploadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "minicloud_client_uploaded_bytes_total",
			Help: "Bytes uploaded successfully",
		}),

		registry: registry,
	}
}

// ObserveRequest records one completed request. status 0 means the
// transport failed before a response arrived.
func (m *ClientMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if status == 0 {
		m.RequestFailures.WithLabelValues(method, route).Inc()
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveUpload records the outcome of one file upload.
func (m *ClientMetrics) ObserveUpload(size int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.FailedUploads.Inc()
		return
	}
	m.UploadedFiles.Inc()
	m.UploadedBytes.Add(float64(size))
}

// Registry exposes the underlying registry for gathering.
func (m *ClientMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the metrics in the node_exporter textfile format.
func (m *ClientMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
