package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	EstimatesComputed *prometheus.CounterVec
	ProjectsSubmitted prometheus.Counter
	MessagesSent      *prometheus.CounterVec
	DeliverableBytes  prometheus.Counter
	Errors            *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status.",
			}, []string{"method", "route", "status"}),
			HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency distribution for HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"}),
			EstimatesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_computed_total",
				Help:      "Quick estimates computed by category and currency.",
			}, []string{"category", "currency"}),
			ProjectsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "projects_submitted_total",
				Help:      "Project requests successfully submitted.",
			}),
			MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "support_messages_sent_total",
				Help:      "Support messages appended by sender role.",
			}, []string{"sender"}),
			DeliverableBytes: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliverable_upload_bytes_total",
				Help:      "Total bytes written to deliverable storage.",
			}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.HTTPRequests,
			metricsInstance.HTTPDuration,
			metricsInstance.EstimatesComputed,
			metricsInstance.ProjectsSubmitted,
			metricsInstance.MessagesSent,
			metricsInstance.DeliverableBytes,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
