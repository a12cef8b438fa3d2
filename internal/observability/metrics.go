package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	gradingSessionsTotal *prometheus.CounterVec
	gradeDistribution    prometheus.Histogram
	retakesAllowedTotal  prometheus.Counter
	coverUploadsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learn_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradingSessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_grading_sessions_total",
			Help: "Grading sessions by outcome.",
		}, []string{"outcome"})

		gradeDistribution = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "learn_saved_grades",
			Help:    "Distribution of saved percentage grades.",
			Buckets: []float64{50, 60, 70, 80, 90, 100},
		})

		retakesAllowedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learn_retakes_allowed_total",
			Help: "Number of submissions re-opened for a retake.",
		})

		coverUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_cover_uploads_total",
			Help: "Course cover uploads by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			gradingSessionsTotal,
			gradeDistribution,
			retakesAllowedTotal,
			coverUploadsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// GradingSessions counts opened, saved and cancelled grading sessions.
func GradingSessions() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingSessionsTotal
}

// SavedGrades observes every grade written by a grading session.
func SavedGrades() prometheus.Histogram {
	RegisterMetrics()
	return gradeDistribution
}

// RetakesAllowed counts allow-retake actions.
func RetakesAllowed() prometheus.Counter {
	RegisterMetrics()
	return retakesAllowedTotal
}

// CoverUploads counts cover uploads labelled stored, rejected_size, rejected_type or storage_failed.
func CoverUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return coverUploadsTotal
}
