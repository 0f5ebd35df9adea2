package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the tracker.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	studentsRegistered prometheus.Counter
	validationFailures *prometheus.CounterVec
	attendanceRecords  *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	statsDuration      *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	studentsRegistered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "students_registered_total",
		Help: "Students added to the roster",
	})

	validationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_failures_total",
		Help: "Rejected payloads by operation and field",
	}, []string{"operation", "field"})

	attendanceRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_records_total",
		Help: "Attendance records written to the ledger by status",
	}, []string{"status"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_submissions_total",
		Help: "Attendance batches accepted by resubmission policy",
	}, []string{"policy"})

	statsDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statistics_compute_seconds",
		Help:    "Time spent deriving attendance statistics",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, studentsRegistered, validationFailures, attendanceRecords, submissions, statsDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		studentsRegistered: studentsRegistered,
		validationFailures: validationFailures,
		attendanceRecords:  attendanceRecords,
		submissions:        submissions,
		statsDuration:      statsDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordStudentRegistered counts a successful roster addition.
func (m *MetricsService) RecordStudentRegistered() {
	if m == nil {
		return
	}
	m.studentsRegistered.Inc()
}

// RecordValidationFailure counts a rejected payload.
func (m *MetricsService) RecordValidationFailure(operation, field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(operation, field).Inc()
}

// RecordAttendanceSubmission counts an accepted batch and its records per status.
func (m *MetricsService) RecordAttendanceSubmission(policy string, present, absent int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(policy).Inc()
	m.attendanceRecords.WithLabelValues("present").Add(float64(present))
	m.attendanceRecords.WithLabelValues("absent").Add(float64(absent))
}

// ObserveStatistics records how long a statistics derivation took.
func (m *MetricsService) ObserveStatistics(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.statsDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
