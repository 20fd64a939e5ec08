package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "diabetes_risk"

// Recorder owns the Prometheus collectors exported on /metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	assessments    *prometheus.CounterVec
	idrs           *prometheus.CounterVec
	compositeScore prometheus.Histogram
	validation     prometheus.Counter
	submissions    *prometheus.CounterVec
	records        *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewRecorder registers every collector on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed composite assessments by risk category.",
		}, []string{"category"}),
		idrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idrs_assessments_total",
			Help:      "Completed IDRS assessments by risk category.",
		}, []string{"category"}),
		compositeScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "composite_score",
			Help:      "Distribution of composite totals.",
			Buckets:   []float64{7, 14, 20, 27, 34},
		}),
		validation: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Forms rejected by validation.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Best-effort submissions to the remote collector by outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Records received on the collector endpoint by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.assessments,
		r.idrs,
		r.compositeScore,
		r.validation,
		r.submissions,
		r.records,
		r.httpDuration,
	)
	return r
}

// ObserveAssessment counts a finished evaluation.
func (r *Recorder) ObserveAssessment(category, idrsCategory string, total int) {
	if r == nil {
		return
	}
	r.assessments.WithLabelValues(category).Inc()
	r.idrs.WithLabelValues(idrsCategory).Inc()
	r.compositeScore.Observe(float64(total))
}

// ValidationFailed counts a rejected form.
func (r *Recorder) ValidationFailed() {
	if r == nil {
		return
	}
	r.validation.Inc()
}

// SubmissionResult counts an outbound submission attempt.
func (r *Recorder) SubmissionResult(outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(outcome).Inc()
}

// RecordSaved counts an inbound record.
func (r *Recorder) RecordSaved(outcome string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records request latency.
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
