package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.ObserveAssessment("Low", "Moderate", 5)
	r.ObserveAssessment("Low", "Low", 3)
	r.ValidationFailed()
	r.SubmissionResult("failed")
	r.RecordSaved("saved")

	require.Equal(t, 2.0, testutil.ToFloat64(r.assessments.WithLabelValues("Low")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.idrs.WithLabelValues("Moderate")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.validation))
	require.Equal(t, 1.0, testutil.ToFloat64(r.submissions.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("saved")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.ObserveAssessment("Low", "Low", 0)
		r.ValidationFailed()
		r.SubmissionResult("ok")
		r.RecordSaved("saved")
		r.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	require.Nil(t, r.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveHTTP(http.MethodPost, "/api/save/", http.StatusCreated, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "diabetes_risk_http_request_duration_seconds")
}
