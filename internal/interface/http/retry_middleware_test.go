package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/diabetes-risk/internal/infra/config"
)

func flakyHandler(failures int, calls *int, bodies *[]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if bodies != nil {
			raw, _ := io.ReadAll(r.Body)
			*bodies = append(*bodies, string(raw))
		}
		if *calls <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("busy"))
			return
		}
		w.Header().Set("X-Attempt", "final")
		_, _ = w.Write([]byte("ok"))
	})
}

func retryConfig() config.RetryConfig {
	return config.RetryConfig{
		Enabled:         true,
		MaxAttempts:     3,
		BaseBackoff:     time.Millisecond,
		IdempotentPosts: []string{"/api/v1/assessments/evaluate"},
		Exclude:         []string{"/metrics"},
	}
}

func TestWithRetry_RetriesGetUntilSuccess(t *testing.T) {
	calls := 0
	h := withRetry(flakyHandler(2, &calls, nil), retryConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assessments/result", nil))

	require.Equal(t, 3, calls)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, "final", rec.Header().Get("X-Attempt"))
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	h := withRetry(flakyHandler(10, &calls, nil), retryConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil))

	require.Equal(t, 3, calls)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "busy", rec.Body.String())
}

func TestWithRetry_ReplaysBodyForIdempotentPost(t *testing.T) {
	calls := 0
	var bodies []string
	h := withRetry(flakyHandler(1, &calls, &bodies), retryConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assessments/evaluate", strings.NewReader(`{"age":50}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{`{"age":50}`, `{"age":50}`}, bodies)
}

func TestWithRetry_NeverReplaysSideEffectingPost(t *testing.T) {
	for _, path := range []string{"/api/save/", "/api/v1/assessments"} {
		calls := 0
		h := withRetry(flakyHandler(1, &calls, nil), retryConfig(), newTestLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))

		require.Equal(t, 1, calls, path)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestWithRetry_SkipsExcludedPaths(t *testing.T) {
	calls := 0
	h := withRetry(flakyHandler(1, &calls, nil), retryConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, 1, calls)
}

func TestWithRetry_StopsWhenClientGoesAway(t *testing.T) {
	calls := 0
	cfg := retryConfig()
	cfg.BaseBackoff = time.Hour
	h := withRetry(flakyHandler(10, &calls, nil), cfg, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil).WithContext(ctx))

	require.Equal(t, 1, calls)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWithRetry_RejectsOversizedBody(t *testing.T) {
	calls := 0
	h := withRetry(flakyHandler(0, &calls, nil), retryConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	big := strings.Repeat("x", retryBodyLimit+1)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assessments/evaluate", strings.NewReader(big)))

	require.Equal(t, 0, calls)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
