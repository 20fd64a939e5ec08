package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/diabetes-risk/internal/infra/config"
)

const retryBodyLimit = 1 << 20

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// retryPolicy decides which requests may be replayed. Saving a record or
// running an assessment has side effects, so POSTs are opt-in by path.
type retryPolicy struct {
	maxAttempts int
	baseBackoff time.Duration
	posts       map[string]struct{}
	exclude     map[string]struct{}
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		posts:       pathSet(cfg.IdempotentPosts),
		exclude:     pathSet(cfg.Exclude),
	}
}

func (p retryPolicy) eligible(r *http.Request) bool {
	if _, skip := p.exclude[r.URL.Path]; skip {
		return false
	}
	switch r.Method {
	case http.MethodGet:
		return true
	case http.MethodPost:
		_, ok := p.posts[r.URL.Path]
		return ok
	default:
		return false
	}
}

// backoff doubles per attempt: base, 2*base, 4*base...
func (p retryPolicy) backoff(attempt int) time.Duration {
	return p.baseBackoff * time.Duration(1<<(attempt-1))
}

// withRetry replays eligible requests that ended in a 5xx response.
// Responses are buffered so only the final attempt reaches the client.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	policy := newRetryPolicy(cfg)
	logger = logger.With("component", "http.retry")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.eligible(r) {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := bufferBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		var resp *bufferedResponse
		for attempt := 1; ; attempt++ {
			resp = newBufferedResponse()
			handler.ServeHTTP(resp, replay(r, body))
			if resp.status < http.StatusInternalServerError || attempt >= policy.maxAttempts {
				break
			}
			logger.Warn("transient failure, retrying request",
				"method", r.Method, "path", r.URL.Path, "status", resp.status, "attempt", attempt)
			if !sleepContext(r.Context(), policy.backoff(attempt)) {
				break
			}
		}
		resp.flushTo(w)
	})
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func replay(r *http.Request, body []byte) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	return clone
}

// sleepContext waits for d and reports false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wrote {
		return
	}
	b.status = status
	b.wrote = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wrote = true
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	w.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
