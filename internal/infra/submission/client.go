package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

const savePath = "/api/save/"

// ErrNoBaseURL is returned when the collector address is not configured.
var ErrNoBaseURL = errors.New("submission base url is not configured")

// Client posts finished assessments to the record collector.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a collector client. timeout <= 0 leaves request deadlines
// to the caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "submission.client"),
	}
}

// Submit sends the payload to <baseURL>/api/save/. The response body is
// decoded as generic JSON and logged.
func (c *Client) Submit(ctx context.Context, payload risk.Submission) error {
	if c.baseURL == "" {
		return ErrNoBaseURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+savePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read submission response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("submission rejected: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var decoded any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("decode submission response: %w", err)
		}
	}
	c.logger.Info("submission accepted", "status", resp.StatusCode, "response", decoded)
	return nil
}

var _ risk.Sink = (*Client)(nil)
