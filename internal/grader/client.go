package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service endpoint paths, relative to the base URL.
const (
	PathRegister    = "/register"
	PathSchedule    = "/schedule"
	PathLastRun     = "/last_run"
	PathBestRun     = "/best_run"
	PathLogDownload = "/log/download"
)

// Client talks to the autograder service.
//
// Every call sends its payload as a JSON body with a Content-Type of
// application/json, including the GET calls; the service reads the body of
// GET requests. The client never interprets status codes: callers get the
// [Response] and decide what to do with it. Transport failures are returned
// as errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a [Client] for the service at baseURL.
//
// A zero timeout leaves requests unbounded, so an unresponsive service
// blocks the caller until the context is cancelled.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Register posts the registration payload.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, PathRegister, req)
}

// Schedule asks the service to start a grading run for the group.
func (c *Client) Schedule(ctx context.Context, req ScheduleRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, PathSchedule, req)
}

// LastRun fetches the group's most recent run result.
func (c *Client) LastRun(ctx context.Context, req ScheduleRequest) (*Response, error) {
	return c.do(ctx, http.MethodGet, PathLastRun, req)
}

// BestRun fetches the group's best scoring run result.
func (c *Client) BestRun(ctx context.Context, req ScheduleRequest) (*Response, error) {
	return c.do(ctx, http.MethodGet, PathBestRun, req)
}

// DownloadLog fetches the raw log file named in req.
func (c *Client) DownloadLog(ctx context.Context, req LogRequest) (*Response, error) {
	return c.do(ctx, http.MethodGet, PathLogDownload, req)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("http_error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", path, err)
	}

	c.logger.Debug("http_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}
