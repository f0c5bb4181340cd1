package compreface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds the configuration for the CompreFace client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8000",
		Timeout:    5 * time.Second,
		RetryCount: 2,
	}
}

// Client is the HTTP client for the CompreFace recognition API.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new CompreFace client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// statusError carries the HTTP status of a failed request so callers can
// distinguish a missing endpoint from a failing one.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("compreface returned status %d: %s", e.status, e.body)
}

// Enroll registers a face image under the subject label.
func (c *Client) Enroll(ctx context.Context, subject, imageBase64 string) (*EnrollResponse, error) {
	path := "/api/v1/recognition/faces?subject=" + url.QueryEscape(subject)

	var resp EnrollResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, path, map[string]string{"image": imageBase64}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recognize ranks enrolled subjects against the image.
func (c *Client) Recognize(ctx context.Context, imageBase64 string, limit int) (*RecognizeResponse, error) {
	req := RecognizeRequest{Image: imageBase64, Limit: limit}

	var resp RecognizeResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/api/v1/recognition/recognize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify compares the image against a single subject (1:1).
func (c *Client) Verify(ctx context.Context, subjectID, imageBase64 string) (*VerifyResponse, error) {
	path := "/api/v1/recognition/verify/" + url.PathEscape(subjectID)

	var resp VerifyResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, path, VerifyRequest{Image: imageBase64}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Liveness runs the liveness plugin on the image.
func (c *Client) Liveness(ctx context.Context, imageBase64 string) (*LivenessResponse, error) {
	var resp LivenessResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/api/v1/liveness", LivenessRequest{Image: imageBase64}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSubjects enumerates the registry.
func (c *Client) ListSubjects(ctx context.Context) (*ListSubjectsResponse, error) {
	var resp ListSubjectsResponse
	if err := c.doRequestWithRetry(ctx, http.MethodGet, "/api/v1/recognition/subjects", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSubject fetches one registry entry.
func (c *Client) GetSubject(ctx context.Context, subjectID string) (*SubjectEntry, error) {
	path := "/api/v1/recognition/subjects/" + url.PathEscape(subjectID)

	var resp SubjectEntry
	if err := c.doRequestWithRetry(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSubject removes a subject and all its faces.
func (c *Client) DeleteSubject(ctx context.Context, subjectID string) error {
	path := "/api/v1/recognition/subjects/" + url.PathEscape(subjectID)
	return c.doRequestWithRetry(ctx, http.MethodDelete, path, nil, nil)
}

// Probe issues a minimal request against an endpoint to find out whether it
// is provisioned on this installation. 404 and 405 mean absent; anything
// else (including 400 for the empty body) means present.
func (c *Client) Probe(ctx context.Context, method, path string) (bool, error) {
	err := c.doRequest(ctx, method, path, nil, nil)
	if err == nil {
		return true, nil
	}

	var se *statusError
	if errors.As(err, &se) {
		if se.status == http.StatusNotFound || se.status == http.StatusMethodNotAllowed {
			return false, nil
		}
		return true, nil
	}
	return false, err
}

// maxBackoff is the maximum backoff duration for retries.
const maxBackoff = 10 * time.Second

// calculateBackoff returns 1s, 2s, 4s, ... capped at maxBackoff.
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	seconds := 1
	for i := 1; i < attempt && i < 4; i++ {
		seconds *= 2
	}
	d := time.Duration(seconds) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// doRequestWithRetry executes an HTTP request, retrying server errors with
// exponential backoff. Client errors (4xx) are returned immediately.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		var se *statusError
		if errors.As(lastErr, &se) && se.status < 500 {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrServiceUnavailable, lastErr)
}

// doRequest executes a single HTTP request.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("x-api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &statusError{status: resp.StatusCode, body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
