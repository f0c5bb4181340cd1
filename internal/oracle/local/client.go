package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrRepresentUnavailable = errors.New("represent service unavailable")
	ErrInvalidResponse      = errors.New("invalid response from represent service")
)

// Config holds the configuration for the self-hosted oracle backend.
type Config struct {
	// RepresentURL is the base URL of the embedding service
	RepresentURL string
	Model        string
	Detector     string
	Timeout      time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RepresentURL: "http://localhost:5005",
		Model:        "Facenet512",
		Detector:     "retinaface",
		Timeout:      30 * time.Second,
	}
}

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img      string `json:"img"` // base64 encoded image
	Model    string `json:"model"`
	Detector string `json:"detector"`
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding []float64 `json:"embedding"`
}

// Client is the HTTP client for the embedding service.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new embedding service client.
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

// Represent calls POST /represent to compute face embeddings.
func (c *Client) Represent(ctx context.Context, imageBase64 string) (*RepresentResponse, error) {
	reqBody, err := json.Marshal(RepresentRequest{
		Img:      imageBase64,
		Model:    c.config.Model,
		Detector: c.config.Detector,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.RepresentURL, "/") + "/represent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepresentUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRepresentUnavailable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("represent returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result RepresentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &result, nil
}
