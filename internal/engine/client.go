package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/textgate/textgate/internal/config"
	"github.com/textgate/textgate/internal/models"
)

const contentTypeJSON = "application/json"

// Client talks the native generate protocol to the inference server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu   sync.RWMutex
	info *models.Info
}

// NewClient creates a client for the configured upstream.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// UpstreamError is a non-2xx answer from the inference server, surfaced
// unchanged to the caller.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	return req, nil
}

// Generate runs one complete generation call.
func (c *Client) Generate(ctx context.Context, genReq models.GenerateRequest) (*models.GenerateResponse, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/generate", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var genResp models.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode generate response: %w", err)
	}
	return &genResp, nil
}

// TokenStream is a lazy, finite, non-restartable sequence of token fragments.
// Fragments are delivered in the order the engine produced them.
type TokenStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// GenerateStream opens a streaming generation call. The caller must Close the
// returned stream.
func (c *Client) GenerateStream(ctx context.Context, genReq models.GenerateRequest) (*TokenStream, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/generate_stream", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate stream request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, upstreamError(resp)
	}

	return &TokenStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// Next returns the next token fragment, or io.EOF once the terminal fragment
// (the one carrying a finish reason) has been delivered.
func (ts *TokenStream) Next() (*models.StreamResponse, error) {
	if ts.done {
		return nil, io.EOF
	}

	for ts.scanner.Scan() {
		line := ts.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var fragment models.StreamResponse
		if err := json.Unmarshal([]byte(data), &fragment); err != nil {
			return nil, fmt.Errorf("failed to decode stream fragment: %w", err)
		}

		// The engine signals termination with a details record on the
		// final fragment.
		if fragment.Details != nil {
			ts.done = true
		}
		return &fragment, nil
	}

	if err := ts.scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}
	ts.done = true
	return nil, io.EOF
}

// Close releases the underlying connection.
func (ts *TokenStream) Close() error {
	return ts.body.Close()
}

// Info returns the engine's identity record. The record is fetched once and
// cached for the process lifetime; fetch failures are not cached, so a
// temporarily unreachable engine is retried on the next call.
func (c *Client) Info(ctx context.Context) (*models.Info, error) {
	c.mu.RLock()
	cached := c.info
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/info", nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var info models.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode info response: %w", err)
	}

	c.logger.Info("Fetched engine info",
		zap.String("model_id", info.ModelID),
		zap.String("version", info.Version),
		zap.Duration("latency", time.Since(start)))

	c.mu.Lock()
	c.info = &info
	c.mu.Unlock()

	return &info, nil
}

func upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &UpstreamError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
