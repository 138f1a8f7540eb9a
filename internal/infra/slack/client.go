// Package slack dispatches catalog-described calls to the upstream Web API:
// argument validation, authorization, rate-limit backoff, and translation of
// upstream failures into the domain error taxonomy.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client performs raw HTTP calls against the Web API. It does not interpret
// upstream errors; the dispatcher owns that.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("upstream"),
	}
}

type apiResponse struct {
	StatusCode int
	RetryAfter time.Duration
	OK         bool
	ErrorCode  string
	Body       map[string]any
}

// Call issues one request. A transport error is returned as-is so the caller
// can classify it against the call's mutation semantics.
func (c *Client) Call(ctx context.Context, method, endpoint, token string, params map[string]any) (*apiResponse, error) {
	var body io.Reader
	if method != http.MethodGet && len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if method == http.MethodGet {
		query := url.Values{}
		for name, value := range params {
			query.Set(name, fmt.Sprint(value))
		}
		req.URL.RawQuery = query.Encode()
	} else {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	result := &apiResponse{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests {
		result.RetryAfter = retryAfter(resp.Header)
		return result, nil
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		c.logger.Warn("upstream returned non-JSON body",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return result, nil
	}
	result.Body = parsed
	if ok, found := parsed["ok"].(bool); found {
		result.OK = ok
	}
	if code, found := parsed["error"].(string); found {
		result.ErrorCode = code
	}
	return result, nil
}

func retryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return time.Second
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return time.Second
	}
	return time.Duration(seconds) * time.Second
}
