package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenFunc supplies the access token for an outbound request. It is called
// once per request so the credential cache decides when to refresh.
type TokenFunc func(ctx context.Context) (*oauth2.Token, error)

// RequestError reports a non-2xx response from the Graph API. The connector
// never retries; callers decide retry policy.
type RequestError struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int
	// Body is the raw upstream response body.
	Body string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("graph request failed with status %d: %s", e.StatusCode, e.Body)
}

// Result is the outcome of a write call (POST/PATCH). A duplicate-object
// conflict is part of the closed outcome set rather than an error, so the
// reconciliation engine branches on Conflict() instead of parsing error
// bodies itself.
type Result struct {
	// Body is the decoded response body, empty for 204-style responses.
	Body Record

	conflict bool
}

// Conflict reports whether the upstream rejected the write because the
// object already exists.
func (r *Result) Conflict() bool { return r.conflict }

// NewConflictResult returns the duplicate-object outcome. Fakes standing in
// for the Graph API use it to script the create-to-update fallback.
func NewConflictResult() *Result { return &Result{conflict: true} }

// Client issues authenticated calls against the Graph API.
type Client struct {
	baseURL  string
	metadata string
	tokens   TokenFunc
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a Graph client. The token func is consulted on every
// request, so one client can be built per incoming pipeline request with
// the principal that request selected.
func NewClient(cfg Config, tokens TokenFunc, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	metadata := cfg.Metadata
	if metadata == "" {
		metadata = "minimal"
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		metadata: metadata,
		tokens:   tokens,
		http:     &http.Client{Transport: transport},
		logger:   logger,
	}
}

// URL joins a resource path onto the configured Graph root.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

// Get fetches a single object and decodes it.
func (c *Client) Get(ctx context.Context, path string) (Record, error) {
	data, err := c.get(ctx, c.URL(path))
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// Post creates a resource. A duplicate-object rejection comes back as a
// conflict Result, any other failure as an error.
func (c *Client) Post(ctx context.Context, path string, payload Record) (*Result, error) {
	return c.write(ctx, http.MethodPost, c.URL(path), payload)
}

// Patch partially updates a resource. Same outcome contract as Post.
func (c *Client) Patch(ctx context.Context, path string, payload Record) (*Result, error) {
	return c.write(ctx, http.MethodPatch, c.URL(path), payload)
}

// get performs an authenticated GET against a fully resolved URL and returns
// the raw body. Pagination links from the API are used verbatim, hence the
// URL parameter instead of a path.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.failure(url, resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) write(ctx context.Context, method, url string, payload Record) (*Result, error) {
	resp, err := c.do(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		return &Result{Body: body}, nil
	}

	if isConflict(data) {
		return &Result{conflict: true}, nil
	}
	return nil, c.failure(url, resp.StatusCode, data)
}

func (c *Client) do(ctx context.Context, method, url string, payload Record) (*http.Response, error) {
	tok, err := c.tokens(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	rid := uuid.NewString()
	req.Header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	req.Header.Set("Accept", fmt.Sprintf("application/json;odata.metadata=%s;odata.streaming=true", c.metadata))
	req.Header.Set("client-request-id", rid)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("graph request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("client_request_id", rid),
	)

	return c.http.Do(req)
}

// failure logs the full upstream body at the point of detection and wraps
// it into a RequestError.
func (c *Client) failure(url string, status int, body []byte) error {
	c.logger.Error("graph request failed",
		zap.String("url", url),
		zap.Int("status", status),
		zap.ByteString("body", body),
	)
	return &RequestError{StatusCode: status, Body: string(body)}
}

func decodeRecord(data []byte) (Record, error) {
	if len(data) == 0 {
		return Record{}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %w", err)
	}
	return rec, nil
}

// isConflict checks whether an error body is the structured "object already
// exists" rejection.
func isConflict(data []byte) bool {
	var body struct {
		Error struct {
			Details []struct {
				Code string `json:"code"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return false
	}
	for _, d := range body.Error.Details {
		if d.Code == "ObjectConflict" {
			return true
		}
	}
	return false
}
