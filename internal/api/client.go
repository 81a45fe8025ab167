package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/leasehold/internal/log"
)

// DefaultTimeout bounds a single request when the caller does not configure one.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token attached to each request.
// tokenstore.Store satisfies it.
type TokenSource interface {
	Get() (string, error)
}

// Client is the marketplace API client. Each call is independent: there is
// no retry, no cache and no de-duplication of identical concurrent calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithTokens sets where the bearer token is read from
func WithTokens(ts TokenSource) Option {
	return func(c *Client) { c.Tokens = ts }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.Logger = l }
}

// NewClient creates a new API client rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = log.DefaultLogger()
	}
	return c
}

// Do performs method on path, sending body as JSON when non-nil and decoding
// a 2xx JSON response into out when out is non-nil.
//
// Every failure is returned as *Error: transport failures carry KindNetwork
// (or KindCanceled when ctx ended), non-2xx responses carry the server's
// message.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	if c.Tokens != nil {
		token, err := c.Tokens.Get()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := c.Logger.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		kind := KindNetwork
		if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
			kind = KindCanceled
		}
		logger.DebugContext(ctx, "request failed", "error", err.Error(), "kind", kind.String())
		return &Error{
			Kind:      kind,
			Message:   DefaultMessage,
			RequestID: requestID,
			Cause:     err,
		}
	}
	defer drainAndClose(resp.Body)

	logger.DebugContext(ctx, "request completed", "status", resp.StatusCode, "duration", time.Since(start))

	return parseResponse(resp, requestID, out)
}

// drainAndClose reads what is left of body so the connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrain))
	_ = body.Close()
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

// maxDrain bounds how much of an unread body is discarded before closing.
const maxDrain = 1 << 20

// errorBody is the JSON shape of a non-2xx response
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseResponse decodes a 2xx body into target or converts a non-2xx
// response into *Error.
func parseResponse(resp *http.Response, requestID string, target any) error {
	if id := resp.Header.Get(RequestIDHeader); id != "" {
		requestID = id
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

		message := DefaultMessage
		var errResp errorBody
		if err := json.Unmarshal(body, &errResp); err == nil {
			switch {
			case errResp.Message != "":
				message = errResp.Message
			case errResp.Error != "":
				message = errResp.Error
			}
		}

		return &Error{
			StatusCode: resp.StatusCode,
			Kind:       KindForStatus(resp.StatusCode),
			Message:    message,
			RequestID:  requestID,
		}
	}

	if target == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			StatusCode: resp.StatusCode,
			Kind:       KindNetwork,
			Message:    DefaultMessage,
			RequestID:  requestID,
			Cause:      err,
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &Error{
			StatusCode: resp.StatusCode,
			Kind:       KindServer,
			Message:    "invalid response from server",
			RequestID:  requestID,
			Cause:      err,
		}
	}
	return nil
}
