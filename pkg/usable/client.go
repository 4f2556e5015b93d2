package usable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/houzhh15/taskable/pkg/metrics"
)

// DefaultTimeout bounds every API call issued by NewClient's HTTP client.
const DefaultTimeout = 30 * time.Second

// Client talks to the Usable REST API with a bearer token.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the authenticated HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUploadClient replaces the client used for presigned uploads.
func WithUploadClient(hc *http.Client) Option {
	return func(c *Client) { c.uploadClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client for baseURL. Requests carry the token from ts;
// refreshing sources are honoured by the oauth2 transport.
func NewClient(baseURL string, ts oauth2.TokenSource, opts ...Option) *Client {
	var hc *http.Client
	if ts != nil {
		hc = oauth2.NewClient(context.Background(), ts)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = DefaultTimeout

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   hc,
		uploadClient: &http.Client{Timeout: 5 * time.Minute},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithToken builds a client that sends a fixed access token.
func NewClientWithToken(baseURL, accessToken string, opts ...Option) *Client {
	return NewClient(baseURL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}), opts...)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	status := "network_error"
	defer func() {
		metrics.RecordStoreRequest(op, status)
		metrics.RecordStoreDuration(op, time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("usable request failed", "op", op, "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, data)
		c.logger.Warn("usable api error", "op", op, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	c.logger.Debug("usable request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decodeStrict(data, out)
}

// parseAPIError builds an APIError from an error body, which may be JSON
// ({"error","message","details"}) or plain text.
func parseAPIError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: "HTTP " + strconv.Itoa(statusCode)}

	var payload struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		if text := strings.TrimSpace(string(data)); text != "" {
			apiErr.Details = text
		}
		return apiErr
	}

	switch {
	case payload.Error != "":
		apiErr.Message = payload.Error
	case payload.Message != "":
		apiErr.Message = payload.Message
	}
	if len(payload.Details) > 0 {
		var s string
		if err := json.Unmarshal(payload.Details, &s); err == nil {
			apiErr.Details = s
		} else {
			apiErr.Details = string(payload.Details)
		}
	}
	return apiErr
}
