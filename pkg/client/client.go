// Package client implements the HTTP client for the ETHYS x402 protocol.
//
// Every operation issues exactly one HTTP round trip and maps failures to
// the typed errors in pkg/ethyserr. Calls are stateless; the client only
// owns the underlying connection pool and is safe for concurrent use. All
// methods take a context, which carries cancellation and deadlines for both
// blocking and concurrent callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ethys-protocol/ethys402-go/pkg/auth"
	"github.com/ethys-protocol/ethys402-go/pkg/config"
	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

// Endpoint paths for the fixed x402 REST surface
const (
	pathInfo              = "/api/v1/402/info"
	pathConnect           = "/api/v1/402/connect"
	pathVerifyPayment     = "/api/v1/402/verify-payment"
	pathTelemetry         = "/api/v1/402/telemetry"
	pathDiscoverySearch   = "/api/v1/402/discovery/search"
	pathDiscoveryRegister = "/api/v1/402/discovery/register"
	pathTrustScore        = "/api/v1/402/trust/score"
	pathTrustAttest       = "/api/v1/402/trust/attest"
	pathReviewsSubmit     = "/api/v1/402/reviews/submit"
)

// Option customizes a Client at construction time.
type Option func(*Client)

// WithLogger attaches a structured logger. The client never logs private
// keys or signatures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient substitutes the underlying HTTP client. The caller keeps
// ownership of a substituted client; Close becomes a no-op for it.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h; c.ownsHTTPClient = false }
}

// WithTelemetryMessageFunc overrides the canonical telemetry message
// template, for servers running a newer auth message contract.
func WithTelemetryMessageFunc(f auth.TelemetryMessageFunc) Option {
	return func(c *Client) { c.telemetryMsg = f }
}

// Client talks to an ETHYS x402 server.
type Client struct {
	cfg            *config.Config
	httpClient     *http.Client
	ownsHTTPClient bool
	logger         *zap.Logger
	limiter        *rate.Limiter
	telemetryMsg   auth.TelemetryMessageFunc
}

// New creates a client for the given configuration. A nil config uses the
// environment-seeded defaults.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	c := &Client{
		cfg:            cfg,
		logger:         zap.NewNop(),
		ownsHTTPClient: true,
		telemetryMsg:   auth.BuildTelemetryMessage,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// BaseURL returns the normalized target host.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Close releases idle connections held by the client-owned pool.
func (c *Client) Close() {
	if c.ownsHTTPClient {
		c.httpClient.CloseIdleConnections()
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, useAuth bool, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, useAuth, out)
}

func (c *Client) post(ctx context.Context, path string, body any, useAuth bool, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, useAuth, out)
}

// do issues a single HTTP request. No retries; failures map to the typed
// error taxonomy and surface to the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, useAuth bool, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &ethyserr.NetworkError{Endpoint: path, Err: err}
		}
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if useAuth && c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	requestID := uuid.NewString()
	c.logger.Sugar().Debugw("Sending request",
		"request_id", requestID,
		"method", method,
		"endpoint", path,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Sugar().Warnw("Request timed out", "request_id", requestID, "endpoint", path)
			return &ethyserr.TimeoutError{Endpoint: path, Timeout: c.cfg.Timeout, Err: err}
		}
		c.logger.Sugar().Warnw("Request failed", "request_id", requestID, "endpoint", path, "error", err)
		return &ethyserr.NetworkError{Endpoint: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ethyserr.NetworkError{Endpoint: path, Err: err}
	}

	c.logger.Sugar().Debugw("Received response",
		"request_id", requestID,
		"endpoint", path,
		"status_code", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapStatusError(path, resp, raw)
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if c.cfg.StrictDecoding {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return &ethyserr.ParsingError{Endpoint: path, Err: err}
	}
	return nil
}

// mapStatusError translates a non-success response into the matching
// protocol error subtype, preserving the server-supplied error code.
func (c *Client) mapStatusError(endpoint string, resp *http.Response, raw []byte) error {
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		text := string(raw)
		if text == "" {
			text = "unknown error"
		}
		body = map[string]any{"error": text}
	}

	code, _ := body["error"].(string)
	message, _ := body["message"].(string)
	if message == "" {
		message = code
	}
	if message == "" {
		message = fmt.Sprintf("API error: %d", resp.StatusCode)
	}

	apiErr := ethyserr.APIError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    message,
		Body:       body,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &ethyserr.AuthError{APIError: apiErr}
	case resp.StatusCode == http.StatusPaymentRequired:
		return &ethyserr.PaymentRequiredError{APIError: apiErr}
	case resp.StatusCode == http.StatusNotFound:
		return &ethyserr.NotFoundError{APIError: apiErr}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ethyserr.RateLimitError{APIError: apiErr, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return &ethyserr.ServerError{APIError: apiErr}
	default:
		return &apiErr
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
