package econet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/logging"
)

const (
	// DefaultTimeout is the per-attempt request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is the number of attempts made when the controller times out
	DefaultMaxAttempts = 5

	// DefaultRetryDelay is the delay between timed-out attempts
	DefaultRetryDelay = 1 * time.Second
)

// Registry names served under /econet/ by the controller.
const (
	RegistrySystem   = "sysParams"
	RegistryRegular  = "regParams"
	RegistryEditable = "editParams"

	pathPrefix   = "/econet/"
	pathNewParam = "/econet/newParam"
)

// Payload is a decoded JSON object returned by the controller
type Payload map[string]any

// Client talks to a single ecoNET-300 module over its local HTTP API.
//
// The HTTPClient is owned by the caller: it is shared, never closed, and its
// own Timeout is left untouched. Each attempt runs under Timeout instead.
type Client struct {
	// Host is the normalized base URL (e.g., "http://192.168.1.50")
	Host string

	// Username for HTTP Basic Auth
	Username string

	// Password for HTTP Basic Auth
	Password string

	// HTTPClient is the borrowed HTTP client
	HTTPClient *http.Client

	// Timeout bounds a single request attempt
	Timeout time.Duration

	// MaxAttempts is the number of attempts made while the controller times out
	MaxAttempts int

	// RetryDelay is the pause between timed-out attempts
	RetryDelay time.Duration
}

// NewClient creates a client for the controller at host.
// host may omit the scheme, in which case http:// is assumed.
// A nil httpClient falls back to http.DefaultClient.
func NewClient(host, username, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		Host:        NormalizeHost(host),
		Username:    username,
		Password:    password,
		HTTPClient:  httpClient,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
	}
}

// NormalizeHost prepends http:// when host carries neither http:// nor https://.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}

// SetTimeout sets the per-attempt request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.Timeout = timeout
}

// SetAuth sets custom HTTP Basic Auth credentials
func (c *Client) SetAuth(username, password string) {
	c.Username = username
	c.Password = password
}

// SetRetry configures retry behavior for timed-out attempts
func (c *Client) SetRetry(maxAttempts int, retryDelay time.Duration) {
	c.MaxAttempts = maxAttempts
	c.RetryDelay = retryDelay
}

// Fetch performs an authenticated GET and decodes the JSON object it returns.
//
// Only timed-out attempts are retried. Every other failure, and an exhausted
// retry budget, is logged and reported as a nil payload with a nil error.
// HTTP 401 is returned as an auth DeviceError. Cancellation of ctx returns
// ctx.Err().
func (c *Client) Fetch(ctx context.Context, rawURL string) (Payload, error) {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.RetryDelay):
			}
		}

		logging.LogFetch(rawURL, attempt, attempts)

		payload, err := c.fetchAttempt(ctx, rawURL)
		if err == nil {
			return payload, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if IsAuthError(err) {
			return nil, err
		}

		if !IsRetryable(err) {
			logging.Error("Controller request failed",
				zap.String("url", rawURL),
				zap.Error(err),
			)
			return nil, nil
		}

		logging.Warn("Controller request timed out",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Duration("timeout", c.Timeout),
		)
	}

	logging.Error("Controller did not answer, giving up",
		zap.String("url", rawURL),
		zap.Int("attempts", attempts),
	)
	return nil, nil
}

// fetchAttempt performs a single bounded GET
func (c *Client) fetchAttempt(ctx context.Context, rawURL string) (Payload, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, NewNetworkError("failed to create GET request", err)
	}

	req.SetBasicAuth(c.Username, c.Password)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err, c.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogResponse(rawURL, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewAuthError("authentication failed (check credentials)")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyNetworkError(err, c.Host)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewParseError("failed to parse JSON response", err)
	}
	if payload == nil {
		return nil, NewParseError("controller returned an empty payload", nil)
	}

	logging.LogPayload(rawURL, len(payload), body)

	return payload, nil
}

// RegistryURL returns the URL of a named registry
func (c *Client) RegistryURL(registry string) string {
	return c.Host + pathPrefix + registry
}

// GetParams fetches one of the controller registries (sysParams, regParams, editParams)
func (c *Client) GetParams(ctx context.Context, registry string) (Payload, error) {
	return c.Fetch(ctx, c.RegistryURL(registry))
}

// SetParam writes value to the parameter at the given device index
func (c *Client) SetParam(ctx context.Context, index, value string) (Payload, error) {
	query := url.Values{}
	query.Set("newParamName", index)
	query.Set("newParamValue", value)
	return c.Fetch(ctx, c.Host+pathNewParam+"?"+query.Encode())
}
