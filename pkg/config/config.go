// Package config holds the client configuration surface. A Config is built
// explicitly and passed to each client instance; there is no process-wide
// default client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names for client configuration
const (
	EnvBaseURL = "ETHYS_BASE_URL"
	EnvAPIKey  = "ETHYS_API_KEY"
	EnvTimeout = "ETHYS_TIMEOUT_SECONDS"
)

const (
	// DefaultBaseURL is the production protocol endpoint.
	DefaultBaseURL = "https://402.ethys.dev"

	// DefaultTimeout bounds every call when no explicit timeout is set.
	DefaultTimeout = 30 * time.Second
)

// Config configures a client instance.
type Config struct {
	// BaseURL overrides the target host.
	BaseURL string `json:"base_url"`

	// APIKey enables legacy bearer-header auth on endpoints that accept it.
	APIKey string `json:"api_key,omitempty"`

	// Timeout bounds the wait for each call.
	Timeout time.Duration `json:"timeout"`

	// StrictDecoding rejects unknown fields in response bodies. Off by
	// default for forward compatibility with server schema additions.
	StrictDecoding bool `json:"strict_decoding"`

	// RequestsPerSecond caps the outbound request rate when positive.
	// Zero disables client-side rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// NewConfig builds a Config seeded from the environment, falling back to
// production defaults.
func NewConfig() *Config {
	cfg := &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs * float64(time.Second))
		}
	}
	return cfg
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https, got %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative, got %f", c.RequestsPerSecond)
	}
	return nil
}
