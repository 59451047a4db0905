package firebase

import (
	"net/http"
	"time"
)

// DefaultEndpoint is the production Identity Toolkit base URL.
const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

// DefaultJWKSURL serves the keys Firebase signs ID tokens with.
const DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// Config holds Firebase project settings for the provider and validator.
type Config struct {
	// APIKey is the Web API key. Privileged; never ships to clients.
	APIKey string

	// ProjectID is the Firebase project id, used as token audience.
	ProjectID string

	// Endpoint overrides the Identity Toolkit base URL (tests).
	// Default: DefaultEndpoint.
	Endpoint string

	// JWKSURL overrides the securetoken JWKS location (tests).
	// Default: DefaultJWKSURL.
	JWKSURL string

	// HTTPClient overrides the client used for REST calls.
	HTTPClient *http.Client

	// Timeout bounds each REST call when HTTPClient is not provided.
	// Default: 10 seconds.
	Timeout time.Duration

	// CacheTTL is how long to cache JWKS keys.
	// Default: 5 minutes.
	CacheTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(apiKey, projectID string) Config {
	return Config{
		APIKey:    apiKey,
		ProjectID: projectID,
		Endpoint:  DefaultEndpoint,
		JWKSURL:   DefaultJWKSURL,
		Timeout:   10 * time.Second,
		CacheTTL:  5 * time.Minute,
	}
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return DefaultJWKSURL
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
