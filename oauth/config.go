package oauth

import (
	"fmt"
	"time"
)

// GoogleIssuer is the issuer URL of the consumer (Google) provider.
const GoogleIssuer = "https://accounts.google.com"

// ProviderConfig configures one OAuth2/OIDC provider connection.
// Loadable from YAML/env via mapstructure tags.
type ProviderConfig struct {
	// Name is the provider identifier used in logs and errors
	// (e.g., "enterprise", "consumer").
	Name string `mapstructure:"name" validate:"required"`

	// Issuer is the OIDC issuer URL used for endpoint discovery
	// (e.g., "https://idp.corp.example.com/realms/main").
	Issuer string `mapstructure:"issuer" validate:"required,url"`

	// ClientID is the OAuth2 client ID (also the expected "aud" claim).
	ClientID string `mapstructure:"client_id" validate:"required"`

	// ClientSecret is the OAuth2 client secret (empty for public clients).
	ClientSecret string `mapstructure:"client_secret"`

	// RedirectURL is the OAuth2 callback URL.
	RedirectURL string `mapstructure:"redirect_url" validate:"required,url"`

	// Scopes are the OAuth2 scopes to request (default: ["openid", "email", "profile"]).
	Scopes []string `mapstructure:"scopes"`

	// HTTPTimeout bounds each discovery and token HTTP request (default: "10s").
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// DiscoveryAttempts is the readiness-wait retry ceiling (default: 3).
	// Discovery that fails this many times reports the provider unavailable.
	DiscoveryAttempts int `mapstructure:"discovery_attempts"`

	// DiscoveryBackoff is the initial backoff between discovery retries
	// (default: "500ms").
	DiscoveryBackoff time.Duration `mapstructure:"discovery_backoff"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *ProviderConfig) ApplyDefaults() {
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "email", "profile"}
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.DiscoveryAttempts == 0 {
		c.DiscoveryAttempts = 3
	}
	if c.DiscoveryBackoff == 0 {
		c.DiscoveryBackoff = 500 * time.Millisecond
	}
}

// Validate checks required fields.
func (c *ProviderConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect_url is required")
	}
	return nil
}
