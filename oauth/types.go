package oauth

import "time"

// TokenResult holds the tokens returned from an OAuth2/OIDC exchange or
// silent renewal.
type TokenResult struct {
	// AccessToken is the OAuth2 access token.
	AccessToken string

	// RefreshToken is the OAuth2 refresh token (may be empty).
	RefreshToken string

	// IDToken is the raw OIDC ID token JWT string.
	IDToken string

	// TokenType is typically "Bearer".
	TokenType string

	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time

	// Scopes are the granted scopes (may differ from requested).
	Scopes []string
}

// AuthRequest carries the per-flow parameters for building an authorization
// URL and completing the matching exchange.
type AuthRequest struct {
	// State is the CSRF token round-tripped through the provider.
	State string

	// Nonce is the OIDC replay-protection nonce bound into the ID token.
	Nonce string

	// PKCE is the challenge/verifier pair for this flow.
	PKCE *PKCE

	// RedirectURI overrides the configured redirect URI for this flow
	// (used by the loopback callback listener).
	RedirectURI string
}
