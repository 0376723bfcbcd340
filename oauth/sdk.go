package oauth

import "context"

// SDK is the capability boundary between a provider adapter and the
// provider's wire-level mechanics. Adapters receive an SDK at construction
// and never reach for provider state any other way; tests substitute fakes.
type SDK interface {
	// AuthCodeURL builds the authorization URL for an interactive flow.
	AuthCodeURL(req AuthRequest) string

	// Exchange trades an authorization code for tokens. The request must be
	// the one used to build the matching authorization URL.
	Exchange(ctx context.Context, code string, req AuthRequest) (*TokenResult, error)

	// Refresh performs a silent renewal using a refresh token. A non-empty
	// scopes list narrows the requested scope for this grant; empty means
	// the configured defaults.
	Refresh(ctx context.Context, refreshToken string, scopes ...string) (*TokenResult, error)

	// VerifyIDToken verifies a raw ID token's signature, audience, expiry and
	// (when non-empty) nonce, and returns its claims.
	VerifyIDToken(ctx context.Context, rawIDToken, nonce string) (map[string]any, error)

	// UserInfo fetches the user's profile from the provider's userinfo
	// endpoint using an access token.
	UserInfo(ctx context.Context, accessToken string) (map[string]any, error)

	// EndSession performs remote de-authentication (token revocation or
	// RP-initiated logout). Best effort; callers clear local state regardless.
	EndSession(ctx context.Context, tok *TokenResult) error
}
