package tokenstore

import (
	"context"
	"time"

	"github.com/skillsenselab/authbridge/identity"
)

// keyPrefix scopes record keys within the backing storage.
const keyPrefix = "authbridge.token."

// Key returns the storage key for a provider's token record.
func Key(p identity.Provider) string {
	return keyPrefix + string(p)
}

// Record is one provider's persisted token material. The payload format is
// provider-defined; authbridge only interprets ExpiresAt.
type Record struct {
	// AccessToken is the opaque bearer token.
	AccessToken string `json:"access_token"`
	// RefreshToken enables silent renewal (may be empty).
	RefreshToken string `json:"refresh_token,omitempty"`
	// IDToken is the raw OIDC ID token JWT.
	IDToken string `json:"id_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresAt is the access token's native expiry.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the access token is expired or expires within
// the leeway window.
func (r *Record) Expired(leeway time.Duration) bool {
	if r.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(leeway).After(r.ExpiresAt)
}

// Store persists one token record per provider.
//
// Load returns (nil, nil) when no record exists. Implementations must be
// safe for concurrent use by both adapters.
type Store interface {
	Load(ctx context.Context, p identity.Provider) (*Record, error)
	Save(ctx context.Context, p identity.Provider, rec *Record) error
	Delete(ctx context.Context, p identity.Provider) error
}
