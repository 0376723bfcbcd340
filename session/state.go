package session

import "github.com/skillsenselab/authbridge/identity"

// SessionState is the coordinator's published view of authentication.
// The three facts always agree: Authenticated is true exactly when User
// is non-nil and ActiveProvider is set.
type SessionState struct {
	// Authenticated reports whether any provider session is established.
	Authenticated bool `json:"authenticated"`
	// Loading is true while any provider flow or replay is in flight.
	Loading bool `json:"loading"`
	// User is the normalized identity of the signed-in user, or nil.
	User *identity.UnifiedUser `json:"user,omitempty"`
	// ActiveProvider is the provider owning the session, or ProviderNone.
	ActiveProvider identity.Provider `json:"active_provider"`
}
