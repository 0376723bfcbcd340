package identity

// UnifiedUser is the canonical identity record published to consumers.
// ID, Email and DisplayName are always populated when Raw is non-nil;
// Provider always matches the adapter that produced the record.
type UnifiedUser struct {
	// ID is the provider-scoped unique identifier (OIDC subject).
	ID string `json:"id"`
	// Email is the user's email address.
	Email string `json:"email"`
	// DisplayName is the resolved human-readable name.
	DisplayName string `json:"display_name"`
	// PictureURL is an optional profile picture URL.
	PictureURL string `json:"picture_url,omitempty"`
	// Provider is the identity system that authenticated the user.
	Provider Provider `json:"provider"`
	// Raw preserves the native payload for provider-specific features.
	Raw NativeUser `json:"raw,omitempty"`
}
