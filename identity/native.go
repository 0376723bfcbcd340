package identity

// NativeUser is a provider-native user payload. Implementations are tagged
// variant types, one per provider; the tag pins which adapter may produce it.
type NativeUser interface {
	// NativeProvider returns the provider this payload originates from.
	NativeProvider() Provider
}

// EnterpriseClaims is the native identity payload of the enterprise directory
// provider, extracted from its verified ID token.
type EnterpriseClaims struct {
	Subject           string         `json:"sub"`
	Email             string         `json:"email"`
	EmailVerified     bool           `json:"email_verified"`
	Name              string         `json:"name,omitempty"`
	PreferredUsername string         `json:"preferred_username,omitempty"`
	GivenName         string         `json:"given_name,omitempty"`
	FamilyName        string         `json:"family_name,omitempty"`
	Picture           string         `json:"picture,omitempty"`
	Roles             []string       `json:"roles,omitempty"`
	Raw               map[string]any `json:"raw,omitempty"`
}

// NativeProvider implements NativeUser.
func (EnterpriseClaims) NativeProvider() Provider { return ProviderEnterprise }

// ConsumerProfile is the native identity payload of the consumer provider,
// built from its ID token claims, optionally enriched from the userinfo
// endpoint.
type ConsumerProfile struct {
	Subject       string         `json:"sub"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	Name          string         `json:"name,omitempty"`
	GivenName     string         `json:"given_name,omitempty"`
	FamilyName    string         `json:"family_name,omitempty"`
	Picture       string         `json:"picture,omitempty"`
	Locale        string         `json:"locale,omitempty"`
	Raw           map[string]any `json:"raw,omitempty"`
}

// NativeProvider implements NativeUser.
func (ConsumerProfile) NativeProvider() Provider { return ProviderConsumer }
