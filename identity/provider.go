package identity

// Provider identifies an external identity system.
type Provider string

const (
	// ProviderNone means no provider currently backs the session.
	ProviderNone Provider = ""
	// ProviderEnterprise is the directory-backed enterprise OIDC provider.
	ProviderEnterprise Provider = "enterprise"
	// ProviderConsumer is the consumer (Google) provider.
	ProviderConsumer Provider = "consumer"
)

// Valid reports whether p names a concrete provider.
func (p Provider) Valid() bool {
	return p == ProviderEnterprise || p == ProviderConsumer
}

// String returns the provider identifier, or "none".
func (p Provider) String() string {
	if p == ProviderNone {
		return "none"
	}
	return string(p)
}

// Label returns the human-readable display name for the provider.
// Derived purely from the provider tag; consumers use it for UI text.
func (p Provider) Label() string {
	switch p {
	case ProviderEnterprise:
		return "Enterprise Directory"
	case ProviderConsumer:
		return "Google"
	default:
		return "Not signed in"
	}
}

// Icon returns the icon identifier for the provider.
func (p Provider) Icon() string {
	switch p {
	case ProviderEnterprise:
		return "business"
	case ProviderConsumer:
		return "google"
	default:
		return "person_outline"
	}
}

// Color returns the brand color (hex) for the provider.
func (p Provider) Color() string {
	switch p {
	case ProviderEnterprise:
		return "#0078d4"
	case ProviderConsumer:
		return "#4285f4"
	default:
		return "#9e9e9e"
	}
}
