// Package oauth implements the OAuth2/OIDC plumbing shared by the provider
// adapters.
//
// The SDK interface is the injected capability boundary: adapters depend on
// it, never on ambient provider globals. The concrete Client implementation
// wraps coreos/go-oidc issuer discovery and golang.org/x/oauth2 token
// exchange. Discovery is retried with a finite ceiling; exhaustion surfaces
// as PROVIDER_UNAVAILABLE rather than an indefinite wait.
//
// Interactive flows use the Authorization Code grant with PKCE (S256) and an
// OIDC nonce.
package oauth
