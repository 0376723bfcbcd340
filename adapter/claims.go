package adapter

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/skillsenselab/authbridge/errors"
	"github.com/skillsenselab/authbridge/identity"
)

// nativeFromClaims maps raw OIDC claims into the provider's native user
// payload. Mapping is permissive: missing optional fields stay zero and
// the fail-closed check happens later in identity.Normalize.
func nativeFromClaims(p identity.Provider, claims map[string]any) identity.NativeUser {
	switch p {
	case identity.ProviderEnterprise:
		return identity.EnterpriseClaims{
			Subject:           claimString(claims, "sub"),
			Email:             claimString(claims, "email"),
			EmailVerified:     claimBool(claims, "email_verified"),
			Name:              claimString(claims, "name"),
			PreferredUsername: claimString(claims, "preferred_username"),
			GivenName:         claimString(claims, "given_name"),
			FamilyName:        claimString(claims, "family_name"),
			Picture:           claimString(claims, "picture"),
			Roles:             claimStrings(claims, "roles"),
			Raw:               claims,
		}
	case identity.ProviderConsumer:
		return identity.ConsumerProfile{
			Subject:       claimString(claims, "sub"),
			Email:         claimString(claims, "email"),
			EmailVerified: claimBool(claims, "email_verified"),
			Name:          claimString(claims, "name"),
			GivenName:     claimString(claims, "given_name"),
			FamilyName:    claimString(claims, "family_name"),
			Picture:       claimString(claims, "picture"),
			Locale:        claimString(claims, "locale"),
			Raw:           claims,
		}
	default:
		return nil
	}
}

// claimsFromIDToken extracts claims from a stored ID token without
// signature verification. The token was verified when the session was
// established; replay must work offline, so it is trusted as local state.
func claimsFromIDToken(raw string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.InvalidToken().WithCause(err)
	}
	return map[string]any(claims), nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimBool(claims map[string]any, key string) bool {
	v, ok := claims[key].(bool)
	return ok && v
}

func claimStrings(claims map[string]any, key string) []string {
	raw, ok := claims[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
