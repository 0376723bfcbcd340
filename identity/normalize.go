package identity

import (
	"strings"

	"github.com/skillsenselab/authbridge/errors"
)

// Normalize maps a provider-native payload into the canonical UnifiedUser.
// It is a pure function: no I/O, no side effects.
//
// It fails closed: a payload missing its subject or email is rejected with
// MALFORMED_USER_PAYLOAD, and the tag must match the payload's own provider.
// Callers treat a normalization failure identically to an unauthenticated
// event.
func Normalize(tag Provider, native NativeUser) (*UnifiedUser, error) {
	if native == nil {
		return nil, errors.MalformedUserPayload(tag.String(), "payload")
	}
	if native.NativeProvider() != tag {
		return nil, errors.MalformedUserPayload(tag.String(), "provider").
			WithDetail("payload_provider", native.NativeProvider().String())
	}

	switch u := native.(type) {
	case EnterpriseClaims:
		return normalizeEnterprise(u)
	case *EnterpriseClaims:
		return normalizeEnterprise(*u)
	case ConsumerProfile:
		return normalizeConsumer(u)
	case *ConsumerProfile:
		return normalizeConsumer(*u)
	default:
		return nil, errors.MalformedUserPayload(tag.String(), "payload")
	}
}

func normalizeEnterprise(c EnterpriseClaims) (*UnifiedUser, error) {
	if missing := requiredFields(c.Subject, c.Email); len(missing) > 0 {
		return nil, errors.MalformedUserPayload(ProviderEnterprise.String(), missing...)
	}
	return &UnifiedUser{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: displayName(c.Name, c.PreferredUsername, c.GivenName, c.FamilyName, c.Email),
		PictureURL:  c.Picture,
		Provider:    ProviderEnterprise,
		Raw:         c,
	}, nil
}

func normalizeConsumer(p ConsumerProfile) (*UnifiedUser, error) {
	if missing := requiredFields(p.Subject, p.Email); len(missing) > 0 {
		return nil, errors.MalformedUserPayload(ProviderConsumer.String(), missing...)
	}
	return &UnifiedUser{
		ID:          p.Subject,
		Email:       p.Email,
		DisplayName: displayName(p.Name, "", p.GivenName, p.FamilyName, p.Email),
		PictureURL:  p.Picture,
		Provider:    ProviderConsumer,
		Raw:         p,
	}, nil
}

func requiredFields(subject, email string) []string {
	var missing []string
	if strings.TrimSpace(subject) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	return missing
}

// displayName resolves the best available display name. Preference order:
// full name, preferred username, "given family", then the email local part.
func displayName(name, preferred, given, family, email string) string {
	if name != "" {
		return name
	}
	if preferred != "" {
		return preferred
	}
	if given != "" || family != "" {
		return strings.TrimSpace(given + " " + family)
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
