package identity

import (
	"testing"

	"github.com/skillsenselab/authbridge/errors"
)

func TestNormalize_Enterprise(t *testing.T) {
	claims := EnterpriseClaims{
		Subject:           "u1",
		Email:             "a@x.com",
		EmailVerified:     true,
		Name:              "A User",
		PreferredUsername: "auser",
		Picture:           "https://idp.example.com/a.png",
	}

	user, err := Normalize(ProviderEnterprise, claims)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected id u1, got %q", user.ID)
	}
	if user.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %q", user.Email)
	}
	if user.DisplayName != "A User" {
		t.Errorf("expected display name 'A User', got %q", user.DisplayName)
	}
	if user.Provider != ProviderEnterprise {
		t.Errorf("expected enterprise provider, got %s", user.Provider)
	}
	if user.PictureURL != "https://idp.example.com/a.png" {
		t.Errorf("unexpected picture url %q", user.PictureURL)
	}
	if user.Raw == nil {
		t.Error("expected raw payload preserved")
	}
}

func TestNormalize_Consumer(t *testing.T) {
	profile := ConsumerProfile{
		Subject: "g1",
		Email:   "b@gmail.com",
		Name:    "B User",
		Picture: "https://lh3.example.com/b.jpg",
	}

	user, err := Normalize(ProviderConsumer, profile)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if user.ID != "g1" {
		t.Errorf("expected id g1, got %q", user.ID)
	}
	if user.Provider != ProviderConsumer {
		t.Errorf("expected consumer provider, got %s", user.Provider)
	}
}

func TestNormalize_PointerPayloads(t *testing.T) {
	user, err := Normalize(ProviderEnterprise, &EnterpriseClaims{Subject: "u2", Email: "c@x.com"})
	if err != nil {
		t.Fatalf("Normalize failed for pointer payload: %v", err)
	}
	if user.ID != "u2" {
		t.Errorf("expected u2, got %q", user.ID)
	}
}

func TestNormalize_MalformedPayloads(t *testing.T) {
	cases := []struct {
		name   string
		tag    Provider
		native NativeUser
	}{
		{"enterprise missing id", ProviderEnterprise, EnterpriseClaims{Email: "a@x.com"}},
		{"enterprise missing email", ProviderEnterprise, EnterpriseClaims{Subject: "u1"}},
		{"enterprise empty", ProviderEnterprise, EnterpriseClaims{}},
		{"consumer missing id", ProviderConsumer, ConsumerProfile{Email: "b@gmail.com"}},
		{"consumer missing email", ProviderConsumer, ConsumerProfile{Subject: "g1"}},
		{"whitespace subject", ProviderConsumer, ConsumerProfile{Subject: "  ", Email: "b@gmail.com"}},
		{"nil payload", ProviderEnterprise, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := Normalize(tc.tag, tc.native)
			if err == nil {
				t.Fatal("expected error for malformed payload")
			}
			if user != nil {
				t.Error("expected nil user, never a partial record")
			}
			if !errors.IsCode(err, errors.ErrCodeMalformedUserPayload) {
				t.Errorf("expected MALFORMED_USER_PAYLOAD, got %v", err)
			}
		})
	}
}

func TestNormalize_TagMismatch(t *testing.T) {
	_, err := Normalize(ProviderEnterprise, ConsumerProfile{Subject: "g1", Email: "b@gmail.com"})
	if !errors.IsCode(err, errors.ErrCodeMalformedUserPayload) {
		t.Errorf("expected MALFORMED_USER_PAYLOAD for mismatched tag, got %v", err)
	}
}

func TestNormalize_ProviderMatchesTag(t *testing.T) {
	user, err := Normalize(ProviderConsumer, ConsumerProfile{Subject: "g9", Email: "z@gmail.com"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if user.Provider != user.Raw.NativeProvider() {
		t.Error("expected unified provider to match native payload provider")
	}
}

func TestDisplayName_Fallbacks(t *testing.T) {
	cases := []struct {
		name   string
		native NativeUser
		want   string
	}{
		{"preferred username", EnterpriseClaims{Subject: "u", Email: "u@x.com", PreferredUsername: "udir"}, "udir"},
		{"given+family", ConsumerProfile{Subject: "g", Email: "g@x.com", GivenName: "Gi", FamilyName: "Fam"}, "Gi Fam"},
		{"given only", ConsumerProfile{Subject: "g", Email: "g@x.com", GivenName: "Gi"}, "Gi"},
		{"email local part", ConsumerProfile{Subject: "g", Email: "someone@x.com"}, "someone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := Normalize(tc.native.NativeProvider(), tc.native)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if user.DisplayName != tc.want {
				t.Errorf("expected %q, got %q", tc.want, user.DisplayName)
			}
		})
	}
}

func TestProvider_DisplayHelpers(t *testing.T) {
	if ProviderEnterprise.Label() != "Enterprise Directory" {
		t.Errorf("unexpected enterprise label %q", ProviderEnterprise.Label())
	}
	if ProviderConsumer.Label() != "Google" {
		t.Errorf("unexpected consumer label %q", ProviderConsumer.Label())
	}
	if ProviderNone.Label() != "Not signed in" {
		t.Errorf("unexpected none label %q", ProviderNone.Label())
	}
	if ProviderNone.Valid() {
		t.Error("ProviderNone must not be valid")
	}
	if !ProviderEnterprise.Valid() || !ProviderConsumer.Valid() {
		t.Error("concrete providers must be valid")
	}
	if ProviderNone.String() != "none" {
		t.Errorf("expected 'none', got %q", ProviderNone.String())
	}
}
