package oauth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	b, _ := GenerateState()
	if a == b {
		t.Error("expected unique states")
	}
}

func TestNewPKCE(t *testing.T) {
	pkce, err := NewPKCE()
	if err != nil {
		t.Fatalf("NewPKCE failed: %v", err)
	}
	if pkce.CodeChallengeMethod != "S256" {
		t.Errorf("expected S256, got %q", pkce.CodeChallengeMethod)
	}
	if len(pkce.CodeVerifier) != 43 {
		t.Errorf("expected 43-char verifier, got %d", len(pkce.CodeVerifier))
	}
	if pkce.CodeChallenge == pkce.CodeVerifier {
		t.Error("challenge must differ from verifier")
	}
	if strings.ContainsAny(pkce.CodeChallenge, "+/=") {
		t.Error("challenge must be base64url without padding")
	}
}

func TestGenerateNonce(t *testing.T) {
	n, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce failed: %v", err)
	}
	if len(n) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(n))
	}
}

func TestProviderConfig_ApplyDefaults(t *testing.T) {
	cfg := ProviderConfig{Name: "enterprise", Issuer: "https://idp.example.com", ClientID: "cid", RedirectURL: "https://app/cb"}
	cfg.ApplyDefaults()
	if len(cfg.Scopes) != 3 || cfg.Scopes[0] != "openid" {
		t.Errorf("expected default openid scopes, got %v", cfg.Scopes)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.DiscoveryAttempts != 3 {
		t.Errorf("expected 3 discovery attempts, got %d", cfg.DiscoveryAttempts)
	}
	if cfg.DiscoveryBackoff != 500*time.Millisecond {
		t.Errorf("expected 500ms backoff, got %v", cfg.DiscoveryBackoff)
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	valid := ProviderConfig{Name: "consumer", Issuer: GoogleIssuer, ClientID: "cid", RedirectURL: "https://app/cb"}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		cfg  ProviderConfig
	}{
		{"missing name", ProviderConfig{Issuer: GoogleIssuer, ClientID: "cid", RedirectURL: "https://app/cb"}},
		{"missing issuer", ProviderConfig{Name: "consumer", ClientID: "cid", RedirectURL: "https://app/cb"}},
		{"missing client id", ProviderConfig{Name: "consumer", Issuer: GoogleIssuer, RedirectURL: "https://app/cb"}},
		{"missing redirect", ProviderConfig{Name: "consumer", Issuer: GoogleIssuer, ClientID: "cid"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
