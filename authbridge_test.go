package authbridge

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillsenselab/authbridge/config"
	"github.com/skillsenselab/authbridge/identity"
	"github.com/skillsenselab/authbridge/oauth"
	"github.com/skillsenselab/authbridge/session"
	"github.com/skillsenselab/authbridge/tokenstore"
)

// fakeSDK implements oauth.SDK without a live issuer. AuthCodeURL sends
// the "browser" straight back to the flow's loopback callback.
type fakeSDK struct {
	claims  map[string]any
	idToken string
}

func (f *fakeSDK) AuthCodeURL(req oauth.AuthRequest) string {
	return req.RedirectURI + "?code=test-code&state=" + req.State
}

func (f *fakeSDK) Exchange(context.Context, string, oauth.AuthRequest) (*oauth.TokenResult, error) {
	return &oauth.TokenResult{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		IDToken:      f.idToken,
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeSDK) Refresh(context.Context, string, ...string) (*oauth.TokenResult, error) {
	return &oauth.TokenResult{AccessToken: "at-renewed", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeSDK) VerifyIDToken(context.Context, string, string) (map[string]any, error) {
	return f.claims, nil
}

func (f *fakeSDK) UserInfo(context.Context, string) (map[string]any, error) {
	return map[string]any{}, nil
}

func (f *fakeSDK) EndSession(context.Context, *oauth.TokenResult) error { return nil }

var _ oauth.SDK = (*fakeSDK)(nil)

func testSDK(t *testing.T, sub, email string) *fakeSDK {
	t.Helper()
	claims := map[string]any{"sub": sub, "email": email, "name": "Dana"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return &fakeSDK{claims: claims, idToken: tok}
}

func baseConfig(storePath string) *config.Config {
	cfg := &config.Config{}
	cfg.Enterprise.Issuer = "https://login.example.com/realms/corp"
	cfg.Enterprise.ClientID = "desktop"
	cfg.Enterprise.RedirectURL = "http://127.0.0.1:0/callback"
	cfg.Consumer.ClientID = "google-client"
	cfg.Consumer.RedirectURL = "http://127.0.0.1:0/callback"
	cfg.TokenStore.Path = storePath
	cfg.Logging.Level = "error"
	return cfg
}

// browserStub plays the user: it follows the auth URL, which the fake
// SDK points at the loopback callback.
func browserStub(url string) error {
	go func() {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
		}
	}()
	return nil
}

func waitFor(t *testing.T, m *session.Manager, desc string, cond func(session.SessionState) bool) session.SessionState {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := m.States().Subscribe(ctx)
	deadline := time.After(3 * time.Second)
	for {
		select {
		case st := <-sub:
			if cond(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s; last %+v", desc, m.Current())
		}
	}
}

func TestNew_MemoryStoreByDefault(t *testing.T) {
	c, err := New(context.Background(), baseConfig(""),
		WithEnterpriseSDK(testSDK(t, "u-1", "d@corp.example")),
		WithConsumerSDK(testSDK(t, "g-1", "d@gmail.example")),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c.Store.(*tokenstore.MemoryStore); !ok {
		t.Errorf("expected memory store, got %T", c.Store)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := baseConfig("")
	cfg.Enterprise.ClientID = ""
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCoordinator_SignInSignOut(t *testing.T) {
	c, err := New(context.Background(), baseConfig(""),
		WithEnterpriseSDK(testSDK(t, "u-1", "dana@corp.example")),
		WithConsumerSDK(testSDK(t, "g-1", "dana@gmail.example")),
		WithOpenURL(browserStub),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	user, err := c.Manager.SignInWithEnterprise(ctx)
	if err != nil {
		t.Fatalf("SignInWithEnterprise failed: %v", err)
	}
	if user.Email != "dana@corp.example" || user.Provider != identity.ProviderEnterprise {
		t.Errorf("user = %+v", user)
	}

	st := waitFor(t, c.Manager, "authenticated", func(s session.SessionState) bool { return s.Authenticated })
	if st.ActiveProvider != identity.ProviderEnterprise {
		t.Errorf("active = %v", st.ActiveProvider)
	}

	if err := c.Manager.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	waitFor(t, c.Manager, "signed out", func(s session.SessionState) bool { return !s.Authenticated })
}

func TestCoordinator_ReplayAcrossRestart(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "tokens.json")
	cfg := baseConfig(storePath)
	cfg.TokenStore.EncryptionKey = "unit-test-key"

	first, err := New(context.Background(), cfg,
		WithEnterpriseSDK(testSDK(t, "u-1", "dana@corp.example")),
		WithConsumerSDK(testSDK(t, "g-1", "dana@gmail.example")),
		WithOpenURL(browserStub),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx1, cancel1 := context.WithCancel(context.Background())
	go first.Run(ctx1)
	if _, err := first.Manager.SignInWithEnterprise(ctx1); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	waitFor(t, first.Manager, "authenticated", func(s session.SessionState) bool { return s.Authenticated })
	cancel1()

	// A fresh coordinator over the same store replays the session
	// without any interactive flow.
	second, err := New(context.Background(), baseConfigClone(cfg),
		WithEnterpriseSDK(testSDK(t, "u-1", "dana@corp.example")),
		WithConsumerSDK(testSDK(t, "g-1", "dana@gmail.example")),
	)
	if err != nil {
		t.Fatalf("New (restart) failed: %v", err)
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	go second.Run(ctx2)

	st := waitFor(t, second.Manager, "replayed", func(s session.SessionState) bool { return s.Authenticated })
	if st.User.Email != "dana@corp.example" {
		t.Errorf("replayed user = %+v", st.User)
	}
	if st.ActiveProvider != identity.ProviderEnterprise {
		t.Errorf("replayed provider = %v", st.ActiveProvider)
	}
}

func baseConfigClone(cfg *config.Config) *config.Config {
	clone := *cfg
	return &clone
}
