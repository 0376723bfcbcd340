package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/skillsenselab/authbridge/errors"
	"github.com/skillsenselab/authbridge/logger"
	"github.com/skillsenselab/authbridge/resilience"
)

// Client is the concrete SDK implementation for a standards-compliant
// OIDC provider, built on issuer discovery.
type Client struct {
	cfg         ProviderConfig
	oauthConfig oauth2.Config
	verifier    *oidc.IDTokenVerifier
	provider    *oidc.Provider
	httpClient  *http.Client
	endSession  string
	revocation  string
	log         *logger.Logger
}

// NewClient discovers the issuer's endpoints and returns a ready SDK.
//
// Discovery is the readiness wait: it is retried with backoff up to the
// configured ceiling, and exhaustion returns PROVIDER_UNAVAILABLE so that
// sign-in/out calls fail fast instead of hanging on a provider that never
// comes up.
func NewClient(ctx context.Context, cfg ProviderConfig) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.InvalidInput("provider", err.Error())
	}

	log := logger.Get("oauth." + cfg.Name)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    cfg.DiscoveryAttempts,
		InitialBackoff: cfg.DiscoveryBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("issuer discovery failed, retrying", logger.Fields(
				"attempt", attempt,
				"backoff", backoff.String(),
				logger.FieldError, err.Error(),
			))
		},
	}

	provider, err := resilience.Retry(ctx, retryCfg, func() (*oidc.Provider, error) {
		return oidc.NewProvider(oidc.ClientContext(ctx, httpClient), cfg.Issuer)
	})
	if err != nil {
		return nil, errors.ProviderUnavailable(cfg.Name).WithCause(err)
	}

	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		log.Warn("discovery document has no parseable extra endpoints", logger.ErrorFields("discover", err))
	}

	c := &Client{
		cfg: cfg,
		oauthConfig: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.Scopes,
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		provider:   provider,
		httpClient: httpClient,
		endSession: extra.EndSessionEndpoint,
		revocation: extra.RevocationEndpoint,
		log:        log,
	}

	log.Info("provider discovered", logger.Fields(
		logger.FieldProvider, cfg.Name,
		"issuer", cfg.Issuer,
	))
	return c, nil
}

// AuthCodeURL builds the authorization URL with PKCE, nonce and offline
// access (to obtain a refresh token for silent renewal).
func (c *Client) AuthCodeURL(req AuthRequest) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if req.Nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam("nonce", req.Nonce))
	}
	if req.PKCE != nil {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", req.PKCE.CodeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", req.PKCE.CodeChallengeMethod),
		)
	}
	cfg := c.configFor(req)
	return cfg.AuthCodeURL(req.State, opts...)
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string, req AuthRequest) (*TokenResult, error) {
	var opts []oauth2.AuthCodeOption
	if req.PKCE != nil {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", req.PKCE.CodeVerifier))
	}

	cfg := c.configFor(req)
	token, err := cfg.Exchange(c.clientContext(ctx), code, opts...)
	if err != nil {
		return nil, errors.SignInFailed(c.cfg.Name, "token exchange failed").WithCause(err)
	}
	return c.toResult(token), nil
}

// Refresh performs a silent renewal using a refresh token. With explicit
// scopes the refresh grant carries a scope parameter so the provider can
// issue a narrower token.
func (c *Client) Refresh(ctx context.Context, refreshToken string, scopes ...string) (*TokenResult, error) {
	if len(scopes) > 0 {
		return c.refreshScoped(ctx, refreshToken, scopes)
	}
	src := c.oauthConfig.TokenSource(c.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, errors.TokenUnavailable(c.cfg.Name).WithCause(err)
	}
	result := c.toResult(token)
	if result.RefreshToken == "" {
		// Providers may omit the refresh token on renewal; keep the old one.
		result.RefreshToken = refreshToken
	}
	return result, nil
}

// refreshScoped issues the refresh_token grant directly so it can carry
// a scope parameter (RFC 6749 section 6); the oauth2 TokenSource always
// renews at the originally granted scope.
func (c *Client) refreshScoped(ctx context.Context, refreshToken string, scopes []string) (*TokenResult, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"scope":         {strings.Join(scopes, " ")},
		"client_id":     {c.cfg.ClientID},
	}
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthConfig.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.TokenUnavailable(c.cfg.Name).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.TokenUnavailable(c.cfg.Name).WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.TokenUnavailable(c.cfg.Name).WithCause(
			fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		RefreshToken string `json:"refresh_token"`
		IDToken      string `json:"id_token"`
		Scope        string `json:"scope"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.TokenUnavailable(c.cfg.Name).WithCause(err)
	}

	result := &TokenResult{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		IDToken:      body.IDToken,
		TokenType:    body.TokenType,
		ExpiresAt:    time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
		Scopes:       strings.Fields(body.Scope),
	}
	if result.RefreshToken == "" {
		result.RefreshToken = refreshToken
	}
	return result, nil
}

// VerifyIDToken verifies a raw ID token and returns its claims.
func (c *Client) VerifyIDToken(ctx context.Context, rawIDToken, nonce string) (map[string]any, error) {
	idToken, err := c.verifier.Verify(c.clientContext(ctx), rawIDToken)
	if err != nil {
		return nil, errors.InvalidToken().WithCause(err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return nil, errors.InvalidToken().WithDetail("reason", "nonce mismatch")
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.InvalidToken().WithCause(err)
	}
	return claims, nil
}

// UserInfo fetches the user's profile from the provider's userinfo endpoint.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	info, err := c.provider.UserInfo(c.clientContext(ctx), src)
	if err != nil {
		return nil, errors.ExternalServiceError(c.cfg.Name+" userinfo", err)
	}
	var claims map[string]any
	if err := info.Claims(&claims); err != nil {
		return nil, errors.ExternalServiceError(c.cfg.Name+" userinfo", err)
	}
	return claims, nil
}

// EndSession performs remote de-authentication. It prefers RFC 7009 token
// revocation, falling back to the RP-initiated logout endpoint. Providers
// advertising neither are a silent no-op.
func (c *Client) EndSession(ctx context.Context, tok *TokenResult) error {
	switch {
	case c.revocation != "":
		return c.revokeToken(ctx, tok)
	case c.endSession != "":
		return c.rpLogout(ctx, tok)
	default:
		c.log.Debug("provider advertises no logout endpoint, skipping remote sign-out")
		return nil
	}
}

func (c *Client) revokeToken(ctx context.Context, tok *TokenResult) error {
	form := url.Values{"client_id": {c.cfg.ClientID}}
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}
	if tok.RefreshToken != "" {
		form.Set("token", tok.RefreshToken)
		form.Set("token_type_hint", "refresh_token")
	} else {
		form.Set("token", tok.AccessToken)
		form.Set("token_type_hint", "access_token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revocation, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.RemoteSignOutFailure(c.cfg.Name, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.RemoteSignOutFailure(c.cfg.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.RemoteSignOutFailure(c.cfg.Name, fmt.Errorf("revocation endpoint returned %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) rpLogout(ctx context.Context, tok *TokenResult) error {
	logoutURL, err := url.Parse(c.endSession)
	if err != nil {
		return errors.RemoteSignOutFailure(c.cfg.Name, err)
	}
	q := logoutURL.Query()
	q.Set("client_id", c.cfg.ClientID)
	if tok.IDToken != "" {
		q.Set("id_token_hint", tok.IDToken)
	}
	logoutURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoutURL.String(), nil)
	if err != nil {
		return errors.RemoteSignOutFailure(c.cfg.Name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.RemoteSignOutFailure(c.cfg.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return errors.RemoteSignOutFailure(c.cfg.Name, fmt.Errorf("end session endpoint returned %d", resp.StatusCode))
	}
	return nil
}

// configFor returns the oauth2 config with any per-flow redirect override.
func (c *Client) configFor(req AuthRequest) oauth2.Config {
	cfg := c.oauthConfig
	if req.RedirectURI != "" {
		cfg.RedirectURL = req.RedirectURI
	}
	return cfg
}

// clientContext binds the timeout-bearing HTTP client into ctx for the
// oauth2 and oidc libraries.
func (c *Client) clientContext(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, c.httpClient)
}

func (c *Client) toResult(token *oauth2.Token) *TokenResult {
	result := &TokenResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}
	if raw, ok := token.Extra("id_token").(string); ok {
		result.IDToken = raw
	}
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		result.Scopes = strings.Fields(scope)
	}
	return result
}

// compile-time interface check
var _ SDK = (*Client)(nil)
