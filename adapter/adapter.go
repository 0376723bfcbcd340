package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/skillsenselab/authbridge/errors"
	"github.com/skillsenselab/authbridge/identity"
	"github.com/skillsenselab/authbridge/logger"
	"github.com/skillsenselab/authbridge/oauth"
	"github.com/skillsenselab/authbridge/signal"
	"github.com/skillsenselab/authbridge/tokenstore"
)

// State is one adapter's published authentication state. Native carries
// the provider-native payload; normalization into a UnifiedUser happens
// in the session manager.
type State struct {
	Provider      identity.Provider
	Authenticated bool
	Loading       bool
	Native        identity.NativeUser
}

// Config configures an Adapter.
type Config struct {
	// Provider tags every state and storage key this adapter produces.
	Provider identity.Provider

	// SDK is the provider's OAuth/OIDC client.
	SDK oauth.SDK

	// Store persists token records across restarts.
	Store tokenstore.Store

	// CallbackAddr is the loopback listen address for interactive
	// sign-in redirects. Port 0 picks a free port.
	CallbackAddr string

	// FlowTimeout bounds an interactive sign-in flow.
	FlowTimeout time.Duration

	// ExpiryLeeway treats tokens expiring within this window as expired.
	ExpiryLeeway time.Duration

	// OpenURL launches the system browser for interactive sign-in.
	OpenURL func(url string) error

	// EnrichUserInfo fetches the userinfo endpoint after sign-in and
	// overlays its claims. Best effort: failures only log.
	EnrichUserInfo bool

	// HTTPClient is used for CallAPI requests.
	HTTPClient *http.Client
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.CallbackAddr == "" {
		c.CallbackAddr = "127.0.0.1:0"
	}
	if c.FlowTimeout == 0 {
		c.FlowTimeout = 3 * time.Minute
	}
	if c.ExpiryLeeway == 0 {
		c.ExpiryLeeway = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
}

// Adapter binds one provider's SDK, token storage and state signal
// together. All mutating operations publish the resulting state; the
// signal is the single source of truth for this provider.
type Adapter struct {
	cfg   Config
	sdk   oauth.SDK
	store tokenstore.Store
	log   *logger.Logger

	states *signal.Signal[State]

	mu      sync.Mutex
	pending *oauth.AuthRequest
	native  identity.NativeUser
}

// New creates an Adapter. No network or storage access happens here;
// call Replay to restore a persisted session.
func New(cfg Config) (*Adapter, error) {
	if !cfg.Provider.Valid() {
		return nil, errors.InvalidInput("provider", "unknown provider")
	}
	if cfg.SDK == nil {
		return nil, errors.MissingField("sdk")
	}
	if cfg.Store == nil {
		return nil, errors.MissingField("store")
	}
	cfg.ApplyDefaults()

	return &Adapter{
		cfg:    cfg,
		sdk:    cfg.SDK,
		store:  cfg.Store,
		log:    logger.Get("adapter." + string(cfg.Provider)),
		states: signal.New(State{Provider: cfg.Provider}),
	}, nil
}

// Provider returns the provider this adapter serves.
func (a *Adapter) Provider() identity.Provider { return a.cfg.Provider }

// States returns the adapter's state signal.
func (a *Adapter) States() *signal.Signal[State] { return a.states }

// CurrentNative returns the native payload of the signed-in user, or nil.
func (a *Adapter) CurrentNative() identity.NativeUser {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.native
}

// Replay restores a persisted session at startup. An expired record is
// renewed silently; when renewal fails the record is deleted and the
// adapter settles unauthenticated — never a half-restored session.
func (a *Adapter) Replay(ctx context.Context) error {
	a.setLoading(true)

	rec, err := a.store.Load(ctx, a.cfg.Provider)
	if err != nil {
		a.log.Warn("token store unreadable, starting signed out", logger.ErrorFields("replay", err))
		a.publish(false, nil)
		return err
	}
	if rec == nil {
		a.publish(false, nil)
		return nil
	}

	if rec.Expired(a.cfg.ExpiryLeeway) {
		rec, err = a.renew(ctx, rec)
		if err != nil {
			a.log.Info("silent renewal failed, discarding persisted session", logger.ErrorFields("replay", err))
			a.clearStored(ctx)
			a.publish(false, nil)
			return nil
		}
	}

	claims, err := claimsFromIDToken(rec.IDToken)
	if err != nil {
		a.log.Warn("persisted id token unparseable, discarding", logger.ErrorFields("replay", err))
		a.clearStored(ctx)
		a.publish(false, nil)
		return nil
	}

	native := nativeFromClaims(a.cfg.Provider, claims)
	a.publish(true, native)
	a.log.Info("session replayed", logger.Fields(logger.FieldProvider, a.cfg.Provider.String()))
	return nil
}

// BeginSignIn starts an authorization code flow and returns the URL the
// user must visit. The flow state is held until CompleteSignIn.
func (a *Adapter) BeginSignIn(redirectURI string) (string, error) {
	state, err := oauth.GenerateState()
	if err != nil {
		return "", errors.SignInFailed(string(a.cfg.Provider), "state generation failed").WithCause(err)
	}
	nonce, err := oauth.GenerateNonce()
	if err != nil {
		return "", errors.SignInFailed(string(a.cfg.Provider), "nonce generation failed").WithCause(err)
	}
	pkce, err := oauth.NewPKCE()
	if err != nil {
		return "", errors.SignInFailed(string(a.cfg.Provider), "pkce generation failed").WithCause(err)
	}

	req := &oauth.AuthRequest{State: state, Nonce: nonce, PKCE: pkce, RedirectURI: redirectURI}

	a.mu.Lock()
	a.pending = req
	a.mu.Unlock()

	a.setLoading(true)
	return a.sdk.AuthCodeURL(*req), nil
}

// CompleteSignIn finishes a flow started by BeginSignIn: it checks the
// state parameter, exchanges the code, verifies the ID token and
// persists the session.
func (a *Adapter) CompleteSignIn(ctx context.Context, code, state string) (identity.NativeUser, error) {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		a.setLoading(false)
		return nil, errors.SignInFailed(string(a.cfg.Provider), "no sign-in flow in progress")
	}
	if state != pending.State {
		a.setLoading(false)
		return nil, errors.StateMismatch(string(a.cfg.Provider))
	}

	tok, err := a.sdk.Exchange(ctx, code, *pending)
	if err != nil {
		a.setLoading(false)
		return nil, err
	}

	claims, err := a.sdk.VerifyIDToken(ctx, tok.IDToken, pending.Nonce)
	if err != nil {
		a.setLoading(false)
		return nil, errors.SignInFailed(string(a.cfg.Provider), "id token verification failed").WithCause(err)
	}

	if a.cfg.EnrichUserInfo {
		if info, uiErr := a.sdk.UserInfo(ctx, tok.AccessToken); uiErr != nil {
			a.log.Warn("userinfo enrichment failed, using id token claims only", logger.ErrorFields("userinfo", uiErr))
		} else {
			claims = overlayClaims(claims, info)
		}
	}

	if err := a.store.Save(ctx, a.cfg.Provider, recordFromResult(tok)); err != nil {
		a.log.Warn("session not persisted, sign-in continues in memory", logger.ErrorFields("save", err))
	}

	native := nativeFromClaims(a.cfg.Provider, claims)
	a.publish(true, native)
	a.log.Info("signed in", logger.Fields(logger.FieldProvider, a.cfg.Provider.String()))
	return native, nil
}

// SignOut ends the session. The remote call is best effort; local state
// and stored tokens are always cleared, and repeated calls are no-ops.
func (a *Adapter) SignOut(ctx context.Context) error {
	rec, loadErr := a.store.Load(ctx, a.cfg.Provider)
	if loadErr != nil {
		a.log.Warn("token store unreadable during sign-out", logger.ErrorFields("signout", loadErr))
	}

	var remoteErr error
	if rec != nil {
		remoteErr = a.sdk.EndSession(ctx, resultFromRecord(rec))
		if remoteErr != nil {
			a.log.Warn("remote sign-out failed, clearing local session anyway",
				logger.ErrorFields("signout", remoteErr))
		}
	}

	a.clearStored(ctx)
	a.publish(false, nil)
	a.log.Info("signed out", logger.Fields(logger.FieldProvider, a.cfg.Provider.String()))
	return remoteErr
}

// AccessToken returns a currently valid access token, renewing silently
// when the stored one is expired. Explicit scopes mint a token narrowed
// to that scope set; empty means the configured defaults. A failed
// renewal clears the session: callers never see a token from a
// half-dead session.
func (a *Adapter) AccessToken(ctx context.Context, scopes ...string) (string, error) {
	rec, err := a.store.Load(ctx, a.cfg.Provider)
	if err != nil {
		return "", errors.TokenUnavailable(string(a.cfg.Provider)).WithCause(err)
	}
	if rec == nil {
		return "", errors.TokenUnavailable(string(a.cfg.Provider))
	}

	if len(scopes) > 0 {
		return a.scopedToken(ctx, rec, scopes)
	}

	if !rec.Expired(a.cfg.ExpiryLeeway) {
		return rec.AccessToken, nil
	}

	rec, err = a.renew(ctx, rec)
	if err != nil {
		a.clearStored(ctx)
		a.publish(false, nil)
		return "", errors.TokenUnavailable(string(a.cfg.Provider)).WithCause(err)
	}
	return rec.AccessToken, nil
}

// scopedToken mints a down-scoped access token from the refresh token.
// The narrowed token never replaces the session record; only a rotated
// refresh token is written back.
func (a *Adapter) scopedToken(ctx context.Context, rec *tokenstore.Record, scopes []string) (string, error) {
	if rec.RefreshToken == "" {
		return "", errors.TokenUnavailable(string(a.cfg.Provider)).WithCause(errors.TokenExpired())
	}

	fresh, err := a.sdk.Refresh(ctx, rec.RefreshToken, scopes...)
	if err != nil {
		a.clearStored(ctx)
		a.publish(false, nil)
		return "", errors.TokenUnavailable(string(a.cfg.Provider)).WithCause(err)
	}

	if fresh.RefreshToken != "" && fresh.RefreshToken != rec.RefreshToken {
		rec.RefreshToken = fresh.RefreshToken
		if err := a.store.Save(ctx, a.cfg.Provider, rec); err != nil {
			a.log.Warn("rotated refresh token not persisted", logger.ErrorFields("renew", err))
		}
	}
	return fresh.AccessToken, nil
}

// CallAPI performs a GET against a provider API with a bearer token.
func (a *Adapter) CallAPI(ctx context.Context, endpoint string) ([]byte, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.InvalidInput("endpoint", err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError(string(a.cfg.Provider), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(string(a.cfg.Provider), err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.Unauthorized(fmt.Sprintf("%s API rejected the token", a.cfg.Provider))
	}
	if resp.StatusCode >= 400 {
		return nil, errors.ExternalServiceError(string(a.cfg.Provider),
			fmt.Errorf("%s returned %d", endpoint, resp.StatusCode))
	}
	return body, nil
}

// renew exchanges the refresh token for fresh tokens and persists them.
func (a *Adapter) renew(ctx context.Context, rec *tokenstore.Record) (*tokenstore.Record, error) {
	if rec.RefreshToken == "" {
		return nil, errors.TokenExpired()
	}
	fresh, err := a.sdk.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		return nil, err
	}
	next := recordFromResult(fresh)
	if next.IDToken == "" {
		// Renewal responses may omit the id token; keep the original
		// so replay can still mint the user.
		next.IDToken = rec.IDToken
	}
	if err := a.store.Save(ctx, a.cfg.Provider, next); err != nil {
		a.log.Warn("renewed tokens not persisted", logger.ErrorFields("renew", err))
	}
	return next, nil
}

func (a *Adapter) clearStored(ctx context.Context) {
	if err := a.store.Delete(ctx, a.cfg.Provider); err != nil {
		a.log.Warn("token record not deleted", logger.ErrorFields("clear", err))
	}
}

// publish records the native user and emits the settled state.
func (a *Adapter) publish(authenticated bool, native identity.NativeUser) {
	a.mu.Lock()
	a.native = native
	a.mu.Unlock()
	a.states.Publish(State{
		Provider:      a.cfg.Provider,
		Authenticated: authenticated,
		Loading:       false,
		Native:        native,
	})
}

// setLoading re-emits the current state with the loading flag set.
func (a *Adapter) setLoading(loading bool) {
	cur := a.states.Get()
	cur.Loading = loading
	a.states.Publish(cur)
}

// overlayClaims merges userinfo claims over id token claims. The id
// token wins on conflicts since it is the verified document.
func overlayClaims(idClaims, info map[string]any) map[string]any {
	merged := make(map[string]any, len(idClaims)+len(info))
	for k, v := range info {
		merged[k] = v
	}
	for k, v := range idClaims {
		merged[k] = v
	}
	return merged
}

func recordFromResult(t *oauth.TokenResult) *tokenstore.Record {
	return &tokenstore.Record{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		IDToken:      t.IDToken,
		TokenType:    t.TokenType,
		ExpiresAt:    t.ExpiresAt,
	}
}

func resultFromRecord(r *tokenstore.Record) *oauth.TokenResult {
	return &oauth.TokenResult{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		IDToken:      r.IDToken,
		TokenType:    r.TokenType,
		ExpiresAt:    r.ExpiresAt,
	}
}
