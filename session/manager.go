package session

import (
	"context"
	"time"

	"github.com/skillsenselab/authbridge/adapter"
	"github.com/skillsenselab/authbridge/errors"
	"github.com/skillsenselab/authbridge/identity"
	"github.com/skillsenselab/authbridge/logger"
	"github.com/skillsenselab/authbridge/observability"
	"github.com/skillsenselab/authbridge/signal"
)

// ProviderAdapter is the provider surface the manager arbitrates over.
// *adapter.Adapter implements it; tests substitute fakes.
type ProviderAdapter interface {
	Provider() identity.Provider
	States() *signal.Signal[adapter.State]
	Replay(ctx context.Context) error
	SignInInteractive(ctx context.Context) (identity.NativeUser, error)
	SignOut(ctx context.Context) error
	AccessToken(ctx context.Context, scopes ...string) (string, error)
	CallAPI(ctx context.Context, endpoint string) ([]byte, error)
}

var _ ProviderAdapter = (*adapter.Adapter)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics attaches metric instruments to the manager.
func WithMetrics(m *observability.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// Manager folds every adapter's state into one SessionState. All
// arbitration state is owned by the Run loop goroutine; public methods
// read the published signal and delegate to adapters, so any interleaving
// of provider events converges to a consistent session.
type Manager struct {
	adapters map[identity.Provider]ProviderAdapter
	log      *logger.Logger
	metrics  *observability.Metrics
	states   *signal.Signal[SessionState]

	// Owned by the Run loop.
	active  identity.Provider
	user    *identity.UnifiedUser
	loading map[identity.Provider]bool
}

// NewManager creates a Manager over the given adapters. Each provider
// may appear at most once.
func NewManager(adapters []ProviderAdapter, opts ...Option) (*Manager, error) {
	if len(adapters) == 0 {
		return nil, errors.MissingField("adapters")
	}

	byProvider := make(map[identity.Provider]ProviderAdapter, len(adapters))
	for _, a := range adapters {
		p := a.Provider()
		if !p.Valid() {
			return nil, errors.InvalidInput("provider", "unknown provider")
		}
		if _, dup := byProvider[p]; dup {
			return nil, errors.InvalidInput("provider", "duplicate adapter for "+p.String())
		}
		byProvider[p] = a
	}

	m := &Manager{
		adapters: byProvider,
		log:      logger.Get("session"),
		states:   signal.New(SessionState{ActiveProvider: identity.ProviderNone}),
		loading:  make(map[identity.Provider]bool, len(adapters)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// States returns the session state signal.
func (m *Manager) States() *signal.Signal[SessionState] { return m.states }

// Current returns the latest published session state.
func (m *Manager) Current() SessionState { return m.states.Get() }

// IsAuthenticated reports whether any provider session is established.
func (m *Manager) IsAuthenticated() bool { return m.states.Get().Authenticated }

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *identity.UnifiedUser { return m.states.Get().User }

// ActiveProvider returns the provider owning the session, or ProviderNone.
func (m *Manager) ActiveProvider() identity.Provider { return m.states.Get().ActiveProvider }

// Run starts the arbitration loop, replays persisted sessions and
// blocks until ctx is cancelled. Adapter signals are subscribed before
// replay starts so no event is missed.
func (m *Manager) Run(ctx context.Context) error {
	events := make(chan adapter.State)
	for _, a := range m.adapters {
		sub := a.States().Subscribe(ctx)
		go func() {
			for ev := range sub {
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, a := range m.adapters {
		go func() {
			if err := a.Replay(ctx); err != nil {
				m.log.Warn("session replay failed", logger.Fields(
					logger.FieldProvider, a.Provider().String(),
					logger.FieldError, err.Error(),
				))
			}
		}()
	}

	m.log.Info("session manager running", logger.Fields("providers", len(m.adapters)))
	for {
		select {
		case ev := <-events:
			m.handle(ctx, ev)
		case <-ctx.Done():
			m.log.Info("session manager stopped")
			return ctx.Err()
		}
	}
}

// handle folds one adapter event into the session. Only the Run loop
// calls this, so reads and writes of active/user/loading are ordered.
func (m *Manager) handle(ctx context.Context, ev adapter.State) {
	if ev.Authenticated {
		if m.active != identity.ProviderNone && m.active != ev.Provider {
			m.log.Info("discarding authenticated event from non-active provider", logger.Fields(
				logger.FieldProvider, ev.Provider.String(),
				"active", m.active.String(),
			))
			m.metrics.RecordStaleEvent(ctx, ev.Provider.String())
			return
		}

		user, err := identity.Normalize(ev.Provider, ev.Native)
		if err != nil {
			// Never surface a partial user: a payload that does not
			// normalize leaves this provider unauthenticated.
			m.log.Error("rejecting provider payload", logger.Fields(
				logger.FieldProvider, ev.Provider.String(),
				logger.FieldError, err.Error(),
			))
			if m.active == ev.Provider {
				m.deactivate(ctx)
			}
		} else {
			if m.active == identity.ProviderNone {
				m.metrics.RecordSessionChange(ctx, ev.Provider.String(), 1)
			}
			m.active = ev.Provider
			m.user = user
		}
	} else if m.active == ev.Provider {
		m.deactivate(ctx)
	}

	m.loading[ev.Provider] = ev.Loading
	m.publish()
}

func (m *Manager) deactivate(ctx context.Context) {
	m.metrics.RecordSessionChange(ctx, m.active.String(), -1)
	m.active = identity.ProviderNone
	m.user = nil
}

func (m *Manager) publish() {
	// With an active provider only its own loading surfaces; a
	// non-active provider's background activity stays invisible.
	var loading bool
	if m.active != identity.ProviderNone {
		loading = m.loading[m.active]
	} else {
		for _, l := range m.loading {
			loading = loading || l
		}
	}
	m.states.Publish(SessionState{
		Authenticated:  m.active != identity.ProviderNone,
		Loading:        loading,
		User:           m.user,
		ActiveProvider: m.active,
	})
}

// SignIn runs the provider's interactive flow and returns the
// normalized user. While another provider owns the session the call is
// rejected: switching providers requires signing out first.
func (m *Manager) SignIn(ctx context.Context, p identity.Provider) (*identity.UnifiedUser, error) {
	a, ok := m.adapters[p]
	if !ok {
		return nil, errors.InvalidInput("provider", "no adapter for "+p.String())
	}
	if cur := m.ActiveProvider(); cur != identity.ProviderNone && cur != p {
		m.log.Warn("sign-in rejected while another provider is active", logger.Fields(
			logger.FieldProvider, p.String(),
			"active", cur.String(),
		))
		return nil, errors.SignInFailed(p.String(), "another provider session is active")
	}

	ctx, span := observability.StartSpan(ctx, "auth.signin")
	defer span.End()

	start := time.Now()
	native, err := a.SignInInteractive(ctx)
	if err != nil {
		span.RecordError(err)
		m.metrics.RecordSignIn(ctx, p.String(), "failed", time.Since(start))
		return nil, err
	}
	m.metrics.RecordSignIn(ctx, p.String(), "ok", time.Since(start))

	return identity.Normalize(p, native)
}

// SignInWithEnterprise signs in against the enterprise directory.
func (m *Manager) SignInWithEnterprise(ctx context.Context) (*identity.UnifiedUser, error) {
	return m.SignIn(ctx, identity.ProviderEnterprise)
}

// SignInWithConsumer signs in against the consumer provider.
func (m *Manager) SignInWithConsumer(ctx context.Context) (*identity.UnifiedUser, error) {
	return m.SignIn(ctx, identity.ProviderConsumer)
}

// SignOut ends the active session. The remote call is best effort and
// its failure is returned after local state is cleared; with no active
// session the call is a no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	cur := m.ActiveProvider()
	if cur == identity.ProviderNone {
		m.log.Debug("sign-out with no active session")
		return nil
	}

	ctx, span := observability.StartSpan(ctx, "auth.signout")
	defer span.End()

	err := m.adapters[cur].SignOut(ctx)

	// The adapter publishes its own deactivation on the happy path; fold
	// one here regardless, so the session clears even when an adapter
	// errors before it gets to publish.
	m.adapters[cur].States().Publish(adapter.State{Provider: cur})

	if err != nil {
		span.RecordError(err)
		m.metrics.RecordSignOut(ctx, cur.String(), "remote_failed")
		return err
	}
	m.metrics.RecordSignOut(ctx, cur.String(), "ok")
	return nil
}

// AccessToken returns a valid access token for the active provider.
// Explicit scopes request a token narrowed to that scope set; empty
// means the provider's configured defaults.
func (m *Manager) AccessToken(ctx context.Context, scopes ...string) (string, error) {
	cur := m.ActiveProvider()
	if cur == identity.ProviderNone {
		return "", errors.TokenUnavailable(identity.ProviderNone.String())
	}
	ctx, span := observability.StartSpan(ctx, "auth.access_token")
	defer span.End()

	token, err := m.adapters[cur].AccessToken(ctx, scopes...)
	if err != nil {
		span.RecordError(err)
	}
	return token, err
}

// CallAPI performs an authenticated GET against the active provider.
func (m *Manager) CallAPI(ctx context.Context, endpoint string) ([]byte, error) {
	cur := m.ActiveProvider()
	if cur == identity.ProviderNone {
		return nil, errors.TokenUnavailable(identity.ProviderNone.String())
	}
	return m.adapters[cur].CallAPI(ctx, endpoint)
}

// Adapter returns the adapter for a provider, or nil.
func (m *Manager) Adapter(p identity.Provider) ProviderAdapter {
	return m.adapters[p]
}
