// Package authbridge coordinates sign-in across two OAuth2/OIDC
// identity providers — an enterprise directory and a consumer provider —
// and exposes one unified, race-free session state to client
// applications. Assemble a Coordinator from config, start it with Run,
// and observe session changes through its state signal.
package authbridge

import (
	"context"

	"github.com/skillsenselab/authbridge/adapter"
	"github.com/skillsenselab/authbridge/config"
	"github.com/skillsenselab/authbridge/encryption"
	"github.com/skillsenselab/authbridge/identity"
	"github.com/skillsenselab/authbridge/logger"
	"github.com/skillsenselab/authbridge/oauth"
	"github.com/skillsenselab/authbridge/observability"
	"github.com/skillsenselab/authbridge/session"
	"github.com/skillsenselab/authbridge/tokenstore"
	"github.com/skillsenselab/authbridge/version"
)

// Coordinator is the assembled session coordinator: both provider
// adapters, the token store and the arbitrating manager.
type Coordinator struct {
	Manager *session.Manager
	Store   tokenstore.Store

	cfg *config.Config
	log *logger.Logger
}

// Option configures coordinator assembly.
type Option func(*assembly)

type assembly struct {
	enterpriseSDK oauth.SDK
	consumerSDK   oauth.SDK
	metrics       *observability.Metrics
	openURL       func(url string) error
}

// WithEnterpriseSDK injects a prebuilt enterprise SDK, skipping issuer
// discovery for that provider.
func WithEnterpriseSDK(sdk oauth.SDK) Option {
	return func(a *assembly) { a.enterpriseSDK = sdk }
}

// WithConsumerSDK injects a prebuilt consumer SDK, skipping issuer
// discovery for that provider.
func WithConsumerSDK(sdk oauth.SDK) Option {
	return func(a *assembly) { a.consumerSDK = sdk }
}

// WithMetrics attaches metric instruments to the session manager.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *assembly) { a.metrics = m }
}

// WithOpenURL overrides how authorization URLs reach the user's browser.
func WithOpenURL(open func(url string) error) Option {
	return func(a *assembly) { a.openURL = open }
}

// New assembles a Coordinator from config: token store (with optional
// encryption at rest), one SDK per provider (issuer discovery, bounded
// retries) and the session manager. Call Run to start arbitration and
// replay any persisted session.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Coordinator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)

	var asm assembly
	for _, opt := range opts {
		opt(&asm)
	}
	if asm.openURL == nil {
		asm.openURL = openBrowser
	}

	store, err := buildStore(cfg.TokenStore)
	if err != nil {
		return nil, err
	}

	enterpriseSDK := asm.enterpriseSDK
	if enterpriseSDK == nil {
		if enterpriseSDK, err = oauth.NewClient(ctx, cfg.Enterprise); err != nil {
			return nil, err
		}
	}
	consumerSDK := asm.consumerSDK
	if consumerSDK == nil {
		if consumerSDK, err = oauth.NewClient(ctx, cfg.Consumer); err != nil {
			return nil, err
		}
	}

	enterprise, err := adapter.New(adapter.Config{
		Provider:     identity.ProviderEnterprise,
		SDK:          enterpriseSDK,
		Store:        store,
		CallbackAddr: cfg.Callback.Addr,
		FlowTimeout:  cfg.Callback.FlowTimeout,
		OpenURL:      asm.openURL,
	})
	if err != nil {
		return nil, err
	}

	consumer, err := adapter.New(adapter.Config{
		Provider:       identity.ProviderConsumer,
		SDK:            consumerSDK,
		Store:          store,
		CallbackAddr:   cfg.Callback.Addr,
		FlowTimeout:    cfg.Callback.FlowTimeout,
		OpenURL:        asm.openURL,
		EnrichUserInfo: true,
	})
	if err != nil {
		return nil, err
	}

	manager, err := session.NewManager(
		[]session.ProviderAdapter{enterprise, consumer},
		session.WithMetrics(asm.metrics),
	)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		Manager: manager,
		Store:   store,
		cfg:     cfg,
		log:     logger.Get("authbridge"),
	}, nil
}

// Run starts session arbitration and replays persisted sessions. It
// blocks until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("coordinator starting", logger.Fields(
		"name", c.cfg.Name,
		"version", version.Short(),
	))
	return c.Manager.Run(ctx)
}

// buildStore selects the token store from config: a file store when a
// path is set (sealed at rest when a key is given), otherwise in-memory.
func buildStore(cfg config.StoreConfig) (tokenstore.Store, error) {
	if cfg.Path == "" {
		return tokenstore.NewMemoryStore(), nil
	}
	if cfg.EncryptionKey == "" {
		return tokenstore.NewFileStore(cfg.Path)
	}
	enc, err := encryption.New(cfg.EncryptionKey,
		encryption.WithAlgorithm(encryption.Algorithm(cfg.Algorithm)))
	if err != nil {
		return nil, err
	}
	return tokenstore.NewFileStore(cfg.Path, tokenstore.WithEncryptor(enc))
}
