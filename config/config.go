package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/authbridge/logger"
	"github.com/skillsenselab/authbridge/oauth"
	"github.com/skillsenselab/authbridge/validation"
)

// StoreConfig configures the persisted token store.
type StoreConfig struct {
	// Path is the token file location. Empty selects the in-memory store.
	Path string `yaml:"path" mapstructure:"path"`

	// EncryptionKey, when set, seals the token file at rest.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`

	// Algorithm selects the cipher: aes-256-gcm or chacha20-poly1305.
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm" validate:"omitempty,oneof=aes-256-gcm chacha20-poly1305"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = "aes-256-gcm"
	}
}

// CallbackConfig configures the loopback redirect listener used by the
// interactive sign-in flow.
type CallbackConfig struct {
	// Addr is the listen address for the redirect endpoint.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`

	// FlowTimeout bounds how long an interactive flow may stay open.
	FlowTimeout time.Duration `yaml:"flow_timeout" mapstructure:"flow_timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *CallbackConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:0"
	}
	if c.FlowTimeout == 0 {
		c.FlowTimeout = 3 * time.Minute
	}
}

// Config is the root authbridge configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging    logger.Config        `yaml:"logging" mapstructure:"logging"`
	Enterprise oauth.ProviderConfig `yaml:"enterprise" mapstructure:"enterprise"`
	Consumer   oauth.ProviderConfig `yaml:"consumer" mapstructure:"consumer"`
	TokenStore StoreConfig          `yaml:"token_store" mapstructure:"token_store"`
	Callback   CallbackConfig       `yaml:"callback" mapstructure:"callback"`
}

// ApplyDefaults applies defaults to the root config and every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "authbridge"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Enterprise.Name == "" {
		c.Enterprise.Name = "enterprise"
	}
	if c.Consumer.Name == "" {
		c.Consumer.Name = "consumer"
	}
	if c.Consumer.Issuer == "" {
		c.Consumer.Issuer = oauth.GoogleIssuer
	}
	c.Enterprise.ApplyDefaults()
	c.Consumer.ApplyDefaults()
	c.TokenStore.ApplyDefaults()
	c.Callback.ApplyDefaults()
}

// Validate checks struct tags and every section's own rules.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Enterprise.Validate(); err != nil {
		return fmt.Errorf("config.enterprise: %w", err)
	}
	if err := c.Consumer.Validate(); err != nil {
		return fmt.Errorf("config.consumer: %w", err)
	}
	return nil
}
