package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g.
// AUTHBRIDGE_ENTERPRISE_CLIENT_SECRET.
const envPrefix = "AUTHBRIDGE"

// FileSystem abstracts file operations so the loader is testable.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration, applies defaults and validates the result.
// Sources, lowest precedence first: config file, .env file, process
// environment. When no config file is given, standard locations are
// searched; a missing file is not an error since every field can come
// from the environment.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findConfigFile(lc.FileSystem)
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findEnvFile(lc.FileSystem)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKnownKeys(v)

	if lc.ConfigFile != "" && lc.FileSystem.Exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", lc.ConfigFile, err)
		}
	}

	if lc.EnvFile != "" && lc.FileSystem.Exists(lc.EnvFile) {
		if err := lc.FileSystem.LoadEnv(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", lc.EnvFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile searches standard locations for authbridge.yml.
func findConfigFile(fs FileSystem) string {
	searchPaths := []string{
		"./authbridge.yml",
		"./config/authbridge.yml",
		"./config.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home+"/.config/authbridge/authbridge.yml")
	}
	for _, path := range searchPaths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches standard locations for a .env file.
func findEnvFile(fs FileSystem) string {
	for _, path := range []string{".env.authbridge", ".env"} {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// bindKnownKeys binds every config key so AutomaticEnv sees variables
// for keys absent from the config file. Viper only consults the
// environment for keys it already knows about.
func bindKnownKeys(v *viper.Viper) {
	keys := []string{
		"name", "environment", "debug",
		"logging.level", "logging.format", "logging.output",
		"logging.no_color", "logging.timestamp", "logging.caller",
		"token_store.path", "token_store.encryption_key", "token_store.algorithm",
		"callback.addr", "callback.flow_timeout",
	}
	for _, section := range []string{"enterprise", "consumer"} {
		for _, field := range []string{
			"name", "issuer", "client_id", "client_secret", "redirect_url",
			"scopes", "http_timeout", "discovery_attempts", "discovery_backoff",
		} {
			keys = append(keys, section+"."+field)
		}
	}
	for _, key := range keys {
		// BindEnv with one argument derives AUTHBRIDGE_<KEY> itself.
		_ = v.BindEnv(key)
	}
}
