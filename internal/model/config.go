package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Session backends accepted by SessionConfig.Backend.
const (
	SessionBackendKeyring = "keyring"
	SessionBackendMemory  = "memory"
)

// APIConfig holds the settings of the shared HTTP client.
type APIConfig struct {
	// BaseURL is the root address of the mail REST API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Timeout bounds every request. Slow backends surface as timeout errors.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SessionConfig controls where the raw bearer token is persisted.
type SessionConfig struct {
	// Backend is "keyring" (survives restarts) or "memory" (process-scoped).
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Key is the slot name the token is stored under.
	Key string `mapstructure:"key" yaml:"key"`

	// KeyringDir is the directory used by the file keyring fallback.
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`
}

// LogConfig holds logging preferences. The terminal belongs to the UI, so
// logs go to a file.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/mailterm, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailterm")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailterm/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: time.Second,
		},
		Session: SessionConfig{
			Backend:    SessionBackendKeyring,
			Key:        "auth_token",
			KeyringDir: filepath.Join(configDir(), "credentials"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(configDir(), "mailterm.log"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := defaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("session.backend", def.Session.Backend)
	v.SetDefault("session.key", def.Session.Key)
	v.SetDefault("session.keyring_dir", def.Session.KeyringDir)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
}

// RegisterFlags declares the command line flags that override config keys.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", DefaultConfigPath(), "path to the YAML config file")
	fs.String("api-url", "", "base URL of the mail API")
	fs.Duration("timeout", 0, "request timeout")
	fs.Bool("ephemeral", false, "keep the session in memory only")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "log file path")
	fs.Bool("write-config", false, "write the effective config to --config and exit")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with MAILTERM_ override file values, and
// MAIL_API_BASE_URL is honored for the API address. A missing file yields
// the defaults. fs may be nil; when given, set flags win over everything.
func LoadConfig(path string, fs *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.BindEnv("api.base_url", "MAILTERM_API_BASE_URL", "MAIL_API_BASE_URL"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if fs != nil {
		if eph, err := fs.GetBool("ephemeral"); err == nil && eph {
			cfg.Session.Backend = SessionBackendMemory
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindFlags maps flags onto config keys. Only flags the user actually set
// take effect, so unset flags never mask file or env values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"api.base_url": "api-url",
		"api.timeout":  "timeout",
		"log.level":    "log-level",
		"log.file":     "log-file",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate reports configuration values the client cannot run with.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.Session.Backend {
	case SessionBackendKeyring, SessionBackendMemory:
	default:
		return fmt.Errorf("session.backend must be %q or %q, got %q",
			SessionBackendKeyring, SessionBackendMemory, c.Session.Backend)
	}
	if c.Session.Key == "" {
		return fmt.Errorf("session.key must not be empty")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("session.backend", cfg.Session.Backend)
	v.Set("session.key", cfg.Session.Key)
	v.Set("session.keyring_dir", cfg.Session.KeyringDir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
