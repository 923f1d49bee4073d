package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Provider kinds supported for mailbox accounts.
const (
	ProviderGmail = "gmail"
	ProviderIMAP  = "imap"
)

// AccountConfig holds the configuration for a single mailbox account.
type AccountConfig struct {
	// Address is the account's email address. It doubles as the cache
	// and persistence key for the account's collection.
	Address string `mapstructure:"address" yaml:"address"`

	// Provider identifies the mailbox provider kind ("gmail" or "imap").
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Host and Port are the IMAP server coordinates. Unused for Gmail.
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// Enabled controls whether this account is actively synced.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollIntervalSec is how often (in seconds) to run a delta sync.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AIConfig holds settings for the language-model integration.
type AIConfig struct {
	// Models is the ordered list of model identifiers to attempt.
	Models []string `mapstructure:"models" yaml:"models"`

	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// SyncConfig holds scheduler-wide settings.
type SyncConfig struct {
	// FetchLimit caps how many messages a single delta fetch requests.
	FetchLimit int `mapstructure:"fetch_limit" yaml:"fetch_limit"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Accounts []AccountConfig `mapstructure:"accounts" yaml:"accounts"`
	AI       AIConfig        `mapstructure:"ai" yaml:"ai"`
	Sync     SyncConfig      `mapstructure:"sync" yaml:"sync"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailpilot/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailpilot", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Accounts: []AccountConfig{},
		AI: AIConfig{
			Models: []string{
				"claude-sonnet-4-20250514",
				"claude-3-5-haiku-20241022",
			},
			MaxTokens: 1024,
		},
		Sync: SyncConfig{
			FetchLimit: 50,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("ai.models", []string{
		"claude-sonnet-4-20250514",
		"claude-3-5-haiku-20241022",
	})
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("sync.fetch_limit", 50)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Apply defaults for each account entry.
	for i := range cfg.Accounts {
		if cfg.Accounts[i].Provider == "" {
			cfg.Accounts[i].Provider = ProviderGmail
		}
		if cfg.Accounts[i].PollIntervalSec == 0 {
			cfg.Accounts[i].PollIntervalSec = 120
		}
		if !cfg.Accounts[i].Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			key := fmt.Sprintf("accounts.%d.enabled", i)
			if !v.IsSet(key) {
				cfg.Accounts[i].Enabled = true
			}
		}
	}

	return cfg, nil
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

	v.Set("accounts", cfg.Accounts)
	v.Set("ai", cfg.AI)
	v.Set("sync", cfg.Sync)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
