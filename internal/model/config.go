package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds connection settings for the remote project service.
type APIConfig struct {
	// BaseURL is the root URL of the project-storage service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request HTTP timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	// CachePath is the SQLite file mirroring project content.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`
}

// EditorConfig holds editing behavior settings.
type EditorConfig struct {
	// DebounceMs is the quiet period after the last edit before content
	// is written remotely, in milliseconds.
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Editor  EditorConfig  `mapstructure:"editor" yaml:"editor"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/kosztor/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "kosztor", "config.yaml")
}

// DefaultCachePath returns the default SQLite cache location,
// ~/.local/share/kosztor/cache.db.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".local", "share", "kosztor", "cache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "https://api.kosztor.app",
			TimeoutSec: 30,
		},
		Storage: StorageConfig{
			CachePath: DefaultCachePath(),
		},
		Editor: EditorConfig{
			DebounceMs: 600,
		},
		Display: DisplayConfig{
			Theme: "default",
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
	v.SetDefault("api.base_url", "https://api.kosztor.app")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("storage.cache_path", DefaultCachePath())
	v.SetDefault("editor.debounce_ms", 600)
	v.SetDefault("display.theme", "default")

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

	if cfg.Editor.DebounceMs <= 0 {
		cfg.Editor.DebounceMs = 600
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
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

	v.Set("api", cfg.API)
	v.Set("storage", cfg.Storage)
	v.Set("editor", cfg.Editor)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
