package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Spotify  SpotifyConfig
	UI       UIConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SpotifyConfig holds API and OAuth settings.
type SpotifyConfig struct {
	APIURL          string `mapstructure:"api_url"`
	AccountsURL     string `mapstructure:"accounts_url"`
	ClientID        string `mapstructure:"client_id"`
	ClientSecretEnv string `mapstructure:"client_secret_env"`
	ClientSecret    string `mapstructure:"client_secret"`
	RedirectAddr    string `mapstructure:"redirect_addr"`
	Timeout         time.Duration
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DefaultTimeRange string `mapstructure:"default_time_range"`
	DetailLimit      int    `mapstructure:"detail_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix SPOTIFYDAILY_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SPOTIFYDAILY_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "spotifydaily"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SPOTIFYDAILY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "spotifydaily", "spotifydaily.db"))
	v.SetDefault("spotify.api_url", "https://api.spotify.com/v1")
	v.SetDefault("spotify.accounts_url", "https://accounts.spotify.com")
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret_env", "SPOTIFY_CLIENT_SECRET")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.redirect_addr", "127.0.0.1:8888")
	v.SetDefault("spotify.timeout", 15*time.Second)
	v.SetDefault("ui.default_time_range", "medium_term")
	v.SetDefault("ui.detail_limit", 20)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "spotifydaily", "spotifydaily.log"))
	v.SetDefault("log.level", "info")
}

// ResolveClientSecret returns the OAuth client secret, preferring the environment.
func (c SpotifyConfig) ResolveClientSecret() string {
	if env := strings.TrimSpace(c.ClientSecretEnv); env != "" {
		if s := os.Getenv(env); s != "" {
			return s
		}
	}
	return strings.TrimSpace(c.ClientSecret)
}

// RedirectURI is the OAuth callback served during login.
func (c SpotifyConfig) RedirectURI() string {
	return "http://" + c.RedirectAddr + "/callback"
}

// Save writes the provided config to disk, creating the config directory if needed.
// The client secret is stored in plain text; prefer the env var.
func Save(cfg Config) error {
	path := os.Getenv("SPOTIFYDAILY_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "spotifydaily", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("spotify.api_url", cfg.Spotify.APIURL)
	v.Set("spotify.accounts_url", cfg.Spotify.AccountsURL)
	v.Set("spotify.client_id", cfg.Spotify.ClientID)
	v.Set("spotify.client_secret_env", cfg.Spotify.ClientSecretEnv)
	v.Set("spotify.client_secret", cfg.Spotify.ClientSecret)
	v.Set("spotify.redirect_addr", cfg.Spotify.RedirectAddr)
	v.Set("spotify.timeout", cfg.Spotify.Timeout.String())
	v.Set("ui.default_time_range", cfg.UI.DefaultTimeRange)
	v.Set("ui.detail_limit", cfg.UI.DetailLimit)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
