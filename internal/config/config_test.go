package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SPOTIFYDAILY_CONFIG", filepath.Join(home, "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "spotifydaily", "spotifydaily.db"), cfg.Database.Path)
	require.Equal(t, "https://api.spotify.com/v1", cfg.Spotify.APIURL)
	require.Equal(t, 15*time.Second, cfg.Spotify.Timeout)
	require.Equal(t, "medium_term", cfg.UI.DefaultTimeRange)
	require.Equal(t, 20, cfg.UI.DetailLimit)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "http://127.0.0.1:8888/callback", cfg.Spotify.RedirectURI())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[spotify]
client_id = "abc123"
timeout = "3s"

[ui]
detail_limit = 10
`), 0o600))
	t.Setenv("SPOTIFYDAILY_CONFIG", path)
	t.Setenv("SPOTIFYDAILY_UI_DEFAULT_TIME_RANGE", "long_term")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "abc123", cfg.Spotify.ClientID)
	require.Equal(t, 3*time.Second, cfg.Spotify.Timeout)
	require.Equal(t, 10, cfg.UI.DetailLimit)
	require.Equal(t, "long_term", cfg.UI.DefaultTimeRange)
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "nested", "config.toml")
	t.Setenv("SPOTIFYDAILY_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Spotify.ClientID = "client-1"
	cfg.UI.DetailLimit = 7
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "client-1", got.Spotify.ClientID)
	require.Equal(t, 7, got.UI.DetailLimit)
	require.Equal(t, cfg.Spotify.Timeout, got.Spotify.Timeout)
}

func TestResolveClientSecret(t *testing.T) {
	t.Setenv("MY_SECRET", "from-env")
	c := SpotifyConfig{ClientSecretEnv: "MY_SECRET", ClientSecret: "from-file"}
	require.Equal(t, "from-env", c.ResolveClientSecret())

	t.Setenv("MY_SECRET", "")
	require.Equal(t, "from-file", c.ResolveClientSecret())
}
