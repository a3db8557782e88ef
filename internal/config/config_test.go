package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"ENV", "BACKEND_URL", "EXPO_PUBLIC_BACKEND_URL", "POLL_INTERVAL", "RECENT_TRACKS_LIMIT", "SESSION_STORE"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.IsDevelopment())
	require.Equal(t, "http://localhost:8000", c.GetBackendURL())
	require.Equal(t, "https://api.spotify.com/v1", c.GetSpotifyAPIURL())
	require.Equal(t, 30*time.Second, c.GetPollInterval())
	require.Equal(t, 10, c.GetRecentTracksLimit())
	require.Equal(t, config.StoreFile, c.GetSessionStore())
	require.Equal(t, "moodring_auth", c.GetSessionKey())
}

func TestBackendURL(t *testing.T) {
	t.Run("expo variable is a fallback", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "")
		t.Setenv("EXPO_PUBLIC_BACKEND_URL", "http://10.0.2.2:8000/")
		require.Equal(t, "http://10.0.2.2:8000", config.New().GetBackendURL())
	})

	t.Run("explicit variable wins", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "https://api.moodring.test")
		t.Setenv("EXPO_PUBLIC_BACKEND_URL", "http://10.0.2.2:8000")
		require.Equal(t, "https://api.moodring.test", config.New().GetBackendURL())
	})
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("RECENT_TRACKS_LIMIT", "500")
	t.Setenv("SESSION_STORE", "sqlite")
	c := config.New()

	require.Equal(t, 30*time.Second, c.GetPollInterval())
	require.Equal(t, 10, c.GetRecentTracksLimit())
	require.Equal(t, config.StoreFile, c.GetSessionStore())
}

func TestLoad(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "")
	os.Unsetenv("POLL_INTERVAL")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("POLL_INTERVAL=45s\n"), 0o600))

	c, err := config.Load(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, c.GetPollInterval())
}
