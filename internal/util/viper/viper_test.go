package viper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewViperEnvKeyReplacer(t *testing.T) {
	t.Setenv("STORECTL_LOG_LEVEL", "debug")
	t.Setenv("STORECTL_STOREFRONT_BASE_URL", "https://api.example.test")

	v := NewViper("nonexistent.yaml")

	require.Equal(t, "debug", v.GetString("log-level"))
	require.Equal(t, "https://api.example.test", v.GetString("storefront.base-url"))
}

func TestNewViperEnvKeyReplacerProfileWithDashes(t *testing.T) {
	t.Setenv("STORECTL_TEAM_A_STOREFRONT_TOKEN", "token-123")

	v := NewViper("nonexistent.yaml")
	v.Set("team-a", map[string]any{})

	profile := v.Sub("team-a")
	require.NotNil(t, profile)
	require.Equal(t, "token-123", profile.GetString("storefront.token"))
}

func TestInitializeDefaultViperWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	v, err := InitializeDefaultViper(map[string]any{
		"default": map[string]any{"output": "json"},
	}, path)
	require.NoError(t, err)
	require.Equal(t, "json", v.GetString("default.output"))

	reloaded, err := NewViperE(path)
	require.NoError(t, err)
	require.Equal(t, "json", reloaded.GetString("default.output"))
}
