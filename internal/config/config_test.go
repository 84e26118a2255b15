package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	utilviper "github.com/storefront-hq/storectl/internal/util/viper"
	"github.com/stretchr/testify/require"
)

func TestBuildProfiledConfig_ProfileEnvWithDashes(t *testing.T) {
	t.Setenv("STORECTL_TEAM_A_B_C_STOREFRONT_TOKEN", "token-123")

	profile := "team-a-b-c"
	mainv := utilviper.NewViper("nonexistent.yaml")
	mainv.Set(profile, map[string]any{})

	cfg := BuildProfiledConfig(profile, "nonexistent.yaml", mainv)

	require.Equal(t, "token-123", cfg.GetString(TokenConfigPath))
}

func TestGetConfigInitializesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storectl", "config.yaml")

	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.GetProfile())
	require.Equal(t, DefaultBaseURL, cfg.GetString(BaseURLConfigPath))
	require.Equal(t, DefaultTimeout, cfg.GetDurationOrElse(TimeoutConfigPath, time.Second))
	require.Equal(t, DefaultPollInterval, cfg.GetDurationOrElse(PollIntervalConfigPath, time.Second))
	require.Equal(t, DefaultRetries, cfg.GetIntOrElse(RetriesConfigPath, 0))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestGetConfigRejectsMissingExplicitPath(t *testing.T) {
	dir := t.TempDir()
	_, err := GetConfig(filepath.Join(dir, "missing.yaml"), "default", filepath.Join(dir, "config.yaml"))
	require.Error(t, err)
}

func TestGetDurationOrElseFallsBackForUnsetKeys(t *testing.T) {
	mainv := utilviper.NewViper("nonexistent.yaml")
	mainv.Set("default", map[string]any{"notifications": map[string]any{"poll-interval": "0s"}})
	cfg := BuildProfiledConfig("default", "nonexistent.yaml", mainv)

	require.Equal(t, 7*time.Second, cfg.GetDurationOrElse(PollIntervalConfigPath, 7*time.Second))
	require.Equal(t, 3*time.Second, cfg.GetDurationOrElse(TimeoutConfigPath, 3*time.Second))
}

func TestGetDefaultConfigPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := GetDefaultConfigFilePath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/xdg/storectl/config.yaml", path)
}
