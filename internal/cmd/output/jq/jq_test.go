package jq

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	cmdpkg "github.com/storefront-hq/storectl/internal/cmd"
	cmdcommon "github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/config"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	command := &cobra.Command{Use: "list"}
	AddFlags(command.Flags())
	require.NoError(t, command.Flags().Parse(args))
	return command
}

func newConfig(values map[string]any) config.Hook {
	cfg := config.BuildProfiledConfig("default", "", viper.New())
	for k, v := range values {
		cfg.Set(k, v)
	}
	return cfg
}

var buyers = []map[string]any{
	{"id": 1, "name": "Ada", "blocked": false},
	{"id": 2, "name": "Grace", "blocked": true},
}

func TestResolveSettingsDefaults(t *testing.T) {
	settings, err := ResolveSettings(newCommand(t), nil)
	require.NoError(t, err)
	require.Empty(t, settings.Filter)
	require.Equal(t, cmdcommon.ColorModeAuto, settings.ColorMode)
	require.Equal(t, DefaultTheme, settings.Theme)
}

func TestResolveSettingsEmptyFilterMeansIdentity(t *testing.T) {
	settings, err := ResolveSettings(newCommand(t, "--jq="), nil)
	require.NoError(t, err)
	require.Equal(t, ".", settings.Filter)
}

func TestResolveSettingsRawShortFlagWithoutConfig(t *testing.T) {
	settings, err := ResolveSettings(newCommand(t, "-r"), nil)
	require.NoError(t, err)
	require.True(t, settings.RawOutput)
}

func TestResolveSettingsFromConfig(t *testing.T) {
	cfg := newConfig(map[string]any{
		ColorEnabledConfigPath:      "never",
		ColorThemeConfigPath:        "dracula",
		RawOutputConfigPath:         true,
		DefaultExpressionConfigPath: ".[].id",
	})

	settings, err := ResolveSettings(newCommand(t), cfg)
	require.NoError(t, err)
	require.Equal(t, cmdcommon.ColorModeNever, settings.ColorMode)
	require.Equal(t, "dracula", settings.Theme)
	require.True(t, settings.RawOutput)
	require.Equal(t, ".[].id", settings.Filter)
}

func TestResolveSettingsFlagBeatsDefaultExpression(t *testing.T) {
	cfg := newConfig(map[string]any{DefaultExpressionConfigPath: ".[].id"})

	settings, err := ResolveSettings(newCommand(t, "--jq", ".[].name"), cfg)
	require.NoError(t, err)
	require.Equal(t, ".[].name", settings.Filter)
}

func TestResolveSettingsRejectsUnknownColorMode(t *testing.T) {
	cfg := newConfig(map[string]any{ColorEnabledConfigPath: "sometimes"})

	_, err := ResolveSettings(newCommand(t), cfg)
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestResolveSettingsWithoutJQFlagNeverFilters(t *testing.T) {
	cfg := newConfig(map[string]any{DefaultExpressionConfigPath: ".[].id"})

	settings, err := ResolveSettings(&cobra.Command{Use: "block"}, cfg)
	require.NoError(t, err)
	require.False(t, HasFilter(settings))
}

func TestValidateOutputFormat(t *testing.T) {
	require.Error(t, ValidateOutputFormat(cmdcommon.TEXT, Settings{Filter: "."}))
	require.Error(t, ValidateOutputFormat(cmdcommon.JSON, Settings{RawOutput: true}))
	require.Error(t, ValidateOutputFormat(cmdcommon.YAML, Settings{Filter: ".", RawOutput: true}))
	require.NoError(t, ValidateOutputFormat(cmdcommon.YAML, Settings{Filter: "."}))
	require.NoError(t, ValidateOutputFormat(cmdcommon.TEXT, Settings{}))
}

func TestApplyWithoutFilterPassesThrough(t *testing.T) {
	value, written, err := Apply(buyers, cmdcommon.TEXT, Settings{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, written)
	require.Equal(t, buyers, value)
}

func TestApplyReturnsFilteredValue(t *testing.T) {
	settings := Settings{Filter: "map(select(.blocked)) | .[0].name", ColorMode: cmdcommon.ColorModeNever}

	value, written, err := Apply(buyers, cmdcommon.JSON, settings, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, written)
	require.Equal(t, "Grace", value)
}

func TestApplyCollectsMultipleResults(t *testing.T) {
	settings := Settings{Filter: ".[].id", ColorMode: cmdcommon.ColorModeNever}

	value, _, err := Apply(buyers, cmdcommon.YAML, settings, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, []any{float64(1), float64(2)}, value)
}

func TestApplyColorizedJSONWritesDirectly(t *testing.T) {
	var out bytes.Buffer
	settings := Settings{Filter: ".[0]", ColorMode: cmdcommon.ColorModeAlways, Theme: DefaultTheme}

	value, written, err := Apply(buyers, cmdcommon.JSON, settings, &out)
	require.NoError(t, err)
	require.True(t, written)
	require.Nil(t, value)
	require.Contains(t, out.String(), "\x1b[")
	require.Contains(t, out.String(), "Ada")
}

func TestApplyRawOutputWritesUnquotedStrings(t *testing.T) {
	var out bytes.Buffer
	settings := Settings{Filter: ".[] | .name, .id", RawOutput: true}

	_, written, err := Apply(buyers, cmdcommon.JSON, settings, &out)
	require.NoError(t, err)
	require.True(t, written)
	require.Equal(t, "Ada\n1\nGrace\n2\n", out.String())
}

func TestEvaluateRejectsInvalidExpression(t *testing.T) {
	_, err := Evaluate([]byte(`[]`), ".[")
	require.ErrorContains(t, err, "invalid jq expression")

	_, err = Evaluate(nil, ".")
	require.Error(t, err)
}

func TestShouldUseColorHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	require.False(t, ShouldUseColor(cmdcommon.ColorModeAuto, &bytes.Buffer{}))
	require.True(t, ShouldUseColor(cmdcommon.ColorModeAlways, &bytes.Buffer{}))
}
