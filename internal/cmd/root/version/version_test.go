package version

import (
	"encoding/json"
	"testing"

	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_VersionCmd(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")

	require.NoError(t, env.Run(NewVersionCmd()))
	assert.Equal(t, "test\n", env.Out.String())
}

func Test_VersionCmdShowCommit(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")

	require.NoError(t, env.Run(NewVersionCmd(), "--show-commit"))
	assert.Equal(t, "test (abc123, built today)\n", env.Out.String())
}

func Test_VersionCmdJSONOutput(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")
	env.Config.Set(common.OutputConfigPath, "json")

	require.NoError(t, env.Run(NewVersionCmd()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Out.Bytes(), &got))
	assert.Equal(t, map[string]any{"version": "test"}, got)
}
