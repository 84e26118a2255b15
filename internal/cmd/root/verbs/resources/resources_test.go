package resources

import (
	"encoding/json"
	"testing"

	cmdpkg "github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources_Text(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")
	c, err := NewResourcesCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "admin"))
	out := env.Out.String()
	assert.Contains(t, out, "buyers")
	assert.Contains(t, out, "block,unblock")
}

func TestResources_JSONFilter(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")
	env.Config.Set(common.OutputConfigPath, "json")
	c, err := NewResourcesCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "--jq", `[.[] | select(.role == "admin" and .resource == "orders") | .statuses]`))

	var statuses []string
	require.NoError(t, json.Unmarshal(env.Out.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.Contains(t, statuses[0], "dispatched")
}

func TestResources_UnknownRole(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")
	c, err := NewResourcesCmd()
	require.NoError(t, err)

	err = env.Run(c, "pirate")
	var cfgErr *cmdpkg.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
