package update

import (
	"net/http"
	"testing"

	cmdpkg "github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	backend.Handle(http.MethodPut, "/admin/tiers/2", http.StatusNoContent, nil)
	env := cmdtest.New(t, backend.URL)
	c, err := NewUpdateCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "admin", "tiers", "2", "--set", "price=19.5", "--set", "name=Gold"))
	assert.Equal(t, "tier 2 updated\n", env.Out.String())

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"price": 19.5, "name": "Gold"}, reqs[0].JSON(t))
}

func TestUpdate_RequiresFields(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	env := cmdtest.New(t, backend.URL)
	c, err := NewUpdateCmd()
	require.NoError(t, err)

	err = env.Run(c, "admin", "tiers", "2")
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, backend.Requests())
}

func TestUpdate_InvalidAssignment(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	env := cmdtest.New(t, backend.URL)
	c, err := NewUpdateCmd()
	require.NoError(t, err)

	err = env.Run(c, "admin", "tiers", "2", "--set", "price")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}
