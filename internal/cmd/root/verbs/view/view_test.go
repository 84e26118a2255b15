package view

import (
	"testing"

	cmdpkg "github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_RequiresTerminal(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	env := cmdtest.New(t, backend.URL)
	c, err := NewViewCmd()
	require.NoError(t, err)

	err = env.Run(c, "admin", "buyers")
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "storectl list admin buyers")
	assert.Empty(t, backend.Requests())
}
