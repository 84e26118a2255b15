package action

import (
	"net/http"
	"testing"

	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	backend.Handle(http.MethodPut, "/admin/sellers/3/verify", http.StatusNoContent, nil)
	env := cmdtest.New(t, backend.URL)
	c, err := NewActionCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "admin", "sellers", "3", "verify", "--set", "verified=true"))
	assert.Equal(t, "seller 3 updated\n", env.Out.String())
	require.Len(t, backend.Requests(), 1)
	assert.Equal(t, "/admin/sellers/3/verify", backend.Requests()[0].Path)
}

func TestAction_Unknown(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	env := cmdtest.New(t, backend.URL)
	c, err := NewActionCmd()
	require.NoError(t, err)

	err = env.Run(c, "admin", "buyers", "3", "launch")
	require.Error(t, err)
	assert.Empty(t, backend.Requests())
}
