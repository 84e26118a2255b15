package logout

import (
	"testing"

	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/storefront-hq/storectl/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogout(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")
	store, err := session.NewStore("file", env.Dir, "default")
	require.NoError(t, err)
	require.NoError(t, session.Login(store, "secret-token", ""))

	c, err := NewLogoutCmd()
	require.NoError(t, err)
	require.NoError(t, env.Run(c))
	assert.Equal(t, "Logged out\n", env.Out.String())

	_, err = store.Get(session.TokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogout_WithoutSession(t *testing.T) {
	env := cmdtest.New(t, "http://127.0.0.1:0")
	c, err := NewLogoutCmd()
	require.NoError(t, err)

	assert.NoError(t, env.Run(c))
}
