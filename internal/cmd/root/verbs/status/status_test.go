package status

import (
	"net/http"
	"testing"

	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	backend.Handle(http.MethodPut, "/admin/orders/5", http.StatusOK, map[string]any{"id": 5, "status": "dispatched"})
	env := cmdtest.New(t, backend.URL)
	c, err := NewStatusCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "admin", "orders", "5", "dispatched"))
	assert.Equal(t, "order 5 status set to dispatched\n", env.Out.String())

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"status": "dispatched"}, reqs[0].JSON(t))
}

func TestStatus_RejectsUnknownValue(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	env := cmdtest.New(t, backend.URL)
	c, err := NewStatusCmd()
	require.NoError(t, err)

	err = env.Run(c, "admin", "orders", "5", "teleported")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: pending")
	assert.Empty(t, backend.Requests())
}
