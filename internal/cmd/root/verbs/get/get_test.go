package get

import (
	"encoding/json"
	"net/http"
	"testing"

	cmdpkg "github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/cmdtest"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_RecordAsJSON(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	backend.Handle(http.MethodGet, "/admin/orders/42", http.StatusOK, map[string]any{
		"id": 42, "status": "pending", "items": []any{map[string]any{"sku": "A1", "qty": 2}},
	})
	env := cmdtest.New(t, backend.URL)
	env.Config.Set(common.OutputConfigPath, "json")
	c, err := NewGetCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "admin", "orders", "42", "--jq", ".items[0].sku"))

	var sku string
	require.NoError(t, json.Unmarshal(env.Out.Bytes(), &sku))
	assert.Equal(t, "A1", sku)
}

func TestGet_RecordAsText(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	backend.Handle(http.MethodGet, "/admin/buyers/7", http.StatusOK, map[string]any{
		"id": 7, "name": "Ada", "address": "12 Analytical Row",
	})
	env := cmdtest.New(t, backend.URL)
	c, err := NewGetCmd()
	require.NoError(t, err)

	require.NoError(t, env.Run(c, "admin", "buyers", "7"))
	assert.Contains(t, env.Out.String(), "12 Analytical Row")
}

func TestGet_NotFound(t *testing.T) {
	backend := cmdtest.NewBackend(t)
	env := cmdtest.New(t, backend.URL)
	c, err := NewGetCmd()
	require.NoError(t, err)

	err = env.Run(c, "admin", "orders", "99")
	var execErr *cmdpkg.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "orders 99 not found", execErr.Msg)
}
