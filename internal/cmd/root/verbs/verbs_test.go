package verbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbNamesAreDistinct(t *testing.T) {
	all := []VerbValue{
		Get, Create, Update, Delete, List, Login, Logout, View, Listen,
		Block, Unblock, Status, Action, Upload, Resources, Profiles,
	}
	seen := map[string]bool{}
	for _, v := range all {
		require.False(t, seen[v.String()], "duplicate verb %q", v)
		seen[v.String()] = true
	}
	assert.Equal(t, "unblock", Unblock.String())
}

func TestResourceArgs(t *testing.T) {
	validate := ResourceArgs("id", "value")

	require.NoError(t, validate(nil, []string{"admin", "orders", "5", "dispatched"}))

	err := validate(nil, []string{"admin", "orders"})
	require.EqualError(t, err, "expected 4 arguments [<role> <resource> <id> <value>], received 2")
}
