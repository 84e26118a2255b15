package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupNormalizesNames(t *testing.T) {
	c := Default()

	r, err := c.Lookup("ADMIN", "Buyers")
	require.NoError(t, err)
	require.Equal(t, "admin/buyers", r.Key())
	require.True(t, r.Can(CanBlock))
	require.True(t, r.HasAction("unblock"))
	require.False(t, r.HasAction("verify"))

	_, err = c.Lookup("admin", "spaceships")
	require.ErrorIs(t, err, ErrUnknownResource)
}

func TestValidStatus(t *testing.T) {
	orders, err := Default().Lookup("rider", "orders")
	require.NoError(t, err)

	require.True(t, orders.ValidStatus("delivered"))
	require.False(t, orders.ValidStatus("pending"))
	require.False(t, orders.ValidStatus(" "))

	free := Resource{Role: RoleAdmin, Name: "free"}
	require.True(t, free.ValidStatus("anything"))
}

func TestAllIsSortedAndUnique(t *testing.T) {
	all := Default().All()
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	for i, r := range all {
		require.False(t, seen[r.Key()], "duplicate %s", r.Key())
		seen[r.Key()] = true
		require.NotEmpty(t, r.Columns)
		require.Equal(t, "id", r.Columns[0])
		if i > 0 {
			require.Less(t, all[i-1].Key(), r.Key())
		}
	}
}

func TestCustomActions(t *testing.T) {
	sellers, err := Default().Lookup("admin", "sellers")
	require.NoError(t, err)
	require.True(t, sellers.HasAction("verify"))

	banners, err := Default().Lookup("admin", "banners")
	require.NoError(t, err)
	require.True(t, banners.Can(CanUpload))
	require.Equal(t, "image", banners.UploadField)
}
