package profile

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetProfiles(t *testing.T) {
	v := viper.New()
	v.Set("staging.storefront.base-url", "https://staging.example.com")
	v.Set("default.output", "text")
	v.Set("default.storefront.retries", 2)

	m := NewManager(v)
	assert.Equal(t, []string{"default", "staging"}, m.GetProfiles())

	p, err := m.GetProfile("staging")
	require.NoError(t, err)
	assert.Contains(t, p, "storefront")
}

func TestManager_CreateProfile(t *testing.T) {
	v := viper.New()
	v.Set("default.output", "text")
	m := NewManager(v)

	assert.ErrorIs(t, m.CreateProfile(""), errorProfileNameEmpty)
	assert.ErrorIs(t, m.CreateProfile("default"), errorProfileExists)
	assert.NoError(t, m.CreateProfile("ci"))
}
