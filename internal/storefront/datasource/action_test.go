package datasource

import (
	"net/http"
	"testing"

	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRequests(t *testing.T) {
	sellers := catalog.Resource{
		Role: catalog.RoleAdmin, Name: "sellers",
		Capabilities:  []catalog.Capability{catalog.CanBlock, catalog.CanUpdate, catalog.CanDelete},
		CustomActions: []string{"verify"},
	}

	tests := []struct {
		name       string
		action     Action
		wantMethod string
		wantPath   string
		wantBody   any
		wantPatch  map[string]any
	}{
		{name: "block", action: Block(), wantMethod: http.MethodPut, wantPath: "/admin/sellers/4/block", wantPatch: map[string]any{"blocked": true}},
		{name: "unblock", action: Unblock(), wantMethod: http.MethodPut, wantPath: "/admin/sellers/4/unblock", wantPatch: map[string]any{"blocked": false}},
		{name: "custom", action: Custom("verify", map[string]any{"verified": true}), wantMethod: http.MethodPut, wantPath: "/admin/sellers/4/verify", wantPatch: map[string]any{"verified": true}},
		{name: "update", action: Update(map[string]any{"name": "x"}), wantMethod: http.MethodPut, wantPath: "/admin/sellers/4", wantBody: map[string]any{"name": "x"}, wantPatch: map[string]any{"name": "x"}},
		{name: "delete", action: Delete(), wantMethod: http.MethodDelete, wantPath: "/admin/sellers/4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.action.validate(sellers))
			method, path, body := tt.action.request(sellers, "4")
			assert.Equal(t, tt.wantMethod, method)
			assert.Equal(t, tt.wantPath, path)
			if tt.wantBody == nil {
				assert.Nil(t, body)
			} else {
				assert.Equal(t, tt.wantBody, body)
			}
			if tt.wantPatch == nil {
				assert.Empty(t, tt.action.Patch())
			} else {
				assert.Equal(t, tt.wantPatch, tt.action.Patch())
			}
		})
	}
}

func TestActionValidate(t *testing.T) {
	readOnly := catalog.Resource{Role: catalog.RoleSales, Name: "orders"}
	for _, a := range []Action{Block(), Unblock(), Delete(), UpdateStatus("x"), Update(map[string]any{"a": 1}), Custom("verify", nil)} {
		assert.ErrorIs(t, a.validate(readOnly), ErrUnsupportedAction, a.Name())
	}

	updatable := catalog.Resource{Role: catalog.RoleAdmin, Name: "tiers", Capabilities: []catalog.Capability{catalog.CanUpdate}}
	assert.ErrorIs(t, Update(nil).validate(updatable), ErrUnsupportedAction, "empty update")

	statusAny := catalog.Resource{Role: catalog.RoleAdmin, Name: "x", Capabilities: []catalog.Capability{catalog.CanStatus}}
	assert.NoError(t, UpdateStatus("whatever").validate(statusAny))
	assert.ErrorIs(t, UpdateStatus(" ").validate(statusAny), ErrUnsupportedAction)
	assert.Equal(t, "status=whatever", UpdateStatus("whatever").String())
}
