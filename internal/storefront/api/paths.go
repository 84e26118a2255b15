package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ajg/form"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// ListQuery is the query string of a list endpoint.
type ListQuery struct {
	Search string `form:"search_query,omitempty"`
	Status string `form:"status,omitempty"`
}

// ResourcePath returns /<role>/<resource>.
func ResourcePath(role, resource string) string {
	return "/" + url.PathEscape(strings.Trim(role, "/")) + "/" + url.PathEscape(strings.Trim(resource, "/"))
}

// ListPath returns the list endpoint for q. Empty fields are omitted.
func ListPath(role, resource string, q ListQuery) (string, error) {
	values, err := form.EncodeToValues(q)
	if err != nil {
		return "", fmt.Errorf("failed to encode list query: %w", err)
	}
	path := ResourcePath(role, resource)
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return path, nil
}

// DetailPath returns /<role>/<resource>/<id>.
func DetailPath(role, resource string, id entity.ID) string {
	return ResourcePath(role, resource) + "/" + url.PathEscape(id.String())
}

// ActionPath returns /<role>/<resource>/<id>/<action>.
func ActionPath(role, resource string, id entity.ID, action string) string {
	return DetailPath(role, resource, id) + "/" + url.PathEscape(action)
}
