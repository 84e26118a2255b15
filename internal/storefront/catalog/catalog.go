// Package catalog describes the management pages of the storefront back
// office: which role owns a resource, how its list is ordered and displayed,
// and which mutations it accepts.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Role is the path prefix that scopes a resource to a back office persona.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleBuyer     Role = "buyer"
	RoleSeller    Role = "seller"
	RoleRider     Role = "rider"
	RolePurchaser Role = "purchaser"
	RoleSales     Role = "sales"
)

// Capability names a mutation a resource accepts.
type Capability string

const (
	CanCreate Capability = "create"
	CanUpdate Capability = "update"
	CanDelete Capability = "delete"
	CanBlock  Capability = "block"
	CanStatus Capability = "status"
	CanUpload Capability = "upload"
)

var ErrUnknownResource = errors.New("unknown resource")

// Resource is one management page.
type Resource struct {
	Role Role
	Name string
	// Envelope is the key wrapping the list array when the backend does not
	// return a bare array.
	Envelope string
	// SortByID orders lists client side by id ascending. When false the
	// server order is kept.
	SortByID bool
	// Columns are the summary fields shown in tables, id first.
	Columns      []string
	Capabilities []Capability
	// CustomActions are additional PUT /<id>/<action> endpoints.
	CustomActions []string
	// Statuses lists the values accepted by a status update.
	Statuses []string
	// UploadField is the multipart file field for upload-capable resources.
	UploadField string
}

// Key returns "<role>/<name>".
func (r Resource) Key() string {
	return string(r.Role) + "/" + r.Name
}

// Can reports whether the resource accepts capability c.
func (r Resource) Can(c Capability) bool {
	return slices.Contains(r.Capabilities, c)
}

// HasAction reports whether name is a block/unblock or custom action.
func (r Resource) HasAction(name string) bool {
	if (name == "block" || name == "unblock") && r.Can(CanBlock) {
		return true
	}
	return slices.Contains(r.CustomActions, name)
}

// ValidStatus reports whether value is accepted by a status update. A
// resource without a declared status list accepts any non-empty value.
func (r Resource) ValidStatus(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	if len(r.Statuses) == 0 {
		return true
	}
	return slices.Contains(r.Statuses, value)
}

// Catalog indexes resources by role and name.
type Catalog struct {
	resources map[string]Resource
}

// New builds a Catalog. Later duplicates replace earlier ones.
func New(resources ...Resource) *Catalog {
	c := &Catalog{resources: make(map[string]Resource, len(resources))}
	for _, r := range resources {
		c.resources[r.Key()] = r
	}
	return c
}

// Lookup resolves a role and resource name. Names are matched case
// insensitively and "-" and "_" are interchangeable.
func (c *Catalog) Lookup(role, name string) (Resource, error) {
	key := normalize(role) + "/" + normalize(name)
	if r, ok := c.resources[key]; ok {
		return r, nil
	}
	return Resource{}, fmt.Errorf("%w %q for role %q", ErrUnknownResource, name, role)
}

// All returns every resource ordered by role then name.
func (c *Catalog) All() []Resource {
	out := make([]Resource, 0, len(c.resources))
	for _, r := range c.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

type contextKey struct{}

// Key stores a *Catalog in a context.
var Key = contextKey{}
