package datasource

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

type actionKind int

const (
	actionBlock actionKind = iota + 1
	actionUnblock
	actionStatus
	actionUpdate
	actionDelete
	actionCustom
)

// Action is one mutation applied to a single entity.
type Action struct {
	kind   actionKind
	name   string
	fields map[string]any
}

func Block() Action {
	return Action{kind: actionBlock, name: "block"}
}

func Unblock() Action {
	return Action{kind: actionUnblock, name: "unblock"}
}

// UpdateStatus sets the status field.
func UpdateStatus(value string) Action {
	return Action{kind: actionStatus, name: "status", fields: map[string]any{entity.StatusField: value}}
}

// Update replaces the given fields.
func Update(fields map[string]any) Action {
	return Action{kind: actionUpdate, name: "update", fields: entity.Fields(fields)}
}

func Delete() Action {
	return Action{kind: actionDelete, name: "delete"}
}

// Custom calls PUT .../<id>/<name> and merges patch on success.
func Custom(name string, patch map[string]any) Action {
	return Action{kind: actionCustom, name: strings.TrimSpace(name), fields: entity.Fields(patch)}
}

// Name is the action verb, e.g. "block" or "status".
func (a Action) Name() string {
	return a.name
}

// IsDelete reports whether the action removes the entity.
func (a Action) IsDelete() bool {
	return a.kind == actionDelete
}

func (a Action) String() string {
	if a.kind == actionStatus {
		return fmt.Sprintf("status=%v", a.fields[entity.StatusField])
	}
	return a.name
}

// Patch returns the fields changed locally after the server accepts the action.
func (a Action) Patch() map[string]any {
	switch a.kind {
	case actionBlock:
		return map[string]any{entity.BlockedField: true}
	case actionUnblock:
		return map[string]any{entity.BlockedField: false}
	case actionDelete:
		return nil
	default:
		return entity.Fields(a.fields)
	}
}

// validate checks the action against what resource accepts.
func (a Action) validate(resource catalog.Resource) error {
	ok := false
	switch a.kind {
	case actionBlock, actionUnblock:
		ok = resource.Can(catalog.CanBlock)
	case actionStatus:
		if !resource.Can(catalog.CanStatus) {
			break
		}
		value := entity.Display(a.fields[entity.StatusField])
		if !resource.ValidStatus(value) {
			return fmt.Errorf("%w: %s does not accept status %q (valid: %s)",
				ErrUnsupportedAction, resource.Key(), value, strings.Join(resource.Statuses, ", "))
		}
		ok = true
	case actionUpdate:
		ok = resource.Can(catalog.CanUpdate) && len(a.fields) > 0
	case actionDelete:
		ok = resource.Can(catalog.CanDelete)
	case actionCustom:
		ok = a.name != "" && resource.HasAction(a.name)
	}
	if !ok {
		return fmt.Errorf("%w: %s does not accept %s", ErrUnsupportedAction, resource.Key(), a.name)
	}
	return nil
}

// request maps the action to its endpoint.
func (a Action) request(resource catalog.Resource, id entity.ID) (method, path string, body any) {
	role := string(resource.Role)
	switch a.kind {
	case actionBlock, actionUnblock, actionCustom:
		return http.MethodPut, api.ActionPath(role, resource.Name, id, a.name), nil
	case actionDelete:
		return http.MethodDelete, api.DetailPath(role, resource.Name, id), nil
	default:
		return http.MethodPut, api.DetailPath(role, resource.Name, id), a.fields
	}
}
