// Package entity models the backend records shown by storefront pages.
// Concrete shapes differ per resource, so a record is kept as decoded JSON
// and only the identity and the mutable status fields are interpreted.
package entity

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

const (
	IDField      = "id"
	BlockedField = "blocked"
	StatusField  = "status"
)

// ID is the normalized identifier of a record. Numeric JSON ids are
// rendered without a fractional part so 7 and "7" compare equal.
type ID string

func (id ID) String() string {
	return string(id)
}

// ParseID normalizes a decoded JSON id value.
func ParseID(v any) (ID, bool) {
	switch value := v.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return "", false
		}
		return ID(value), true
	case float64:
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return ID(strconv.FormatInt(int64(value), 10)), true
		}
		return ID(strconv.FormatFloat(value, 'f', -1, 64)), true
	case json.Number:
		return ID(value.String()), true
	case int:
		return ID(strconv.Itoa(value)), true
	case int64:
		return ID(strconv.FormatInt(value, 10)), true
	default:
		return "", false
	}
}

// Record is one decoded JSON object.
type Record map[string]any

// ID returns the record identity, or "" when the record has none.
func (r Record) ID() ID {
	id, _ := ParseID(r[IDField])
	return id
}

// Blocked reports the value of the blocked flag.
func (r Record) Blocked() bool {
	switch v := r[BlockedField].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Status returns the status field as a string.
func (r Record) Status() string {
	return r.String(StatusField)
}

// String renders field for display. Nested values are rendered as compact JSON.
func (r Record) String(field string) string {
	return Display(r[field])
}

// Clone returns a deep copy so callers can hand records out without
// sharing nested maps with the store.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge overwrites the given fields. The id is never replaced.
func (r Record) Merge(fields map[string]any) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for k, v := range fields {
		if k == IDField {
			if _, exists := out[IDField]; exists {
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Decode turns a JSON object into a Record.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("failed to decode record: body is null")
	}
	return rec, nil
}

// Display renders a decoded JSON value for tables and status lines.
func Display(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(data)
	}
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, inner := range value {
			out[k] = cloneValue(inner)
		}
		return out
	case Record:
		return value.Clone()
	case []any:
		out := make([]any, len(value))
		for i, inner := range value {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return value
	}
}

// Fields copies a field map so a caller-owned map is not retained.
func Fields(fields map[string]any) map[string]any {
	return maps.Clone(fields)
}
