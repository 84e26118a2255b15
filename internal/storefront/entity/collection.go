package entity

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Collection is an ordered list of records with unique ids.
type Collection []Record

// DecodeCollection decodes a list response. The body may be a bare array or
// an object wrapping the array under envelope.
func DecodeCollection(data []byte, envelope string) (Collection, error) {
	var list Collection
	if err := json.Unmarshal(data, &list); err == nil {
		return list.nonNil(), nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}

	keys := []string{envelope, "data", "items", "results"}
	for _, key := range keys {
		raw, ok := wrapped[key]
		if !ok || key == "" {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode list under %q: %w", key, err)
		}
		return list.nonNil(), nil
	}

	return nil, fmt.Errorf("failed to decode list: no array found in response object")
}

func (c Collection) nonNil() Collection {
	if c == nil {
		return Collection{}
	}
	return c
}

// IndexOf returns the position of id, or -1.
func (c Collection) IndexOf(id ID) int {
	return slices.IndexFunc(c, func(r Record) bool { return r.ID() == id })
}

// IDs returns the ids in order.
func (c Collection) IDs() []ID {
	ids := make([]ID, len(c))
	for i, r := range c {
		ids[i] = r.ID()
	}
	return ids
}

// Dedupe drops records without an id and later duplicates of an id.
func (c Collection) Dedupe() Collection {
	seen := make(map[ID]struct{}, len(c))
	out := make(Collection, 0, len(c))
	for _, r := range c {
		id := r.ID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortByID returns a copy ordered by id ascending.
func (c Collection) SortByID() Collection {
	out := slices.Clone(c)
	slices.SortStableFunc(out, func(a, b Record) int {
		return CompareIDs(a.ID(), b.ID())
	})
	return out
}

// CompareIDs orders numeric ids numerically and before non-numeric ids,
// which are ordered lexically.
func CompareIDs(a, b ID) int {
	an, aErr := strconv.ParseFloat(string(a), 64)
	bn, bErr := strconv.ParseFloat(string(b), 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
