// Package datasource implements the list, detail and mutation flow shared by
// every storefront management page. All entity state of a page lives in one
// Store; the list and the selected detail are views over it.
package datasource

import (
	"context"
	"errors"

	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

var (
	// ErrSuperseded is returned to the caller of a list or detail load whose
	// result was discarded because a newer load (or a Close) took its slot.
	ErrSuperseded = errors.New("request superseded by a newer one")
	// ErrUnsupportedAction is returned when a resource does not accept an action.
	ErrUnsupportedAction = errors.New("action not supported by resource")
)

// Client is the subset of api.Client used by data sources.
type Client interface {
	GetCollection(ctx context.Context, path, envelope string) (entity.Collection, error)
	GetRecord(ctx context.Context, path string) (entity.Record, error)
	Request(ctx context.Context, method, path string, body any) (*api.Result, error)
}

// Query is the search state of a list.
type Query = api.ListQuery

// Status is the lifecycle state of a list or detail load.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSuperseded reports whether err only means a newer request replaced this one.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
