package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// ListState is a snapshot of a List.
type ListState struct {
	Status Status
	Query  Query
	Items  entity.Collection
	// Err is the last load failure. Items keep the last good list.
	Err error
	// EverLoaded is set once any load succeeded.
	EverLoaded bool
}

// Empty reports a successful load that returned no rows.
func (s ListState) Empty() bool {
	return s.Status == StatusLoaded && len(s.Items) == 0
}

// InitialLoadFailed reports a failure before any successful load. Views show
// a full-page error only in this case.
func (s ListState) InitialLoadFailed() bool {
	return s.Status == StatusFailed && !s.EverLoaded
}

// List loads a resource collection driven by a search query. Only the most
// recently issued load may write the store; older in-flight loads are
// cancelled and report ErrSuperseded.
type List struct {
	client   Client
	store    *Store
	resource catalog.Resource

	mu         sync.Mutex
	ticket     uint64
	cancel     context.CancelFunc
	status     Status
	query      Query
	err        error
	everLoaded bool
}

func NewList(client Client, store *Store, resource catalog.Resource) *List {
	return &List{
		client:   client,
		store:    store,
		resource: resource,
	}
}

// Load fetches the list for q and replaces the stored list on success.
func (l *List) Load(ctx context.Context, q Query) error {
	path, err := api.ListPath(string(l.resource.Role), l.resource.Name, q)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.ticket++
	ticket := l.ticket
	if l.cancel != nil {
		l.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.status = StatusLoading
	l.query = q
	l.mu.Unlock()
	defer cancel()

	reqCtx = log.WithRequestLogContext(reqCtx, log.RequestLogContext{
		Role:     string(l.resource.Role),
		Resource: l.resource.Name,
		Action:   "list",
		View:     "list",
	})
	logger := log.FromContext(ctx)

	items, fetchErr := l.client.GetCollection(reqCtx, path, l.resource.Envelope)

	l.mu.Lock()
	defer l.mu.Unlock()

	if ticket != l.ticket {
		logger.LogAttrs(ctx, log.LevelTrace, "discarding superseded list response",
			slog.String("resource", l.resource.Key()),
			slog.Uint64("ticket", ticket),
			slog.Uint64("latest", l.ticket))
		return fmt.Errorf("list %s %q: %w", l.resource.Key(), q.Search, ErrSuperseded)
	}
	l.cancel = nil

	if fetchErr != nil {
		l.status = StatusFailed
		l.err = fetchErr
		logger.Debug("list load failed",
			slog.String("resource", l.resource.Key()),
			slog.String("error", fetchErr.Error()))
		return fetchErr
	}

	if l.resource.SortByID {
		items = items.SortByID()
	}
	l.store.ReplaceList(items)
	l.status = StatusLoaded
	l.err = nil
	l.everLoaded = true
	return nil
}

// Search loads text keeping the current status filter.
func (l *List) Search(ctx context.Context, text string) error {
	l.mu.Lock()
	q := l.query
	l.mu.Unlock()
	q.Search = text
	return l.Load(ctx, q)
}

// Refresh reissues the current query.
func (l *List) Refresh(ctx context.Context) error {
	l.mu.Lock()
	q := l.query
	l.mu.Unlock()
	return l.Load(ctx, q)
}

// Cancel aborts the in-flight load, if any. Its caller gets ErrSuperseded
// and the list keeps its state.
func (l *List) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel == nil {
		return
	}
	l.ticket++
	l.cancel()
	l.cancel = nil
	if l.status != StatusLoading {
		return
	}
	switch {
	case l.err != nil:
		l.status = StatusFailed
	case l.everLoaded:
		l.status = StatusLoaded
	default:
		l.status = StatusIdle
	}
}

// State returns a snapshot of the list.
func (l *List) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ListState{
		Status:     l.status,
		Query:      l.query,
		Items:      l.store.List(),
		Err:        l.err,
		EverLoaded: l.everLoaded,
	}
}

// Resource returns the page definition the list loads.
func (l *List) Resource() catalog.Resource {
	return l.resource
}
