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

// Detail fetches one entity on demand into the store's selected slot. The
// last Open or Close wins: earlier in-flight fetches are cancelled and their
// responses dropped.
type Detail struct {
	client   Client
	store    *Store
	resource catalog.Resource

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	pending entity.ID
	err     error
}

func NewDetail(client Client, store *Store, resource catalog.Resource) *Detail {
	return &Detail{
		client:   client,
		store:    store,
		resource: resource,
	}
}

// Open fetches id and selects it. On failure nothing is selected.
func (d *Detail) Open(ctx context.Context, id entity.ID) (entity.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("detail %s: id cannot be empty", d.resource.Key())
	}

	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.cancel != nil {
		d.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.pending = id
	d.err = nil
	d.mu.Unlock()
	defer cancel()

	reqCtx = log.WithRequestLogContext(reqCtx, log.RequestLogContext{
		Role:     string(d.resource.Role),
		Resource: d.resource.Name,
		Action:   "get",
		EntityID: id.String(),
		View:     "detail",
	})

	rec, fetchErr := d.client.GetRecord(reqCtx, api.DetailPath(string(d.resource.Role), d.resource.Name, id))

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		log.FromContext(ctx).LogAttrs(ctx, log.LevelTrace, "discarding superseded detail response",
			slog.String("resource", d.resource.Key()),
			slog.String("id", id.String()))
		return nil, fmt.Errorf("detail %s/%s: %w", d.resource.Key(), id, ErrSuperseded)
	}
	d.cancel = nil
	d.pending = ""

	if fetchErr != nil {
		d.err = fetchErr
		d.store.ClearSelected()
		return nil, fetchErr
	}

	if rec.ID() == "" {
		rec = rec.Merge(map[string]any{entity.IDField: id.String()})
	}
	d.store.Select(rec)
	return rec.Clone(), nil
}

// Close clears the selection and drops any in-flight fetch. It is safe when
// nothing is open.
func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.pending = ""
	d.err = nil
	d.store.ClearSelected()
}

// Selected returns the open detail.
func (d *Detail) Selected() (entity.Record, bool) {
	return d.store.Selected()
}

// Loading returns the id being fetched, if any.
func (d *Detail) Loading() (entity.ID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.pending != ""
}

// Err returns the failure of the last settled Open.
func (d *Detail) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
