package datasource

import (
	"context"

	"github.com/storefront-hq/storectl/internal/storefront/catalog"
)

// Page wires one management page: a shared Store with its List, Detail and
// Mutator. Close cancels everything the page has in flight.
type Page struct {
	Resource catalog.Resource
	Store    *Store
	List     *List
	Detail   *Detail
	Mutator  *Mutator

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPage builds a page whose requests are bound to ctx.
func NewPage(ctx context.Context, client Client, resource catalog.Resource, notifier Notifier) *Page {
	pageCtx, cancel := context.WithCancel(ctx)
	store := NewStore()
	return &Page{
		Resource: resource,
		Store:    store,
		List:     NewList(client, store, resource),
		Detail:   NewDetail(client, store, resource),
		Mutator:  NewMutator(client, store, resource, notifier),
		ctx:      pageCtx,
		cancel:   cancel,
	}
}

// Context is cancelled by Close. Views issue page requests under it.
func (p *Page) Context() context.Context {
	return p.ctx
}

// Close tears the page down: in-flight loads are cancelled and the detail
// is closed.
func (p *Page) Close() {
	p.List.Cancel()
	p.Detail.Close()
	p.cancel()
}
