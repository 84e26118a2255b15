package datasource

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

type call struct {
	Method string
	Path   string
	Body   any
}

type fakeClient struct {
	mu    sync.Mutex
	calls []call

	listFn    func(ctx context.Context, path string) (entity.Collection, error)
	recordFn  func(ctx context.Context, path string) (entity.Record, error)
	requestFn func(ctx context.Context, method, path string, body any) (*api.Result, error)
}

func (f *fakeClient) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeClient) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeClient) GetCollection(ctx context.Context, path, _ string) (entity.Collection, error) {
	f.record(call{Method: "GET", Path: path})
	return f.listFn(ctx, path)
}

func (f *fakeClient) GetRecord(ctx context.Context, path string) (entity.Record, error) {
	f.record(call{Method: "GET", Path: path})
	return f.recordFn(ctx, path)
}

func (f *fakeClient) Request(ctx context.Context, method, path string, body any) (*api.Result, error) {
	f.record(call{Method: method, Path: path, Body: body})
	if f.requestFn == nil {
		return &api.Result{StatusCode: 204}, nil
	}
	return f.requestFn(ctx, method, path, body)
}

func okJSON(v any) *api.Result {
	data, _ := json.Marshal(v)
	return &api.Result{StatusCode: 200, Body: data}
}

func records(items ...map[string]any) entity.Collection {
	out := make(entity.Collection, 0, len(items))
	for _, item := range items {
		out = append(out, entity.Record(item))
	}
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Feedback
}

func (n *recordingNotifier) Notify(fb Feedback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, fb)
}

func (n *recordingNotifier) All() []Feedback {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Feedback(nil), n.items...)
}

var buyersResource = catalog.Resource{
	Role:         catalog.RoleAdmin,
	Name:         "buyers",
	SortByID:     true,
	Columns:      []string{"id", "name", "blocked"},
	Capabilities: []catalog.Capability{catalog.CanBlock, catalog.CanDelete, catalog.CanUpdate, catalog.CanCreate},
}

var ordersResource = catalog.Resource{
	Role:         catalog.RoleAdmin,
	Name:         "orders",
	Envelope:     "orders",
	Capabilities: []catalog.Capability{catalog.CanStatus},
	Statuses:     []string{"pending", "delivered"},
}
