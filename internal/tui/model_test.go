package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	paths    []string
	requests []string

	list    func(path string) (entity.Collection, error)
	record  func(path string) (entity.Record, error)
	request func(method, path string) (*api.Result, error)
}

func (f *fakeClient) GetCollection(_ context.Context, path, _ string) (entity.Collection, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	return f.list(path)
}

func (f *fakeClient) GetRecord(_ context.Context, path string) (entity.Record, error) {
	return f.record(path)
}

func (f *fakeClient) Request(_ context.Context, method, path string, _ any) (*api.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, method+" "+path)
	f.mu.Unlock()
	if f.request == nil {
		return &api.Result{StatusCode: http.StatusNoContent}, nil
	}
	return f.request(method, path)
}

func buyers() entity.Collection {
	return entity.Collection{
		{"id": float64(1), "name": "Ada", "email": "ada@example.com", "blocked": false},
		{"id": float64(2), "name": "Grace", "email": "grace@example.com", "blocked": false},
	}
}

func resource(t *testing.T, role, name string) catalog.Resource {
	t.Helper()
	res, err := catalog.Default().Lookup(role, name)
	require.NoError(t, err)
	return res
}

func newModel(t *testing.T, client *fakeClient, res catalog.Resource) *Model {
	t.Helper()
	m := New(context.Background(), client, res, Options{Copy: func(string) error { return nil }})
	t.Cleanup(m.Close)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	require.Same(t, m, next)
	return cmd
}

func loaded(t *testing.T, m *Model) {
	t.Helper()
	update(t, m, m.load(datasource.Query{})())
}

func TestModel_ShowsRowsAfterLoad(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))

	assert.Contains(t, m.View(), "Loading buyers")

	loaded(t, m)
	view := m.View()
	assert.Contains(t, view, "admin / buyers")
	assert.Contains(t, view, "Ada")
	assert.Contains(t, view, "grace@example.com")
	assert.Contains(t, view, "b block")
	assert.Equal(t, entity.ID("1"), m.selectedID())
}

func TestModel_ColumnsFollowLoadedRows(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))

	update(t, m, tea.WindowSizeMsg{Width: 160, Height: 30})
	loaded(t, m)

	view := m.View()
	assert.Contains(t, view, "Grace")
	assert.Contains(t, view, "ada@example.com")
	assert.NotContains(t, view, "grac…")
}

func TestModel_EmptyPlaceholder(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return entity.Collection{}, nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))

	loaded(t, m)
	assert.Contains(t, m.View(), "No buyers found")
}

func TestModel_InitialFailureIsFullPage(t *testing.T) {
	client := &fakeClient{list: func(path string) (entity.Collection, error) {
		return nil, &api.Error{Kind: api.KindHTTP, Method: "GET", Path: path, StatusCode: 500, ServerMessage: "database unavailable"}
	}}
	m := newModel(t, client, resource(t, "admin", "buyers"))

	loaded(t, m)
	view := m.View()
	assert.Contains(t, view, "Could not load buyers")
	assert.Contains(t, view, "database unavailable")
	assert.Empty(t, m.toasts)
}

func TestModel_RefetchFailureKeepsRows(t *testing.T) {
	fail := false
	client := &fakeClient{list: func(path string) (entity.Collection, error) {
		if fail {
			return nil, &api.Error{Kind: api.KindNetwork, Method: "GET", Path: path, Err: errors.New("connection refused")}
		}
		return buyers(), nil
	}}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	fail = true
	cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	update(t, m, cmd())

	view := m.View()
	assert.Contains(t, view, "Ada")
	assert.NotContains(t, view, "Could not load")
	require.Len(t, m.toasts, 1)
	assert.Equal(t, toastError, m.toasts[0].kind)
	assert.Equal(t, "error fetching buyers", m.toasts[0].text)
}

func TestModel_SupersededLoadIsIgnored(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	m.loading = true

	cmd := update(t, m, listLoadedMsg{err: fmt.Errorf("list: %w", datasource.ErrSuperseded)})
	assert.Nil(t, cmd)
	assert.True(t, m.loading)
	assert.Empty(t, m.toasts)
}

func TestModel_SearchTypingUpdatesQuery(t *testing.T) {
	client := &fakeClient{list: func(path string) (entity.Collection, error) {
		if strings.Contains(path, "search_query=ada") {
			return buyers()[:1], nil
		}
		return buyers(), nil
	}}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	update(t, m, key("/"))
	assert.Equal(t, modeSearch, m.mode)
	cmd := update(t, m, key("a"))
	assert.NotNil(t, cmd)
	assert.Equal(t, "a", m.search.Value())
	assert.True(t, m.loading)

	update(t, m, m.searchFor("ada")())
	assert.Len(t, m.items, 1)
	assert.NotContains(t, m.View(), "Grace")

	update(t, m, key("enter"))
	assert.Equal(t, modeList, m.mode)
}

func TestModel_DetailModal(t *testing.T) {
	client := &fakeClient{
		list: func(string) (entity.Collection, error) { return buyers(), nil },
		record: func(string) (entity.Record, error) {
			return entity.Record{"id": float64(1), "name": "Ada", "address": "12 Analytical Row"}, nil
		},
	}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	cmd := update(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, entity.ID("1"), m.opening)
	update(t, m, cmd())

	assert.Equal(t, modeDetail, m.mode)
	view := m.View()
	assert.Contains(t, view, "buyer 1")
	assert.Contains(t, view, "12 Analytical Row")

	update(t, m, key("esc"))
	assert.Equal(t, modeList, m.mode)
	_, open := m.page.Detail.Selected()
	assert.False(t, open)
}

func TestModel_DetailFailureToastsWithoutModal(t *testing.T) {
	client := &fakeClient{
		list: func(string) (entity.Collection, error) { return buyers(), nil },
		record: func(path string) (entity.Record, error) {
			return nil, &api.Error{Kind: api.KindHTTP, Method: "GET", Path: path, StatusCode: 404}
		},
	}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	update(t, m, m.open("2")())
	assert.Equal(t, modeList, m.mode)
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "buyer 2 not found", m.toasts[0].text)
}

func TestModel_BlockPatchesRowAndToasts(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	cmd := update(t, m, key("b"))
	require.NotNil(t, cmd)
	update(t, m, cmd())

	rec, ok := m.page.Store.Get("1")
	require.True(t, ok)
	assert.True(t, rec.Blocked())
	assert.Contains(t, m.View(), "true")

	update(t, m, m.waitFeedback()())
	require.Len(t, m.toasts, 1)
	assert.Equal(t, toastSuccess, m.toasts[0].kind)
}

func TestModel_UnsupportedKeysAreIgnored(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	assert.Nil(t, update(t, m, key("s")))
	assert.Equal(t, modeList, m.mode)
	assert.Nil(t, update(t, m, key("d")))
	assert.Empty(t, client.requests)
}

func TestModel_StatusPrompt(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) {
		return entity.Collection{{"id": float64(5), "buyer_name": "Ada", "status": "pending"}}, nil
	}}
	m := newModel(t, client, resource(t, "admin", "orders"))
	loaded(t, m)

	update(t, m, key("s"))
	require.Equal(t, modeStatus, m.mode)
	assert.Contains(t, m.View(), "order 5")
	m.prompt.SetValue("dispatched")

	cmd := update(t, m, key("enter"))
	require.NotNil(t, cmd)
	update(t, m, cmd())

	assert.Equal(t, modeList, m.mode)
	rec, _ := m.page.Store.Get("5")
	assert.Equal(t, "dispatched", rec.Status())
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) {
		return entity.Collection{{"id": float64(3), "name": "Shoes"}, {"id": float64(4), "name": "Hats"}}, nil
	}}
	m := newModel(t, client, resource(t, "admin", "categories"))
	loaded(t, m)

	update(t, m, key("d"))
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "delete category 3? (y/N)")
	update(t, m, key("n"))
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, client.requests)

	update(t, m, key("d"))
	cmd := update(t, m, key("y"))
	require.NotNil(t, cmd)
	update(t, m, cmd())

	assert.Equal(t, []string{"DELETE /admin/categories/3"}, client.requests)
	assert.Len(t, m.items, 1)
	assert.NotContains(t, m.View(), "Shoes")
}

func TestModel_CopyID(t *testing.T) {
	var copied string
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := New(context.Background(), client, resource(t, "admin", "buyers"), Options{
		Copy: func(s string) error { copied = s; return nil },
	})
	t.Cleanup(m.Close)
	loaded(t, m)

	cmd := update(t, m, key("c"))
	require.NotNil(t, cmd)
	update(t, m, cmd())
	assert.Equal(t, "1", copied)
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "copied id 1", m.toasts[0].text)
}

func TestModel_ToastsExpire(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))

	for i := range maxToasts + 2 {
		m.pushToast(toastInfo, fmt.Sprintf("toast %d", i))
	}
	require.Len(t, m.toasts, maxToasts)
	assert.Equal(t, "toast 2", m.toasts[0].text)

	update(t, m, toastExpiredMsg{id: m.toasts[0].id})
	assert.Len(t, m.toasts, maxToasts-1)
}

func TestModel_QuitClosesPage(t *testing.T) {
	client := &fakeClient{list: func(string) (entity.Collection, error) { return buyers(), nil }}
	m := newModel(t, client, resource(t, "admin", "buyers"))
	loaded(t, m)

	cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.page.Context().Err())
}
