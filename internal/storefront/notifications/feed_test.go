package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/storefront-hq/storectl/internal/session"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/storefront/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClient struct {
	mu       sync.Mutex
	lists    []entity.Collection
	listErr  error
	requests []string
}

func (c *fakeClient) GetCollection(_ context.Context, path, _ string) (entity.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, "GET "+path)
	if c.listErr != nil {
		return nil, c.listErr
	}
	if len(c.lists) == 0 {
		return entity.Collection{}, nil
	}
	list := c.lists[0]
	if len(c.lists) > 1 {
		c.lists = c.lists[1:]
	}
	return list, nil
}

func (c *fakeClient) Request(_ context.Context, method, path string, _ any) (*api.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, method+" "+path)
	return &api.Result{StatusCode: http.StatusNoContent}, nil
}

type subscriberFunc func(ctx context.Context, channel string, params map[string]any) (*realtime.Subscription, error)

func (f subscriberFunc) Subscribe(ctx context.Context, channel string, params map[string]any) (*realtime.Subscription, error) {
	return f(ctx, channel, params)
}

func note(id int, title string) entity.Record {
	return entity.Record{"id": float64(id), "title": title, "read": false}
}

func TestMergePushPrependsAndReplacesByID(t *testing.T) {
	feed := New(&fakeClient{}, nil, Config{Role: "admin"})
	feed.MergePoll(entity.Collection{note(2, "b"), note(1, "a")}, SourceFetch)

	ev, ok := feed.MergePush(note(3, "c"))
	require.True(t, ok)
	assert.True(t, ev.New)
	assert.Equal(t, []entity.ID{"3", "2", "1"}, feed.Items().IDs())

	ev, ok = feed.MergePush(note(2, "b edited"))
	require.True(t, ok)
	assert.False(t, ev.New)
	assert.Equal(t, []entity.ID{"3", "2", "1"}, feed.Items().IDs())
	assert.Equal(t, "b edited", feed.Items()[1].String("title"))

	_, ok = feed.MergePush(entity.Record{"title": "no id"})
	assert.False(t, ok)
}

func TestMergePollNeverDuplicatesPushedItems(t *testing.T) {
	feed := New(&fakeClient{}, nil, Config{Role: "admin"})
	feed.MergePoll(entity.Collection{note(1, "a")}, SourceFetch)
	feed.MergePush(note(2, "b"))

	events := feed.MergePoll(entity.Collection{note(4, "d"), note(3, "c"), note(2, "b"), note(1, "a")}, SourcePoll)

	assert.Equal(t, []entity.ID{"4", "3", "2", "1"}, feed.Items().IDs())
	require.Len(t, events, 2)
	assert.True(t, events[0].New)
	assert.Equal(t, entity.ID("4"), events[0].Item.ID())

	assert.Empty(t, feed.MergePoll(entity.Collection{note(4, "d"), note(3, "c")}, SourcePoll), "unchanged items emit nothing")
}

func TestMarkReadPatchesFeed(t *testing.T) {
	client := &fakeClient{lists: []entity.Collection{{note(7, "x"), note(6, "y")}}}
	feed := New(client, nil, Config{Role: "admin"})
	require.NoError(t, feed.Refresh(context.Background()))
	assert.Equal(t, 2, feed.Unread())

	var got []Event
	feed.OnChange(func(ev Event) { got = append(got, ev) })
	require.NoError(t, feed.MarkRead(context.Background(), "7"))

	assert.Equal(t, 1, feed.Unread())
	require.Len(t, got, 1)
	assert.Equal(t, SourceLocal, got[0].Source)
	assert.Contains(t, client.requests, "PUT /admin/notifications/7/read")
}

func TestRunFailsWhenInitialFetchFails(t *testing.T) {
	feed := New(&fakeClient{listErr: &api.Error{Kind: api.KindNetwork, Err: errors.New("offline")}}, nil, Config{Role: "admin"})
	err := feed.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindNetwork, api.KindOf(err))
}

func TestRunPollsAndDegradesWithoutRealtime(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client := &fakeClient{lists: []entity.Collection{
		{note(1, "a")},
		{note(2, "b"), note(1, "a")},
	}}
	subscriber := subscriberFunc(func(context.Context, string, map[string]any) (*realtime.Subscription, error) {
		return nil, errors.New("dial refused")
	})
	feed := New(client, subscriber, Config{Role: "admin", PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan entity.ID, 8)
	feed.OnChange(func(ev Event) {
		if ev.New {
			seen <- ev.Item.ID()
		}
	})

	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	assert.Equal(t, entity.ID("1"), <-seen)
	assert.Equal(t, entity.ID("2"), <-seen)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []entity.ID{"2", "1"}, feed.Items().IDs())
}

func TestRunMergesPushAndPollWithoutDuplicates(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pushed := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{"type": "welcome"})
		var cmd map[string]string
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		id := cmd["identifier"]
		_ = conn.WriteJSON(map[string]any{"type": "confirm_subscription", "identifier": id})
		_ = conn.WriteJSON(map[string]any{"identifier": id, "message": map[string]any{"notification": note(2, "pushed")}})
		close(pushed)
		for {
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	release := make(chan struct{})
	client := &pollGate{
		fakeClient: fakeClient{lists: []entity.Collection{
			{note(1, "a")},
			{note(2, "pushed"), note(1, "a")},
		}},
		release: release,
	}
	channel := realtime.New("ws"+strings.TrimPrefix(server.URL, "http"), session.StaticToken("tok"))
	feed := New(client, channel, Config{Role: "admin", PollInterval: 5 * time.Millisecond})

	var mu sync.Mutex
	var sources []Source
	feed.OnChange(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.New {
			sources = append(sources, ev.Source)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	<-pushed
	require.Eventually(t, func() bool { return len(feed.Items()) == 2 }, 5*time.Second, 5*time.Millisecond)
	close(release)
	require.Eventually(t, func() bool { return client.polls() >= 3 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []entity.ID{"2", "1"}, feed.Items().IDs())
	mu.Lock()
	assert.Equal(t, []Source{SourceFetch, SourcePush}, sources)
	mu.Unlock()
}

// pollGate serves the first list immediately and holds later polls until
// release is closed, so the push arrives before the poll that repeats it.
type pollGate struct {
	fakeClient
	release chan struct{}
	count   int
}

func (p *pollGate) GetCollection(ctx context.Context, path, envelope string) (entity.Collection, error) {
	p.mu.Lock()
	p.count++
	first := p.count == 1
	p.mu.Unlock()
	if !first {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.fakeClient.GetCollection(ctx, path, envelope)
}

func (p *pollGate) polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
