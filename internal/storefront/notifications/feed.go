// Package notifications keeps the notification feed: an initial fetch, a
// fixed-interval poll and the realtime push channel all merge into one list
// keyed by id, newest first.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/storefront/realtime"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultChannel      = "NotificationsChannel"
	DefaultResource     = "notifications"

	readField = "read"
)

// Source tells where an update came from.
type Source int

const (
	SourceFetch Source = iota
	SourcePoll
	SourcePush
	SourceLocal
)

func (s Source) String() string {
	switch s {
	case SourceFetch:
		return "fetch"
	case SourcePoll:
		return "poll"
	case SourcePush:
		return "push"
	case SourceLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Event reports one merged notification.
type Event struct {
	Source Source
	Item   entity.Record
	// New is set the first time an id enters the feed.
	New bool
}

// Client is the subset of api.Client the feed uses.
type Client interface {
	GetCollection(ctx context.Context, path, envelope string) (entity.Collection, error)
	Request(ctx context.Context, method, path string, body any) (*api.Result, error)
}

// Subscriber opens the push subscription.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, params map[string]any) (*realtime.Subscription, error)
}

// Config selects the endpoints and cadence of a Feed.
type Config struct {
	Role         string
	Resource     string
	Envelope     string
	Channel      string
	Params       map[string]any
	PollInterval time.Duration
}

// Feed merges notifications from every source without duplicates.
type Feed struct {
	client     Client
	subscriber Subscriber
	cfg        Config
	archive    *Archive

	mu    sync.Mutex
	items []entity.Record

	emitMu   sync.Mutex
	onChange func(Event)
}

// New builds a Feed. A nil subscriber polls only.
func New(client Client, subscriber Subscriber, cfg Config) *Feed {
	if cfg.Resource == "" {
		cfg.Resource = DefaultResource
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Feed{
		client:     client,
		subscriber: subscriber,
		cfg:        cfg,
	}
}

// WithArchive appends every new notification to archive.
func (f *Feed) WithArchive(archive *Archive) *Feed {
	f.archive = archive
	return f
}

// OnChange installs fn. Calls are serialized.
func (f *Feed) OnChange(fn func(Event)) {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.onChange = fn
}

// Items returns the feed newest first.
func (f *Feed) Items() entity.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(entity.Collection, len(f.items))
	for i, rec := range f.items {
		out[i] = rec.Clone()
	}
	return out
}

// Unread counts notifications not marked read.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.items {
		if read, _ := rec[readField].(bool); !read {
			n++
		}
	}
	return n
}

// MergePush applies one pushed notification: an id already in the feed is
// replaced in place, an unseen id is prepended.
func (f *Feed) MergePush(rec entity.Record) (Event, bool) {
	id := rec.ID()
	if id == "" {
		return Event{}, false
	}

	f.mu.Lock()
	idx := f.indexOf(id)
	isNew := idx < 0
	if isNew {
		f.items = slices.Insert(f.items, 0, rec.Clone())
	} else {
		f.items[idx] = rec.Clone()
	}
	f.mu.Unlock()

	return Event{Source: SourcePush, Item: rec.Clone(), New: isNew}, true
}

// MergePoll applies a fetched list: known ids are replaced in place and
// unseen ids are prepended in server order.
func (f *Feed) MergePoll(list entity.Collection, source Source) []Event {
	list = list.Dedupe()

	f.mu.Lock()
	events := make([]Event, 0, len(list))
	fresh := make([]entity.Record, 0, len(list))
	for _, rec := range list {
		if idx := f.indexOf(rec.ID()); idx >= 0 {
			if !recordsEqual(f.items[idx], rec) {
				f.items[idx] = rec.Clone()
				events = append(events, Event{Source: source, Item: rec.Clone()})
			}
			continue
		}
		fresh = append(fresh, rec.Clone())
		events = append(events, Event{Source: source, Item: rec.Clone(), New: true})
	}
	if len(fresh) > 0 {
		f.items = append(fresh, f.items...)
	}
	f.mu.Unlock()

	return events
}

// Refresh fetches the list once and merges it.
func (f *Feed) Refresh(ctx context.Context) error {
	return f.refresh(ctx, SourcePoll)
}

func (f *Feed) refresh(ctx context.Context, source Source) error {
	path, err := api.ListPath(f.cfg.Role, f.cfg.Resource, api.ListQuery{})
	if err != nil {
		return err
	}
	ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{
		Role:     f.cfg.Role,
		Resource: f.cfg.Resource,
		Action:   "list",
		View:     "feed",
	})
	list, err := f.client.GetCollection(ctx, path, f.cfg.Envelope)
	if err != nil {
		return err
	}
	f.emit(ctx, f.MergePoll(list, source)...)
	return nil
}

// MarkRead marks id read on the server and in the feed.
func (f *Feed) MarkRead(ctx context.Context, id entity.ID) error {
	ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{
		Role:     f.cfg.Role,
		Resource: f.cfg.Resource,
		Action:   "read",
		EntityID: id.String(),
	})
	if _, err := f.client.Request(ctx, http.MethodPut, api.ActionPath(f.cfg.Role, f.cfg.Resource, id, "read"), nil); err != nil {
		return err
	}

	f.mu.Lock()
	idx := f.indexOf(id)
	var updated entity.Record
	if idx >= 0 {
		f.items[idx] = f.items[idx].Merge(map[string]any{readField: true})
		updated = f.items[idx].Clone()
	}
	f.mu.Unlock()

	if updated != nil {
		f.emit(ctx, Event{Source: SourceLocal, Item: updated})
	}
	return nil
}

// Run fetches the feed, then polls and listens until ctx is cancelled. A
// failed initial fetch is returned; later poll failures are logged and
// retried on the next tick. When the push channel is unavailable the feed
// keeps polling.
func (f *Feed) Run(ctx context.Context) error {
	if err := f.refresh(ctx, SourceFetch); err != nil {
		return fmt.Errorf("initial notification fetch failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.poll(gctx)
	})
	if f.subscriber != nil {
		g.Go(func() error {
			return f.listen(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (f *Feed) poll(ctx context.Context) error {
	logger := log.FromContext(ctx)
	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.refresh(ctx, SourcePoll); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("notification poll failed",
					slog.String("error", api.UserMessage(err, "error fetching notifications")))
			}
		}
	}
}

func (f *Feed) listen(ctx context.Context) error {
	logger := log.FromContext(ctx)

	sub, err := f.subscriber.Subscribe(ctx, f.cfg.Channel, f.cfg.Params)
	if err != nil {
		logger.Warn("realtime notifications unavailable, polling only", slog.String("error", err.Error()))
		return nil
	}
	defer sub.Unsubscribe()

	sub.OnMessage(func(msg realtime.Message) {
		rec, err := decodePush(msg)
		if err != nil {
			logger.Debug("ignoring realtime payload", slog.String("error", err.Error()))
			return
		}
		if ev, ok := f.MergePush(rec); ok {
			f.emit(ctx, ev)
		}
	})

	select {
	case <-ctx.Done():
	case <-sub.Done():
		if err := sub.Err(); err != nil && ctx.Err() == nil {
			logger.Warn("realtime notifications ended, polling only",
				slog.String("state", sub.State().String()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (f *Feed) emit(ctx context.Context, events ...Event) {
	if len(events) == 0 {
		return
	}

	if f.archive != nil {
		var fresh []entity.Record
		for _, ev := range events {
			if ev.New {
				fresh = append(fresh, ev.Item)
			}
		}
		if len(fresh) > 0 {
			if _, err := f.archive.Append(fresh...); err != nil {
				log.FromContext(ctx).Warn("failed to archive notifications", slog.String("error", err.Error()))
			}
		}
	}

	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	if f.onChange == nil {
		return
	}
	for _, ev := range events {
		f.onChange(ev)
	}
}

func (f *Feed) indexOf(id entity.ID) int {
	return slices.IndexFunc(f.items, func(r entity.Record) bool { return r.ID() == id })
}

// decodePush accepts {"notification": {...}} or the bare notification.
func decodePush(msg realtime.Message) (entity.Record, error) {
	var envelope struct {
		Notification entity.Record `json:"notification"`
	}
	if err := json.Unmarshal(msg.Data, &envelope); err == nil && envelope.Notification.ID() != "" {
		return envelope.Notification, nil
	}
	rec, err := entity.Decode(msg.Data)
	if err != nil {
		return nil, err
	}
	if rec.ID() == "" {
		return nil, fmt.Errorf("notification payload has no id")
	}
	return rec, nil
}

func recordsEqual(a, b entity.Record) bool {
	left, err1 := json.Marshal(a)
	right, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && string(left) == string(right)
}
