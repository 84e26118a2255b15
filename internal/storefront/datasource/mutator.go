package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// Mutator sends mutations and folds server-confirmed changes into the store.
// Nothing changes locally before the server accepts the call, and every
// outcome is reported to the Notifier.
type Mutator struct {
	client   Client
	store    *Store
	resource catalog.Resource
	notifier Notifier
}

// NewMutator builds a Mutator. A nil notifier discards feedback.
func NewMutator(client Client, store *Store, resource catalog.Resource, notifier Notifier) *Mutator {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Mutator{
		client:   client,
		store:    store,
		resource: resource,
		notifier: notifier,
	}
}

// Mutate applies action to id.
func (m *Mutator) Mutate(ctx context.Context, id entity.ID, action Action) error {
	if id == "" {
		return fmt.Errorf("%s %s: id cannot be empty", action.Name(), m.resource.Key())
	}
	if err := action.validate(m.resource); err != nil {
		m.fail(action.Name(), id, err)
		return err
	}

	ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{
		Role:     string(m.resource.Role),
		Resource: m.resource.Name,
		Action:   action.Name(),
		EntityID: id.String(),
	})

	method, path, body := action.request(m.resource, id)
	res, err := m.client.Request(ctx, method, path, body)
	if err != nil {
		m.fail(action.Name(), id, err)
		return err
	}

	if action.IsDelete() {
		m.store.Remove(id)
	} else {
		patch := action.Patch()
		if patch == nil {
			patch = map[string]any{}
		}
		if confirmed := confirmedFields(res, id); confirmed != nil {
			for k, v := range confirmed {
				patch[k] = v
			}
		}
		m.store.Patch(id, patch)
	}

	log.FromContext(ctx).Debug("mutation applied",
		slog.String("resource", m.resource.Key()),
		slog.String("id", id.String()),
		slog.String("action", action.String()))

	m.notifier.Notify(Feedback{
		Level:   LevelSuccess,
		Message: successMessage(action, m.resource, id),
		Action:  action.Name(),
		ID:      id,
	})
	return nil
}

// Create posts fields to the collection and inserts the created record.
func (m *Mutator) Create(ctx context.Context, fields map[string]any) (entity.Record, error) {
	if !m.resource.Can(catalog.CanCreate) {
		err := fmt.Errorf("%w: %s does not accept create", ErrUnsupportedAction, m.resource.Key())
		m.fail("create", "", err)
		return nil, err
	}

	ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{
		Role:     string(m.resource.Role),
		Resource: m.resource.Name,
		Action:   "create",
	})

	res, err := m.client.Request(ctx, http.MethodPost,
		api.ResourcePath(string(m.resource.Role), m.resource.Name), entity.Fields(fields))
	if err != nil {
		m.fail("create", "", err)
		return nil, err
	}

	rec, err := res.Record()
	if err != nil {
		m.fail("create", "", err)
		return nil, err
	}
	m.store.Insert(rec, m.resource.SortByID)

	m.notifier.Notify(Feedback{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("created %s %s", singular(m.resource.Name), rec.ID()),
		Action:  "create",
		ID:      rec.ID(),
	})
	return rec.Clone(), nil
}

func (m *Mutator) fail(action string, id entity.ID, err error) {
	fallback := fmt.Sprintf("error updating %s", singular(m.resource.Name))
	switch action {
	case "delete":
		fallback = fmt.Sprintf("error deleting %s", singular(m.resource.Name))
	case "create":
		fallback = fmt.Sprintf("error creating %s", singular(m.resource.Name))
	}
	message := api.UserMessage(err, fallback)
	if errors.Is(err, ErrUnsupportedAction) {
		message = err.Error()
	}
	m.notifier.Notify(Feedback{
		Level:   LevelError,
		Message: message,
		Action:  action,
		ID:      id,
		Err:     err,
	})
}

// confirmedFields returns the server's view of the entity when the response
// body is that entity.
func confirmedFields(res *api.Result, id entity.ID) map[string]any {
	if res == nil || len(res.Body) == 0 {
		return nil
	}
	rec, err := entity.Decode(res.Body)
	if err != nil || rec.ID() != id {
		return nil
	}
	delete(rec, entity.IDField)
	return rec
}

func successMessage(action Action, resource catalog.Resource, id entity.ID) string {
	name := singular(resource.Name)
	switch action.Name() {
	case "block":
		return fmt.Sprintf("%s %s blocked", name, id)
	case "unblock":
		return fmt.Sprintf("%s %s unblocked", name, id)
	case "delete":
		return fmt.Sprintf("%s %s deleted", name, id)
	case "status":
		return fmt.Sprintf("%s %s status set to %s", name, id, entity.Display(action.Patch()[entity.StatusField]))
	default:
		return fmt.Sprintf("%s %s updated", name, id)
	}
}

func singular(name string) string {
	switch {
	case len(name) > 3 && name[len(name)-3:] == "ies":
		return name[:len(name)-3] + "y"
	case len(name) > 1 && name[len(name)-1] == 's':
		return name[:len(name)-1]
	default:
		return name
	}
}
