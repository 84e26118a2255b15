package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// Target is the management page a resource command operates on.
type Target struct {
	Resource catalog.Resource
	Client   *api.Client
	// Context carries the logger and the request log metadata of the command.
	Context context.Context
}

// ResolveTarget resolves the "<role> <resource> [id]" arguments of the
// running command and builds the storefront client for it.
func ResolveTarget(helper Helper) (*Target, error) {
	args := helper.GetArgs()
	if len(args) < 2 {
		return nil, &ConfigurationError{Err: fmt.Errorf("a role and a resource are required")}
	}
	res, err := helper.GetResource(args[0], args[1])
	if err != nil {
		return nil, err
	}
	client, err := helper.GetStorefrontClient()
	if err != nil {
		return nil, err
	}

	meta := log.RequestLogContext{
		CommandPath: helper.GetCmd().CommandPath(),
		Role:        string(res.Role),
		Resource:    res.Name,
	}
	if verb, err := helper.GetVerb(); err == nil {
		meta.CommandVerb = verb.String()
	}
	if len(args) > 2 {
		meta.EntityID = args[2]
	}
	return &Target{
		Resource: res,
		Client:   client,
		Context:  log.WithRequestLogContext(helper.GetContext(), meta),
	}, nil
}

// NewMutator builds a datasource.Mutator for t that reports through p.
func (t *Target) NewMutator(p datasource.Notifier) *datasource.Mutator {
	return datasource.NewMutator(t.Client, datasource.NewStore(), t.Resource, p)
}

// RunMutation applies action to the record addressed by "<role> <resource>
// <id>" and prints the outcome.
func RunMutation(helper Helper, action datasource.Action) error {
	target, err := ResolveTarget(helper)
	if err != nil {
		return err
	}
	printer := NewFeedbackPrinter(helper.GetStreams().Out)
	id := entity.ID(helper.GetArgs()[2])
	if err := target.NewMutator(printer).Mutate(target.Context, id, action); err != nil {
		return printer.Err(helper, err)
	}
	return nil
}

// FeedbackPrinter writes successful mutation feedback to out and remembers
// the last failure so the command can exit with the same message.
type FeedbackPrinter struct {
	out io.Writer

	mu   sync.Mutex
	last *datasource.Feedback
}

func NewFeedbackPrinter(out io.Writer) *FeedbackPrinter {
	return &FeedbackPrinter{out: out}
}

func (p *FeedbackPrinter) Notify(fb datasource.Feedback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fb.Level == datasource.LevelError {
		p.last = &fb
		return
	}
	fmt.Fprintln(p.out, fb.Message)
}

// Err converts a failed mutation into an ExecutionError carrying the message
// the user was shown.
func (p *FeedbackPrinter) Err(helper Helper, err error) *ExecutionError {
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()
	if last == nil {
		return PrepareStorefrontError(helper, "", err)
	}
	return PrepareStorefrontError(helper, last.Message, err)
}

// ParseAssignments turns repeated key=value flags into a field map. Values
// that parse as JSON (numbers, booleans, null, objects, arrays) keep their
// type; anything else is a string.
func ParseAssignments(values []string) (map[string]any, error) {
	fields := make(map[string]any, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &ConfigurationError{
				Err: fmt.Errorf("invalid assignment %q, expected key=value", raw),
			}
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			fields[key] = decoded
			continue
		}
		fields[key] = value
	}
	return fields, nil
}
