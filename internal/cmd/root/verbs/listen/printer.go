package listen

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/storefront/notifications"
)

// eventPrinter writes one line per feed event.
type eventPrinter struct {
	out     io.Writer
	format  common.OutputFormat
	tmpl    *template.Template
	newOnly bool
}

func newEventPrinter(out io.Writer, format common.OutputFormat, text string, newOnly bool) (*eventPrinter, error) {
	p := &eventPrinter{out: out, format: format, newOnly: newOnly}
	if strings.TrimSpace(text) == "" {
		return p, nil
	}
	tmpl, err := template.New("notification").Funcs(sprig.TxtFuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, &cmd.ConfigurationError{Err: fmt.Errorf("invalid --%s: %w", templateFlagName, err)}
	}
	p.tmpl = tmpl
	return p, nil
}

func (p *eventPrinter) Print(ev notifications.Event) error {
	if p.newOnly && ev.Source == notifications.SourceFetch {
		return nil
	}
	data := map[string]any{
		"source": ev.Source.String(),
		"new":    ev.New,
		"item":   map[string]any(ev.Item),
	}

	switch {
	case p.tmpl != nil:
		var sb strings.Builder
		if err := p.tmpl.Execute(&sb, data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(p.out, strings.TrimRight(sb.String(), "\n"))
		return err
	case p.format == common.JSON || p.format == common.YAML:
		line, err := json.Marshal(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, string(line))
		return err
	default:
		return p.printText(ev)
	}
}

func (p *eventPrinter) printText(ev notifications.Event) error {
	marker := " "
	if ev.New {
		marker = "*"
	}
	read := "unread"
	if v, ok := ev.Item["read"].(bool); ok && v {
		read = "read"
	}
	title := firstNonEmpty(ev.Item, "title", "message", "body")
	_, err := fmt.Fprintf(p.out, "%s [%s] #%s %s (%s)\n", marker, ev.Source, ev.Item.ID(), title, read)
	return err
}

func firstNonEmpty(rec entity.Record, fields ...string) string {
	for _, f := range fields {
		if v := strings.TrimSpace(entity.Display(rec[f])); v != "" {
			return v
		}
	}
	return ""
}
