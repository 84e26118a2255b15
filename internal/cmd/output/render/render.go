// Package render prints storefront records in the output format selected for
// the command: tables for text, segmentio printers for json and yaml, with
// an optional jq filter in front of the structured formats.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/segmentio/cli"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/output/jq"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

const maxCellWidth = 48

// Options controls how a command prints.
type Options struct {
	Format common.OutputFormat
	JQ     jq.Settings
	// Columns limits and orders the fields of text tables. Empty means
	// every field, id first.
	Columns []string
	// Empty is printed instead of an empty text table.
	Empty string
}

// ResolveOptions reads the output format and jq settings of the running
// command and validates the combination.
func ResolveOptions(helper cmd.Helper) (Options, error) {
	format, err := helper.GetOutputFormat()
	if err != nil {
		return Options{}, err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return Options{}, err
	}
	settings, err := jq.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return Options{}, err
	}
	if err := jq.ValidateOutputFormat(format, settings); err != nil {
		return Options{}, err
	}
	return Options{Format: format, JQ: settings}, nil
}

// Collection prints a list of records.
func Collection(out io.Writer, items entity.Collection, opts Options) error {
	if items == nil {
		items = entity.Collection{}
	}
	if opts.Format == common.TEXT {
		if len(items) == 0 {
			_, err := fmt.Fprintln(out, orDefault(opts.Empty, "No data"))
			return err
		}
		return Table(out, columnsFor(items, opts.Columns), items)
	}
	return structured(out, []entity.Record(items), opts)
}

// Record prints one record. Text output is a two column field/value table.
func Record(out io.Writer, rec entity.Record, opts Options) error {
	if opts.Format == common.TEXT {
		t := newWriter(out)
		t.AppendHeader(table.Row{"FIELD", "VALUE"})
		for _, key := range columnsFor(entity.Collection{rec}, opts.Columns) {
			t.AppendRow(table.Row{key, entity.Display(rec[key])})
		}
		t.Render()
		return nil
	}
	return structured(out, rec, opts)
}

// Value prints an arbitrary value through the structured printers, or with
// fmt for text output.
func Value(out io.Writer, v any, opts Options) error {
	if opts.Format == common.TEXT {
		_, err := fmt.Fprintln(out, v)
		return err
	}
	return structured(out, v, opts)
}

// Table renders items as a table with the given columns.
func Table(out io.Writer, columns []string, items entity.Collection) error {
	t := newWriter(out)
	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = strings.ToUpper(strings.ReplaceAll(col, "_", " "))
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: maxCellWidth, WidthMaxEnforcer: text.Trim}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)
	for _, rec := range items {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = entity.Display(rec[col])
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func newWriter(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func structured(out io.Writer, v any, opts Options) error {
	filtered, written, err := jq.Apply(v, opts.Format, opts.JQ, out)
	if err != nil {
		return err
	}
	if written {
		return nil
	}
	printer, err := cli.Format(opts.Format.String(), out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(filtered)
	return nil
}

// columnsFor returns the requested columns, or every field present in items
// with id first and the rest sorted.
func columnsFor(items entity.Collection, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	seen := map[string]bool{}
	var keys []string
	for _, rec := range items {
		for k := range rec {
			if !seen[k] && k != "id" {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return append([]string{"id"}, keys...)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
