package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/output/jq"
	"github.com/storefront-hq/storectl/internal/cmd/output/render"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Resources
)

var (
	resourcesUse = Verb.String() + " [role]"

	resourcesShort = i18n.T("root.verbs.resources.resourcesShort", "List the management pages")

	resourcesLong = normalizers.LongDesc(i18n.T("root.verbs.resources.resourcesLong",
		`Use resources to see every management page the CLI knows about, the role
owning it, and the actions and status values it accepts.`))

	resourcesExamples = normalizers.Examples(i18n.T("root.verbs.resources.resourcesExamples",
		fmt.Sprintf(`
		# Every page
		%[1]s resources
		# Pages of the rider role
		%[1]s resources rider
		`, meta.CLIName)))
)

var columns = []string{"role", "resource", "actions", "statuses", "order"}

func NewResourcesCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:     resourcesUse,
		Short:   resourcesShort,
		Long:    resourcesLong,
		Example: resourcesExamples,
		Aliases: []string{"pages"},
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args))
		},
	}
	jq.AddFlags(c.Flags())
	return c, nil
}

func run(helper cmd.Helper) error {
	outOpts, err := render.ResolveOptions(helper)
	if err != nil {
		return err
	}

	var role string
	if args := helper.GetArgs(); len(args) == 1 {
		role = strings.ToLower(strings.TrimSpace(args[0]))
	}

	var rows entity.Collection
	for _, res := range helper.GetCatalog().All() {
		if role != "" && string(res.Role) != role {
			continue
		}
		rows = append(rows, row(res))
	}
	if role != "" && len(rows) == 0 {
		return &cmd.ConfigurationError{Err: fmt.Errorf("no pages for role %q", role)}
	}

	outOpts.Columns = columns
	return render.Collection(helper.GetStreams().Out, rows, outOpts)
}

func row(res catalog.Resource) entity.Record {
	actions := make([]string, 0, len(res.Capabilities)+len(res.CustomActions))
	for _, c := range res.Capabilities {
		if c == catalog.CanBlock {
			actions = append(actions, "block", "unblock")
			continue
		}
		actions = append(actions, string(c))
	}
	actions = append(actions, res.CustomActions...)

	order := "server"
	if res.SortByID {
		order = "id"
	}
	return entity.Record{
		"role":     string(res.Role),
		"resource": res.Name,
		"actions":  strings.Join(actions, ","),
		"statuses": strings.Join(res.Statuses, ","),
		"order":    order,
		"columns":  strings.Join(res.Columns, ","),
	}
}
