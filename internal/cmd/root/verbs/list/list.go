package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/output/jq"
	"github.com/storefront-hq/storectl/internal/cmd/output/render"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.List
)

var (
	listUse = Verb.String() + " <role> <resource>"

	listShort = i18n.T("root.verbs.list.listShort", "List the records of a management page")

	listLong = normalizers.LongDesc(i18n.T("root.verbs.list.listLong",
		`Use list to fetch the records of a storefront management page.

The page is addressed by the role that owns it and the resource name, as shown
by the resources command. Results keep the ordering of the page: server order,
or ascending id for pages that sort client side.`))

	listExamples = normalizers.Examples(i18n.T("root.verbs.list.listExamples",
		fmt.Sprintf(`
		# List the buyers of the admin back office
		%[1]s list admin buyers
		# Search orders by buyer name
		%[1]s list admin orders --search ada
		# Only pending orders, as JSON
		%[1]s list admin orders --status pending -o json
		# Names of blocked sellers
		%[1]s list admin sellers -o json --jq '.[] | select(.blocked) | .name' -r
		`, meta.CLIName)))
)

type listOptions struct {
	search string
	status string
}

func NewListCmd() (*cobra.Command, error) {
	opts := &listOptions{}
	c := &cobra.Command{
		Use:     listUse,
		Short:   listShort,
		Long:    listLong,
		Example: listExamples,
		Aliases: []string{"ls", "l"},
		Args:    verbs.ResourceArgs(),
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			return bindFlags(c)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return opts.run(cmd.BuildHelper(c, args))
		},
	}

	c.Flags().StringVar(&opts.search, common.SearchFlagName, "",
		"Filter the list with the page's search query.")
	c.Flags().StringVar(&opts.status, common.StatusFlagName, "",
		"Only return records with this status (pages that support status filtering).")
	jq.AddFlags(c.Flags())

	return c, nil
}

func bindFlags(c *cobra.Command) error {
	helper := cmd.BuildHelper(c, nil)
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	return jq.BindFlags(cfg, c.Flags())
}

func (o *listOptions) run(helper cmd.Helper) error {
	outOpts, err := render.ResolveOptions(helper)
	if err != nil {
		return err
	}
	target, err := cmd.ResolveTarget(helper)
	if err != nil {
		return err
	}

	res := target.Resource
	list := datasource.NewList(target.Client, datasource.NewStore(), res)
	q := datasource.Query{Search: o.search, Status: o.status}
	if err := list.Load(target.Context, q); err != nil {
		return cmd.PrepareStorefrontError(helper, "error fetching "+res.Name, err)
	}

	outOpts.Columns = res.Columns
	outOpts.Empty = fmt.Sprintf("No %s found", res.Name)
	return render.Collection(helper.GetStreams().Out, list.State().Items, outOpts)
}
