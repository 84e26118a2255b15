package get

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/output/jq"
	"github.com/storefront-hq/storectl/internal/cmd/output/render"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Get
)

var (
	getUse = Verb.String() + " <role> <resource> <id>"

	getShort = i18n.T("root.verbs.get.getShort", "Show one record in detail")

	getLong = normalizers.LongDesc(i18n.T("root.verbs.get.getLong",
		`Use get to fetch the full detail of one record of a management page.`))

	getExamples = normalizers.Examples(i18n.T("root.verbs.get.getExamples",
		fmt.Sprintf(`
		# Show order 42
		%[1]s get admin orders 42
		# Only the line items of order 42
		%[1]s get admin orders 42 -o json --jq '.items'
		`, meta.CLIName)))
)

func NewGetCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:     getUse,
		Short:   getShort,
		Long:    getLong,
		Example: getExamples,
		Aliases: []string{"g"},
		Args:    verbs.ResourceArgs("id"),
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			cfg, err := cmd.BuildHelper(c, nil).GetConfig()
			if err != nil {
				return err
			}
			return jq.BindFlags(cfg, c.Flags())
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
	target, err := cmd.ResolveTarget(helper)
	if err != nil {
		return err
	}

	res := target.Resource
	detail := datasource.NewDetail(target.Client, datasource.NewStore(), res)
	defer detail.Close()

	id := entity.ID(helper.GetArgs()[2])
	rec, err := detail.Open(target.Context, id)
	if err != nil {
		fallback := fmt.Sprintf("error fetching %s %s", res.Name, id)
		if api.IsNotFound(err) {
			fallback = fmt.Sprintf("%s %s not found", res.Name, id)
		}
		return cmd.PrepareStorefrontError(helper, fallback, err)
	}
	return render.Record(helper.GetStreams().Out, rec, outOpts)
}
