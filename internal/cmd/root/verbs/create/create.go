package create

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/output/render"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Create
)

var (
	createUse = Verb.String() + " <role> <resource>"

	createShort = i18n.T("root.verbs.create.createShort", "Create a record")

	createLong = normalizers.LongDesc(i18n.T("root.verbs.create.createLong",
		`Use create to add a record to a page that accepts new entries, such as
categories, tiers or seller ads. Fields are given with --set key=value.`))

	createExamples = normalizers.Examples(i18n.T("root.verbs.create.createExamples",
		fmt.Sprintf(`
		# Add a category
		%[1]s create admin categories --set name=Garden --set description="Outdoor and plants"
		# Add a subscription tier
		%[1]s create admin tiers --set name=Gold --set price=20 --set max_ads=50
		`, meta.CLIName)))
)

func NewCreateCmd() (*cobra.Command, error) {
	var assignments []string
	c := &cobra.Command{
		Use:     createUse,
		Short:   createShort,
		Long:    createLong,
		Example: createExamples,
		Aliases: []string{"c"},
		Args:    verbs.ResourceArgs(),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args), assignments)
		},
	}
	c.Flags().StringArrayVar(&assignments, common.SetFlagName, nil, "Field of the new record, as key=value. Repeatable.")
	return c, nil
}

func run(helper cmd.Helper, assignments []string) error {
	if len(assignments) == 0 {
		return &cmd.ConfigurationError{Err: fmt.Errorf("at least one --%s is required", common.SetFlagName)}
	}
	fields, err := cmd.ParseAssignments(assignments)
	if err != nil {
		return err
	}
	outOpts, err := render.ResolveOptions(helper)
	if err != nil {
		return err
	}
	target, err := cmd.ResolveTarget(helper)
	if err != nil {
		return err
	}

	streams := helper.GetStreams()
	printer := cmd.NewFeedbackPrinter(streams.ErrOut)
	rec, err := target.NewMutator(printer).Create(target.Context, fields)
	if err != nil {
		return printer.Err(helper, err)
	}
	return render.Record(streams.Out, rec, outOpts)
}
