package update

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Update
)

var (
	updateUse = Verb.String() + " <role> <resource> <id>"

	updateShort = i18n.T("root.verbs.update.updateShort", "Update fields of a record")

	updateLong = normalizers.LongDesc(i18n.T("root.verbs.update.updateLong",
		`Use update to change fields of a record. Each --set flag takes key=value;
values that read as JSON (numbers, true/false, null, arrays, objects) are sent
with that type, anything else is sent as a string.`))

	updateExamples = normalizers.Examples(i18n.T("root.verbs.update.updateExamples",
		fmt.Sprintf(`
		# Rename category 4
		%[1]s update admin categories 4 --set name=Garden
		# Change price and stock of an ad
		%[1]s update seller ads 9 --set price=12.5 --set quantity=3
		`, meta.CLIName)))
)

func NewUpdateCmd() (*cobra.Command, error) {
	var assignments []string
	c := &cobra.Command{
		Use:     updateUse,
		Short:   updateShort,
		Long:    updateLong,
		Example: updateExamples,
		Aliases: []string{"edit"},
		Args:    verbs.ResourceArgs("id"),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			if len(assignments) == 0 {
				return &cmd.ConfigurationError{Err: fmt.Errorf("at least one --%s is required", common.SetFlagName)}
			}
			fields, err := cmd.ParseAssignments(assignments)
			if err != nil {
				return err
			}
			return cmd.RunMutation(helper, datasource.Update(fields))
		},
	}
	c.Flags().StringArrayVar(&assignments, common.SetFlagName, nil, "Field to change, as key=value. Repeatable.")
	return c, nil
}
