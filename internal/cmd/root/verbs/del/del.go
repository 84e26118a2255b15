package del

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Delete
)

var (
	deleteUse = Verb.String() + " <role> <resource> <id>"

	deleteShort = i18n.T("root.verbs.delete.deleteShort", "Delete a record")

	deleteLong = normalizers.LongDesc(i18n.T("root.verbs.delete.deleteLong",
		`Use delete to remove a record from a management page. You are asked to
confirm unless --force is given.`))

	deleteExamples = normalizers.Examples(i18n.T("root.verbs.delete.deleteExamples",
		fmt.Sprintf(`
		# Delete category 4 after confirming
		%[1]s delete admin categories 4
		# Delete a wishlist entry without prompting
		%[1]s delete buyer wishlists 18 --force
		`, meta.CLIName)))
)

func NewDeleteCmd() (*cobra.Command, error) {
	var force bool
	c := &cobra.Command{
		Use:     deleteUse,
		Short:   deleteShort,
		Long:    deleteLong,
		Example: deleteExamples,
		Aliases: []string{"d", "rm"},
		Args:    verbs.ResourceArgs("id"),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
			cmd.SetDeleteForce(c, force)
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			res, err := helper.GetResource(args[0], args[1])
			if err != nil {
				return err
			}
			// Pages without delete fail in the mutator; only prompt for real deletes.
			if res.Can(catalog.CanDelete) {
				if err := cmd.ConfirmDelete(helper, fmt.Sprintf("%s %s", res.Key(), args[2])); err != nil {
					return err
				}
			}
			return cmd.RunMutation(helper, datasource.Delete())
		},
	}
	c.Flags().BoolVar(&force, common.ForceFlagName, false, "Skip the confirmation prompt.")
	return c, nil
}
