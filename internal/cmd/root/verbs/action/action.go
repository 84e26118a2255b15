package action

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
	Verb = verbs.Action
)

var (
	actionUse = Verb.String() + " <role> <resource> <id> <name>"

	actionShort = i18n.T("root.verbs.action.actionShort", "Run a page specific action on a record")

	actionLong = normalizers.LongDesc(i18n.T("root.verbs.action.actionLong",
		`Use action to call one of the extra actions a page exposes, such as
verifying a seller or marking a notification as read. The fields given with
--set are applied to the record locally once the server accepts the action.`))

	actionExamples = normalizers.Examples(i18n.T("root.verbs.action.actionExamples",
		fmt.Sprintf(`
		# Verify seller 3
		%[1]s action admin sellers 3 verify --set verified=true
		# Mark notification 12 as read
		%[1]s action admin notifications 12 read
		`, meta.CLIName)))
)

func NewActionCmd() (*cobra.Command, error) {
	var assignments []string
	c := &cobra.Command{
		Use:     actionUse,
		Short:   actionShort,
		Long:    actionLong,
		Example: actionExamples,
		Args:    verbs.ResourceArgs("id", "name"),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			patch, err := cmd.ParseAssignments(assignments)
			if err != nil {
				return err
			}
			return cmd.RunMutation(helper, datasource.Custom(args[3], patch))
		},
	}
	c.Flags().StringArrayVar(&assignments, common.SetFlagName, nil,
		"Field to update locally after the action succeeds, as key=value. Repeatable.")
	return c, nil
}
