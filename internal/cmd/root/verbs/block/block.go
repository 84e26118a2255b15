package block

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

var (
	blockShort = i18n.T("root.verbs.block.blockShort", "Block an account")
	blockLong  = normalizers.LongDesc(i18n.T("root.verbs.block.blockLong",
		`Use block to suspend a buyer, seller, rider or purchaser account.
Blocked accounts can no longer sign in to the storefront.`))
	blockExamples = normalizers.Examples(i18n.T("root.verbs.block.blockExamples",
		fmt.Sprintf(`
		# Block buyer 7
		%[1]s block admin buyers 7
		`, meta.CLIName)))

	unblockShort = i18n.T("root.verbs.unblock.unblockShort", "Unblock an account")
	unblockLong  = normalizers.LongDesc(i18n.T("root.verbs.unblock.unblockLong",
		`Use unblock to restore access to a previously blocked account.`))
	unblockExamples = normalizers.Examples(i18n.T("root.verbs.unblock.unblockExamples",
		fmt.Sprintf(`
		# Unblock seller 3
		%[1]s unblock admin sellers 3
		`, meta.CLIName)))
)

type commandSpec struct {
	verb    verbs.VerbValue
	short   string
	long    string
	example string
	action  func() datasource.Action
}

// NewBlockCmd builds the block verb.
func NewBlockCmd() (*cobra.Command, error) {
	return newCommand(commandSpec{
		verb:    verbs.Block,
		short:   blockShort,
		long:    blockLong,
		example: blockExamples,
		action:  datasource.Block,
	})
}

// NewUnblockCmd builds the unblock verb.
func NewUnblockCmd() (*cobra.Command, error) {
	return newCommand(commandSpec{
		verb:    verbs.Unblock,
		short:   unblockShort,
		long:    unblockLong,
		example: unblockExamples,
		action:  datasource.Unblock,
	})
}

func newCommand(spec commandSpec) (*cobra.Command, error) {
	return &cobra.Command{
		Use:     spec.verb.String() + " <role> <resource> <id>",
		Short:   spec.short,
		Long:    spec.long,
		Example: spec.example,
		Args:    verbs.ResourceArgs("id"),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, spec.verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.RunMutation(cmd.BuildHelper(c, args), spec.action())
		},
	}, nil
}
