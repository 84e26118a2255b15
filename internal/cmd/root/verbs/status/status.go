package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/datasource"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Status
)

var (
	statusUse = Verb.String() + " <role> <resource> <id> <value>"

	statusShort = i18n.T("root.verbs.status.statusShort", "Change the status of a record")

	statusLong = normalizers.LongDesc(i18n.T("root.verbs.status.statusLong",
		`Use status to move an order, promotion or other status driven record to a
new status. The accepted values depend on the page and are listed by the
resources command.`))

	statusExamples = normalizers.Examples(i18n.T("root.verbs.status.statusExamples",
		fmt.Sprintf(`
		# Mark order 42 as dispatched
		%[1]s status admin orders 42 dispatched
		# Deactivate promotion 5
		%[1]s status admin promotions 5 inactive
		`, meta.CLIName)))
)

func NewStatusCmd() (*cobra.Command, error) {
	return &cobra.Command{
		Use:     statusUse,
		Short:   statusShort,
		Long:    statusLong,
		Example: statusExamples,
		Args:    verbs.ResourceArgs("id", "value"),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[3])
			return cmd.RunMutation(cmd.BuildHelper(c, args), datasource.UpdateStatus(value))
		},
	}, nil
}
