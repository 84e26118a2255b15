package logout

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/session"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Logout
)

var (
	logoutUse = Verb.String()

	logoutShort = i18n.T("root.verbs.logout.logoutShort", "Remove the stored storefront session")

	logoutLong = normalizers.LongDesc(i18n.T("root.verbs.logout.logoutLong",
		`Use logout to delete the token and buyer id stored for the active profile.`))

	logoutExamples = normalizers.Examples(i18n.T("root.verbs.logout.logoutExamples",
		fmt.Sprintf(`
		# Log out of the default profile
		%[1]s logout
		# Log out of the staging profile
		%[1]s logout -p staging
		`, meta.CLIName)))
)

func NewLogoutCmd() (*cobra.Command, error) {
	return &cobra.Command{
		Use:     logoutUse,
		Short:   logoutShort,
		Long:    logoutLong,
		Example: logoutExamples,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			store, err := helper.GetSessionStore()
			if err != nil {
				return err
			}
			if err := session.Logout(store); err != nil {
				return cmd.PrepareExecutionErrorWithHelper(helper, "failed to remove session", err)
			}
			fmt.Fprintln(helper.GetStreams().Out, "Logged out")
			return nil
		},
	}, nil
}
