package profile

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/output/render"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/profile"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

var (
	profileUse   = verbs.Profiles.String()
	profileShort = i18n.T("root.profile.profileShort", "List CLI profiles")
	profileLong  = normalizers.LongDesc(i18n.T("root.profile.profileLong",
		`The profiles command lists the profiles of the configuration file and the
storefront each one points at. Select a profile with --profile or the
STORECTL_PROFILE environment variable.`))
	profileExamples = normalizers.Examples(i18n.T("root.profile.profileExamples",
		fmt.Sprintf(`
		# List profiles
		%[1]s profiles
		# Run a command against the staging profile
		%[1]s list admin orders --profile staging
		`, meta.CLIName)))
)

func NewProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:     profileUse,
		Short:   profileShort,
		Long:    profileLong,
		Example: profileExamples,
		Aliases: []string{"profile"},
		Args:    cobra.NoArgs,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, verbs.Profiles))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			manager, ok := c.Context().Value(profile.ProfileManagerKey).(profile.Manager)
			if !ok || manager == nil {
				return &cmd.ConfigurationError{Err: fmt.Errorf("no profile manager configured")}
			}
			return run(helper, manager)
		},
	}
}

func run(helper cmd.Helper, manager profile.Manager) error {
	opts, err := render.ResolveOptions(helper)
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	rows := entity.Collection{}
	for _, name := range manager.GetProfiles() {
		settings, err := manager.GetProfile(name)
		if err != nil {
			return cmd.PrepareExecutionErrorFromErr(helper, err)
		}
		rows = append(rows, entity.Record{
			"name":     name,
			"current":  name == cfg.GetProfile(),
			"base_url": baseURL(settings),
		})
	}

	opts.Columns = []string{"name", "current", "base_url"}
	opts.Empty = "No profiles found"
	return render.Collection(helper.GetStreams().Out, rows, opts)
}

func baseURL(settings map[string]any) string {
	storefront, ok := settings["storefront"].(map[string]any)
	if !ok {
		return ""
	}
	url, _ := storefront[common.BaseURLFlagName].(string)
	return url
}
