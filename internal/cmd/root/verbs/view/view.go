package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/output/jq"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/tui"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.View
)

var (
	viewUse = Verb.String() + " <role> <resource>"

	viewShort = i18n.T("root.verbs.view.viewShort", "Open a management page in an interactive terminal UI")

	viewLong = normalizers.LongDesc(i18n.T("root.verbs.view.viewLong",
		`Use view to browse a management page interactively.

The page lists the records of the resource. Typing a search refetches the list
as you type; only the latest search is ever shown. Enter opens the detail of the
selected record, and the row actions the resource accepts (block, unblock,
status, delete) update the list and the open detail in place.`))

	viewExamples = normalizers.Examples(i18n.T("root.verbs.view.viewExamples",
		fmt.Sprintf(`
		# Browse buyers
		%[1]s view admin buyers
		# Start with a search
		%[1]s view admin orders --search ada
		`, meta.CLIName)))
)

type viewOptions struct {
	search string
}

func NewViewCmd() (*cobra.Command, error) {
	opts := &viewOptions{}
	c := &cobra.Command{
		Use:     viewUse,
		Short:   viewShort,
		Long:    viewLong,
		Example: viewExamples,
		Aliases: []string{"v"},
		Args:    verbs.ResourceArgs(),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
		RunE: func(c *cobra.Command, args []string) error {
			return opts.run(cmd.BuildHelper(c, args))
		},
	}
	c.Flags().StringVar(&opts.search, common.SearchFlagName, "",
		"Initial search query.")
	return c, nil
}

func (o *viewOptions) run(helper cmd.Helper) error {
	streams := helper.GetStreams()
	if !streams.IsInteractive() {
		return &cmd.ConfigurationError{
			Err: fmt.Errorf("%s needs an interactive terminal, use `%s list %s` instead",
				Verb, meta.CLIName, strings.Join(helper.GetArgs(), " ")),
		}
	}

	target, err := cmd.ResolveTarget(helper)
	if err != nil {
		return err
	}

	theme := ""
	if cfg, err := helper.GetConfig(); err == nil && jq.ShouldUseColor(common.ColorModeAuto, streams.Out) {
		theme = jq.DefaultTheme
		if configured := strings.TrimSpace(cfg.GetString(jq.ColorThemeConfigPath)); configured != "" {
			theme = configured
		}
	}

	// Error records would be mirrored to stderr underneath the alt screen.
	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	model := tui.New(target.Context, target.Client, target.Resource, tui.Options{
		Search: o.search,
		Theme:  theme,
	})
	if err := tui.Run(target.Context, streams.In, streams.Out, model); err != nil {
		return cmd.PrepareExecutionError("view failed", err, helper.GetCmd())
	}
	return nil
}
