package listen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/config"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/notifications"
	"github.com/storefront-hq/storectl/internal/storefront/realtime"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

const (
	Verb = verbs.Listen

	archiveFlagName      = "archive"
	templateFlagName     = "template"
	pollIntervalFlagName = "poll-interval"
	noRealtimeFlagName   = "no-realtime"
	newOnlyFlagName      = "new-only"
	roleFlagName         = "role"
)

var (
	listenUse = Verb.String()

	listenShort = i18n.T("root.verbs.listen.short", "Listen for storefront events")
	listenLong  = normalizers.LongDesc(i18n.T("root.verbs.listen.long",
		`Use listen to follow live storefront event streams.`))

	notificationsShort = i18n.T("root.verbs.listen.notifications.short", "Follow the notification feed")
	notificationsLong  = normalizers.LongDesc(i18n.T("root.verbs.listen.notifications.long",
		`Follow back office notifications until interrupted.

The feed is fetched once, then kept current by polling and, when the server
offers it, by a realtime subscription. Notifications seen through both
channels are printed once. Output lines can be shaped with --template, a Go
text/template with the sprig function library applied to {source, new, item}.`))
	notificationsExamples = normalizers.Examples(i18n.T("root.verbs.listen.notifications.examples",
		fmt.Sprintf(`
		# Follow notifications
		%[1]s listen notifications
		# Only notifications that arrive from now on, archived to disk
		%[1]s listen notifications --new-only --archive
		# Custom line format
		%[1]s listen notifications --template '{{ .item.created_at }} {{ .item.title | upper }}'
		# JSON lines
		%[1]s listen notifications -o json
		`, meta.CLIName)))
)

type options struct {
	archive      bool
	template     string
	pollInterval time.Duration
	noRealtime   bool
	newOnly      bool
	role         string
}

// NewListenCmd builds the listen verb.
func NewListenCmd() (*cobra.Command, error) {
	c := &cobra.Command{
		Use:     listenUse,
		Short:   listenShort,
		Long:    listenLong,
		Aliases: []string{"lsn", "tail"},
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			c.SetContext(context.WithValue(c.Context(), verbs.Verb, Verb))
		},
	}
	c.AddCommand(newNotificationsCmd())
	return c, nil
}

func newNotificationsCmd() *cobra.Command {
	opts := &options{}
	c := &cobra.Command{
		Use:     "notifications",
		Short:   notificationsShort,
		Long:    notificationsLong,
		Example: notificationsExamples,
		Aliases: []string{"notification", "n"},
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return opts.run(cmd.BuildHelper(c, args))
		},
	}
	c.Flags().BoolVar(&opts.archive, archiveFlagName, false,
		"Append every new notification to the profile's notification archive.")
	c.Flags().StringVar(&opts.template, templateFlagName, "",
		"Go template (with sprig functions) used to print each notification.")
	c.Flags().DurationVar(&opts.pollInterval, pollIntervalFlagName, 0,
		fmt.Sprintf(`Interval between list refreshes.
- Config path: [ %s ]
- Default    : [ %s ]`, config.PollIntervalConfigPath, config.DefaultPollInterval))
	c.Flags().BoolVar(&opts.noRealtime, noRealtimeFlagName, false,
		"Poll only, without opening the realtime subscription.")
	c.Flags().BoolVar(&opts.newOnly, newOnlyFlagName, false,
		"Skip the notifications that exist when listening starts.")
	c.Flags().StringVar(&opts.role, roleFlagName, string(catalog.RoleAdmin),
		"Role whose notification page is followed.")
	return c
}

func (o *options) run(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	res, err := helper.GetResource(o.role, notifications.DefaultResource)
	if err != nil {
		return err
	}
	format, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	printer, err := newEventPrinter(helper.GetStreams().Out, format, o.template, o.newOnly)
	if err != nil {
		return err
	}
	client, err := helper.GetStorefrontClient()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	interval := o.pollInterval
	if interval <= 0 {
		interval = cfg.GetDurationOrElse(config.PollIntervalConfigPath, config.DefaultPollInterval)
	}

	var subscriber notifications.Subscriber
	if !o.noRealtime {
		url := cfg.GetString(config.RealtimeURLConfigPath)
		if url == "" {
			if url, err = realtime.URLFromBase(client.BaseURL()); err != nil {
				return &cmd.ConfigurationError{Err: err}
			}
		}
		subscriber = realtime.New(url, client)
	}

	feed := notifications.New(client, subscriber, notifications.Config{
		Role:         string(res.Role),
		Resource:     res.Name,
		Envelope:     res.Envelope,
		Channel:      cfg.GetString(config.RealtimeChannelConfigPath),
		PollInterval: interval,
	})

	if o.archive {
		paths := notifications.ResolvePaths(filepath.Dir(cfg.GetPath()), cfg.GetProfile())
		archive, err := notifications.OpenArchive(paths)
		if err != nil {
			return cmd.PrepareExecutionErrorWithHelper(helper, "failed to open notification archive", err)
		}
		feed.WithArchive(archive)
		logger.Info("archiving notifications", "path", archive.Path())
	}

	feed.OnChange(func(ev notifications.Event) {
		if err := printer.Print(ev); err != nil {
			logger.Warn("failed to print notification", "error", err.Error())
		}
	})

	ctx := log.WithRequestLogContext(helper.GetContext(), log.RequestLogContext{
		CommandPath: helper.GetCmd().CommandPath(),
		CommandVerb: Verb.String(),
		View:        "feed",
	})
	if err := feed.Run(ctx); err != nil {
		return cmd.PrepareStorefrontError(helper, "error fetching notifications", err)
	}
	return nil
}
