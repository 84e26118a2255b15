package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/build"
	"github.com/storefront-hq/storectl/internal/cmd"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	profilecmd "github.com/storefront-hq/storectl/internal/cmd/root/profile"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/action"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/block"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/create"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/del"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/get"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/list"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/listen"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/login"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/logout"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/resources"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/status"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/update"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/upload"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs/view"
	"github.com/storefront-hq/storectl/internal/cmd/root/version"
	"github.com/storefront-hq/storectl/internal/config"
	"github.com/storefront-hq/storectl/internal/iostreams"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/profile"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/util"
	"github.com/storefront-hq/storectl/internal/util/i18n"
	"github.com/storefront-hq/storectl/internal/util/normalizers"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  storectl manages a storefront back office from the command line.

  Every management page (buyers, sellers, orders, ads, ...) is addressed by
  the role that owns it and its resource name. Run "storectl resources" to
  see them all.`))

	rootShort = i18n.T("root/rootShort", fmt.Sprintf("%s manages storefront back offices", meta.CLIName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the Configuration file path,
	configFilePath        string
	defaultConfigFilePath string
	currProfile           = profile.DefaultProfile

	currConfig   config.Hook
	streams      *iostreams.IOStreams
	pMgr         profile.Manager
	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)

	buildInfo *build.Info
	logger    *slog.Logger
	logFile   io.Closer
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           meta.CLIName,
		Short:         rootShort,
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			ctx := context.WithValue(cmd.Context(), config.ConfigKey, currConfig)
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, profile.ProfileManagerKey, pMgr)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = context.WithValue(ctx, catalog.Key, catalog.Default())
			ctx = log.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName,
		defaultConfigFilePath,
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	rootCmd.PersistentFlags().StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		profile.DefaultProfile,
		"Specify the profile to use for this command.")

	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level. Records go to the log file.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))

	rootCmd.PersistentFlags().String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write structured logs to this file.
- Config path: [ %s ]`, common.LogFileConfigPath))

	rootCmd.PersistentFlags().String(common.BaseURLFlagName, "",
		fmt.Sprintf(`Base URL of the storefront API.
- Config path: [ %s ]`, common.BaseURLConfigPath))

	rootCmd.PersistentFlags().String(common.TokenFlagName, "",
		fmt.Sprintf(`Bearer token to use instead of the stored session.
- Config path: [ %s ]`, common.TokenConfigPath))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(profilecmd.NewProfileCmd())

	builders := []func() (*cobra.Command, error){
		list.NewListCmd,
		get.NewGetCmd,
		view.NewViewCmd,
		create.NewCreateCmd,
		update.NewUpdateCmd,
		del.NewDeleteCmd,
		block.NewBlockCmd,
		block.NewUnblockCmd,
		status.NewStatusCmd,
		action.NewActionCmd,
		upload.NewUploadCmd,
		listen.NewListenCmd,
		login.NewLoginCmd,
		logout.NewLogoutCmd,
		resources.NewResourcesCmd,
	}
	for _, newCmd := range builders {
		c, e := newCmd()
		if e != nil {
			return e
		}
		rootCmd.AddCommand(c)
	}
	return nil
}

func init() {
	var err error
	defaultConfigFilePath, err = config.GetDefaultConfigFilePath()
	util.CheckError(err)
	configFilePath = defaultConfigFilePath

	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err = addCommands()
	util.CheckError(err)

	// Because the profile is not part of the configuration, we can't use viper
	// to read it following it's built in priorities.  So here we look for a well known
	// profile variable and set our package level variable if it's set before
	// continuing to process the command run.  This creates a ENV_VAR < CLI_FLAG priority
	profileEnvVar, found := os.LookupEnv(meta.EnvPrefix + "_PROFILE")
	if found {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	config, e1 := config.GetConfig(configFilePath, currProfile, defaultConfigFilePath)
	util.CheckError(e1)
	currConfig = config

	pMgr = profile.NewManager(config.Viper)

	bindings := []struct{ flag, path string }{
		{common.OutputFlagName, common.OutputConfigPath},
		{common.LogLevelFlagName, common.LogLevelConfigPath},
		{common.LogFileFlagName, common.LogFileConfigPath},
		{common.BaseURLFlagName, common.BaseURLConfigPath},
		{common.TokenFlagName, common.TokenConfigPath},
	}
	for _, b := range bindings {
		f := rootCmd.PersistentFlags().Lookup(b.flag)
		util.CheckError(config.BindFlag(b.path, f))
	}
}

// initLogger opens the configured log file. Error records are always
// mirrored to stderr in the friendly format.
func initLogger() error {
	if logger != nil {
		return nil
	}
	var file io.Writer
	if path := strings.TrimSpace(currConfig.GetString(common.LogFileConfigPath)); path != "" {
		path = os.ExpandEnv(path)
		if err := util.InitDir(path, 0o755); err != nil {
			return &cmd.ConfigurationError{Err: fmt.Errorf("failed to create log directory: %w", err)}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return &cmd.ConfigurationError{Err: fmt.Errorf("failed to open log file: %w", err)}
		}
		file, logFile = f, f
	}
	logger = log.NewLogger(file, streams.ErrOut, currConfig.GetString(common.LogLevelConfigPath))
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) int {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	defer func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	reportError(err)
	return 1
}

// reportError prints err once. Execution errors go through the logger, whose
// error mirror renders them for the terminal; everything else is printed
// with the formatter of the selected output.
func reportError(err error) {
	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) && logger != nil {
		msg := executionError.Msg
		if msg == "" {
			msg = executionError.Error()
		}
		logger.Error(msg, executionError.Attrs...)
		return
	}

	printer, perr := cli.Format(outputFormat.String(), streams.ErrOut)
	if perr != nil || outputFormat.String() == common.DefaultOutputFormat {
		fmt.Fprintf(streams.ErrOut, "Error: %v\n", err)
		return
	}
	defer printer.Flush()
	printer.Print(map[string]string{"error": err.Error()})
}
