package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/build"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/cmd/root/verbs"
	"github.com/storefront-hq/storectl/internal/config"
	"github.com/storefront-hq/storectl/internal/iostreams"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/session"
	"github.com/storefront-hq/storectl/internal/storefront/api"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
	"github.com/storefront-hq/storectl/internal/storefront/httpclient"
)

type Helper interface {
	GetCmd() *cobra.Command
	GetArgs() []string
	GetVerb() (verbs.VerbValue, error)
	GetStreams() *iostreams.IOStreams
	GetConfig() (config.Hook, error)
	GetOutputFormat() (common.OutputFormat, error)
	GetLogger() (*slog.Logger, error)
	GetBuildInfo() (*build.Info, error)
	GetContext() context.Context
	GetCatalog() *catalog.Catalog
	GetResource(role, name string) (catalog.Resource, error)
	GetSessionStore() (session.Store, error)
	GetStorefrontClient() (*api.Client, error)
}

type clientFactoryKey struct{}

// ClientFactoryKey stores the ClientFactory used by GetStorefrontClient.
var ClientFactoryKey = clientFactoryKey{}

// ClientFactory builds the storefront HTTP client for one command run.
type ClientFactory func(cfg config.Hook, logger *slog.Logger, store session.Store, info *build.Info) (*api.Client, error)

// DefaultClientFactory wires the logging transport and the session token
// provider into an api.Client configured from cfg.
func DefaultClientFactory(cfg config.Hook, logger *slog.Logger, store session.Store, info *build.Info) (*api.Client, error) {
	version := ""
	if info != nil {
		version = info.Version
	}
	retries := cfg.GetIntOrElse(config.RetriesConfigPath, config.DefaultRetries)
	if retries < 0 {
		retries = 0
	}
	return api.NewClient(api.Config{
		BaseURL:   cfg.GetString(common.BaseURLConfigPath),
		Timeout:   cfg.GetDurationOrElse(config.TimeoutConfigPath, config.DefaultTimeout),
		Retries:   uint64(retries),
		UserAgent: meta.UserAgent(version),
	}, httpclient.NewLoggingHTTPClient(logger), session.NewProvider(store, cfg.GetString(common.TokenConfigPath)))
}

type CommandHelper struct {
	// Cmd is a pointer to the command that is being executed
	Cmd *cobra.Command
	// Args are the arguments (not flags) passed to the command
	Args []string
}

func (r *CommandHelper) GetCmd() *cobra.Command {
	return r.Cmd
}

func (r *CommandHelper) GetArgs() []string {
	return r.Args
}

func (r *CommandHelper) GetBuildInfo() (*build.Info, error) {
	info, ok := r.GetContext().Value(build.InfoKey).(*build.Info)
	if !ok || info == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("no build info configured"),
		}
	}
	return info, nil
}

func (r *CommandHelper) GetLogger() (*slog.Logger, error) {
	rv, ok := r.GetContext().Value(log.LoggerKey).(*slog.Logger)
	if !ok || rv == nil {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("no logger configured"),
		}
	}
	return rv, nil
}

func (r *CommandHelper) GetVerb() (verbs.VerbValue, error) {
	verbVal, ok := r.GetContext().Value(verbs.Verb).(verbs.VerbValue)
	if !ok {
		return "", PrepareExecutionErrorMsg(r, "no verb found in context")
	}
	return verbVal, nil
}

func (r *CommandHelper) GetStreams() *iostreams.IOStreams {
	if s, ok := r.GetContext().Value(iostreams.StreamsKey).(*iostreams.IOStreams); ok && s != nil {
		return s
	}
	return iostreams.GetOSIOStreams()
}

func (r *CommandHelper) GetConfig() (config.Hook, error) {
	cfgVal, ok := r.GetContext().Value(config.ConfigKey).(config.Hook)
	if !ok || cfgVal == nil {
		return nil, PrepareExecutionErrorMsg(r, "no config found in context")
	}
	return cfgVal, nil
}

func (r *CommandHelper) GetOutputFormat() (common.OutputFormat, error) {
	c, e := r.GetConfig()
	if e != nil {
		return common.TEXT, e
	}
	s := c.GetString(common.OutputConfigPath)
	if s == "" {
		return common.TEXT, nil
	}
	rv, e := common.OutputFormatStringToIota(s)
	if e != nil {
		return common.TEXT, &ConfigurationError{Err: e}
	}
	return rv, nil
}

func (r *CommandHelper) GetContext() context.Context {
	if ctx := r.Cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (r *CommandHelper) GetCatalog() *catalog.Catalog {
	if c, ok := r.GetContext().Value(catalog.Key).(*catalog.Catalog); ok && c != nil {
		return c
	}
	return catalog.Default()
}

func (r *CommandHelper) GetResource(role, name string) (catalog.Resource, error) {
	res, err := r.GetCatalog().Lookup(role, name)
	if err != nil {
		return catalog.Resource{}, &ConfigurationError{
			Err: fmt.Errorf("%w (run `%s resources` to see the available pages)", err, meta.CLIName),
		}
	}
	return res, nil
}

func (r *CommandHelper) GetSessionStore() (session.Store, error) {
	cfg, err := r.GetConfig()
	if err != nil {
		return nil, err
	}
	store, err := session.NewStore(
		cfg.GetString(config.SessionBackendConfigPath),
		filepath.Dir(cfg.GetPath()),
		cfg.GetProfile(),
	)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return store, nil
}

func (r *CommandHelper) GetStorefrontClient() (*api.Client, error) {
	cfg, err := r.GetConfig()
	if err != nil {
		return nil, err
	}
	logger, err := r.GetLogger()
	if err != nil {
		return nil, err
	}
	store, err := r.GetSessionStore()
	if err != nil {
		return nil, err
	}
	info, _ := r.GetBuildInfo()

	factory, ok := r.GetContext().Value(ClientFactoryKey).(ClientFactory)
	if !ok || factory == nil {
		factory = DefaultClientFactory
	}
	client, err := factory(cfg, logger, store, info)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return client, nil
}

func BuildHelper(cmd *cobra.Command, args []string) Helper {
	return &CommandHelper{
		Cmd:  cmd,
		Args: args,
	}
}

// ConfigurationError represents errors that are a result of bad flags, combinations of
// flags, configuration settings, environment values, or other command usage issues.
type ConfigurationError struct {
	Err error
}

// ExecutionError represents errors that occur after a command has been validated and an
// unsuccessful result occurs.  Network errors, server side errors, invalid credentials or responses
// are examples of ExecutionError types.
type ExecutionError struct {
	// friendly error message to display to the user
	Msg string
	// Err is the error that occurred during execution
	Err error
	// Optional attributes that can be used to provide additional context to the error
	Attrs []any
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Will try and json unmarshal an error string into a slice of interfaces
// that match the slog algorithm for varadic parameters (alternating key value pairs)
func TryConvertErrorToAttrs(err error) []any {
	var result map[string]any
	umError := json.Unmarshal([]byte(err.Error()), &result)
	if umError != nil {
		return nil
	}
	attrs := make([]any, 0, len(result)*2)
	for k, v := range result {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// PrepareExecutionErrorWithHelper mirrors PrepareExecutionError but accepts a Helper.
// It ensures command usage/error output is silenced for runtime failures.
func PrepareExecutionErrorWithHelper(helper Helper, msg string, err error, attrs ...any) *ExecutionError {
	if helper == nil {
		return PrepareExecutionError(msg, err, nil, attrs...)
	}
	return PrepareExecutionError(msg, err, helper.GetCmd(), attrs...)
}

// PrepareExecutionErrorFromErr converts an arbitrary error into an ExecutionError while
// silencing usage/error output on the associated command. The friendly message defaults
// to the underlying error string.
func PrepareExecutionErrorFromErr(helper Helper, err error, attrs ...any) *ExecutionError {
	if err == nil {
		return nil
	}
	return PrepareExecutionErrorWithHelper(helper, err.Error(), err, attrs...)
}

// PrepareExecutionErrorMsg builds an ExecutionError from a message when a backing error
// is not already available.
func PrepareExecutionErrorMsg(helper Helper, msg string, attrs ...any) *ExecutionError {
	if msg == "" {
		return PrepareExecutionErrorWithHelper(helper, msg, errors.New("an unknown error occurred"), attrs...)
	}
	return PrepareExecutionErrorWithHelper(helper, msg, errors.New(msg), attrs...)
}

// PrepareStorefrontError maps a storefront failure to an ExecutionError whose
// message is what a user of the back office would see: the server's message
// when it sent one, otherwise fallback. Expired sessions point at login.
func PrepareStorefrontError(helper Helper, fallback string, err error) *ExecutionError {
	msg := api.UserMessage(err, fallback)
	if errors.Is(err, session.ErrNoToken) {
		msg = "not logged in"
	}
	attrs := []any{"error", err.Error()}
	if kind := api.KindOf(err); kind != 0 {
		attrs = append(attrs, "kind", kind.String())
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		attrs = append(attrs, "status", apiErr.StatusCode)
	}
	if api.IsAuthExpired(err) || errors.Is(err, session.ErrNoToken) {
		attrs = append(attrs, "suggestion", fmt.Sprintf("run `%s login`", meta.CLIName))
	}
	return PrepareExecutionErrorWithHelper(helper, msg, err, attrs...)
}

// This will construct an execution error AND turn off error and usage output for the command
func PrepareExecutionError(msg string, err error, cmd *cobra.Command, attrs ...any) *ExecutionError {
	if cmd != nil {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
	}

	return &ExecutionError{
		Msg:   msg,
		Err:   err,
		Attrs: attrs,
	}
}
