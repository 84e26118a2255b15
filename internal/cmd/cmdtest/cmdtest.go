// Package cmdtest runs storectl commands against in-memory configuration and
// streams.
package cmdtest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/storefront-hq/storectl/internal/build"
	"github.com/storefront-hq/storectl/internal/cmd/common"
	"github.com/storefront-hq/storectl/internal/config"
	"github.com/storefront-hq/storectl/internal/iostreams"
	"github.com/storefront-hq/storectl/internal/log"
	"github.com/storefront-hq/storectl/internal/storefront/catalog"
)

// Env is the execution environment of a command under test.
type Env struct {
	Config  *config.ProfiledConfig
	Streams *iostreams.IOStreams
	In      *bytes.Buffer
	Out     *bytes.Buffer
	ErrOut  *bytes.Buffer
	// Dir holds the config file path and the file session store.
	Dir string
}

// New returns an Env pointed at baseURL with a token override so no login is
// needed, text output and no retries.
func New(t *testing.T, baseURL string) *Env {
	t.Helper()
	dir := t.TempDir()
	cfg := config.BuildProfiledConfig("default", filepath.Join(dir, "config.yaml"), viper.New())
	cfg.Set(common.BaseURLConfigPath, baseURL)
	cfg.Set(common.TokenConfigPath, "test-token")
	cfg.Set(common.OutputConfigPath, common.DefaultOutputFormat)
	cfg.Set(config.RetriesConfigPath, 0)

	streams, in, out, errOut := iostreams.NewTestIOStreams()
	return &Env{
		Config:  cfg,
		Streams: streams,
		In:      in,
		Out:     out,
		ErrOut:  errOut,
		Dir:     dir,
	}
}

// Context builds the context the root command would hand to a verb.
func (e *Env) Context() context.Context {
	ctx := context.WithValue(context.Background(), config.ConfigKey, config.Hook(e.Config))
	ctx = context.WithValue(ctx, iostreams.StreamsKey, e.Streams)
	ctx = context.WithValue(ctx, build.InfoKey, &build.Info{Version: "test", Commit: "abc123", Date: "today"})
	ctx = context.WithValue(ctx, catalog.Key, catalog.Default())
	return log.WithLogger(ctx, log.NewLogger(nil, e.ErrOut, common.DefaultLogLevel))
}

// Run executes c with args.
func (e *Env) Run(c *cobra.Command, args ...string) error {
	c.SetArgs(args)
	c.SetIn(e.In)
	c.SetOut(e.Out)
	c.SetErr(e.ErrOut)
	c.SilenceUsage = true
	c.SilenceErrors = true
	return c.ExecuteContext(e.Context())
}
