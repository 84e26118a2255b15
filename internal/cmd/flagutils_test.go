package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagEnumAcceptsAllowedValuesCaseInsensitively(t *testing.T) {
	output := NewEnum([]string{"json", "yaml", "text"}, "text")
	flags := pflag.NewFlagSet("storectl", pflag.ContinueOnError)
	flags.VarP(output, "output", "o", "")

	require.NoError(t, flags.Parse([]string{"-o", " JSON "}))
	assert.Equal(t, "json", output.String())
}

func TestFlagEnumRejectsUnknownValues(t *testing.T) {
	level := NewEnum([]string{"trace", "debug", "info", "warn", "error"}, "error")

	err := level.Set("verbose")
	require.EqualError(t, err, `invalid value "verbose", must be one of trace|debug|info|warn|error`)
	assert.Equal(t, "error", level.String())
}
