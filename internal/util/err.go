package util

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront-hq/storectl/internal/meta"
)

// CheckError exits the process when err is set. It is for failures before any
// command runs, such as an unreadable config file; command failures go
// through the root error reporter instead.
func CheckError(err error) {
	if err == nil {
		return
	}
	cobra.CheckErr(fmt.Errorf("%s could not start: %w", meta.CLIName, err))
}
