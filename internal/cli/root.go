package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the strata CLI with the given context and returns an error if
// any command fails. Canceling ctx aborts a running layout.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, including per-stage timings
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
	}

	return root.ExecuteContext(ctx)
}
