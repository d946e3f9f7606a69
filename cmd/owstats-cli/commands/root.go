package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose *bool
var logFile *string

var rootCmd = &cobra.Command{
	Use:   "owstats-cli",
	Short: "owstats-cli scrapes hero statistics into csv artifacts.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		InitTelemetry(cmd.Context(), *verbose, *logFile)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
	logFile = rootCmd.PersistentFlags().String("log-file", "owstats.log", "Mirror logs to a file in addition to stdout. Empty disables the mirror.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
