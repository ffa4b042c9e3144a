package cmd

import (
	"fmt"
	"os"

	"facility-matcher/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "facility-matcher",
	Short: "Health facility name matching service",
	Long: `Facility Matcher reconciles a master facility list against a reference
list (e.g. DHIS2 org units) using exact and Jaro-Winkler fuzzy matching.
It runs as an HTTP wizard service or as a one-shot CLI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with development timestamps for CLI users.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
