// Package cmd defines and implements the CLI commands for the
// ycrawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ycrawler",
		Short: "A polling crawler for news.ycombinator.com",
		Long: `ycrawler periodically polls the news.ycombinator.com front page,
discovers the top-ranked stories, and downloads each new story page
together with every link referenced in its comment thread. Stories
already handled in a previous cycle are never reprocessed.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml); defaults and env vars apply when omitted")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ycrawler:", err)
		os.Exit(1)
	}
}
