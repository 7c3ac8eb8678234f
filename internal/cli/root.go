// Package cli provides the command-line interface for the lookchat
// terminal client.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	serverURL    string
	pollInterval time.Duration
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lookchat",
	Short: "Terminal client for the lookchat personal shopping assistant",
	Long: `Lookchat is a chat client for an AI personal shopper. You describe the
occasion, answer a few guided questions, and receive streamed outfit
("look") recommendations assembled from live shopping search results.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "lookchat server base URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "AI response polling cadence")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log client activity to lookchat.log")

	rootCmd.AddCommand(chatCmd)
}
