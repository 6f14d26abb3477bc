// Command spacetraveling serves the blog and manages its local repository.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "spacetraveling - a Prismic-backed blog",
	Long: `spacetraveling serves a blog whose posts live in a Prismic repository,
or in a local SQLite repository seeded from JSON for offline work.

Configuration is read from the environment (SITE_URL, PRISMIC_API_ENDPOINT,
SESSION_SECRET, ...).`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spacetraveling version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spacetraveling %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
