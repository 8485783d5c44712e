/*
Package cli implements the strapd command tree.

Commands share an App that loads configuration, builds the logger and opens
usage storage on demand. Output goes to the command's writer so commands can
be driven from tests.
*/
package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/strapd/internal/version"
)

// NewRootCmd creates the strapd root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "strapd",
		Short: "Developer utility toolkit that learns which tools you use",
		Long: `strapd bundles everyday developer utilities (case conversion, encoding,
hashing, UUIDs, random values, JSON/YAML, timestamps and unit conversion)
behind one CLI and an MCP server.

Every successful run is recorded locally. Tool lists, search results and the
MCP tools/list response put your most used tools first, scoring each tool
by 70% frequency and 30% recency.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.sync()
		},
	}

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: ~/.strapd.json)")
	root.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(NewRunCmd(app))
	root.AddCommand(NewListCmd(app))
	root.AddCommand(NewTopCmd(app))
	root.AddCommand(NewSearchCmd(app))
	root.AddCommand(NewUsageCmd(app))
	root.AddCommand(NewServeCmd(app))
	root.AddCommand(NewConfigCmd(app))
	root.AddCommand(NewVersionCmd(app))

	return root
}
