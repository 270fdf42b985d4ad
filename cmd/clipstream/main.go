// clipstream: searchable clipboard history.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipstream",
		Short: "Searchable clipboard history",
		Long: `clipstream records everything copied to the system clipboard in a local
SQLite database and lets you search, pin, edit and re-copy past entries.

Run "clipstream daemon" once per login session. Every other sub-command talks
to the daemon over a local socket.

Config file search order (first found wins):
  /etc/clipstream/clipstream.toml
  $HOME/.config/clipstream/clipstream.toml
  path supplied via --config

All flags can be set via CLIPSTREAM_<FLAG> env vars or config-file keys.
See "clipstream daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newSearchCmd(),
		newShowCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newPinCmd(),
		newRmCmd(),
		newEditCmd(),
		newIgnoreCmd(),
		newSettingCmd(),
		newWatchCmd(),
		newStatusCmd(),
		newMonitorCmd(),
		newCleanupCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipstream %s\n", Version)
		},
	}
}
