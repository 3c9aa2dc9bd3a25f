package commands

import (
	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/spf13/cobra"
)

var forwardCmd = &cobra.Command{
	Use:     "forward",
	Aliases: []string{"f", "cycle-forward"},
	Short:   "Focus the next client",
	Long: `Focus the next client window.

The command goes to the running daemon. Without a daemon it cycles directly;
overlapping direct invocations are skipped.`,
	Example: `  # Bind to a hotkey in your desktop environment
  nicotine forward`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(daemon.Forward)
	},
}

func init() {
	rootCmd.AddCommand(forwardCmd)
}
