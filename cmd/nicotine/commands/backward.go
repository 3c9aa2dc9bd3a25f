package commands

import (
	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/spf13/cobra"
)

var backwardCmd = &cobra.Command{
	Use:     "backward",
	Aliases: []string{"b", "cycle-backward"},
	Short:   "Focus the previous client",
	Long: `Focus the previous client window.

Like forward, the daemon is tried first and a direct cycle is the fallback.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(daemon.Backward)
	},
}

func init() {
	rootCmd.AddCommand(backwardCmd)
}
