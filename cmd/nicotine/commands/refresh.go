package commands

import (
	"errors"

	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the daemon to re-read the client list now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestRefresh(daemon.SocketPath)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

// requestRefresh is a no-op without a daemon: direct runs list clients fresh
func requestRefresh(socketPath string) error {
	err := daemon.SendCommand(socketPath, daemon.Refresh)
	if errors.Is(err, daemon.ErrDaemonNotRunning) {
		logger.WithComponent("cli").Debug().Msg("No daemon running, nothing to refresh")
		return nil
	}
	return err
}
