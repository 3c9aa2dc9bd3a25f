package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

const processName = "nicotine"

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop all Nicotine processes",
	Long: `Ask the daemon to quit, terminate any other nicotine process (such as
a running overlay) and remove the socket and lock files.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	fmt.Println("Stopping Nicotine...")

	if err := daemon.SendCommand(daemon.SocketPath, daemon.Quit); err != nil && !errors.Is(err, daemon.ErrDaemonNotRunning) {
		log.Debug().Err(err).Msg("Failed to send quit")
	}

	for _, pid := range findProcesses(processName) {
		if err := unix.Kill(pid, unix.SIGTERM); err != nil {
			log.Debug().Err(err).Int("pid", pid).Msg("Failed to signal process")
			continue
		}
		log.Debug().Int("pid", pid).Msg("Sent SIGTERM")
	}

	for _, path := range []string{daemon.SocketPath, daemon.LockPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove file")
		}
	}

	fmt.Println("✓ Nicotine stopped")
	return nil
}

// findProcesses returns the pids whose command name is name, excluding this process
func findProcesses(name string) []int {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	self := os.Getpid()
	var pids []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid == self {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", e.Name(), "comm"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(comm)) == name {
			pids = append(pids, pid)
		}
	}
	return pids
}
