package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const daemonStartTimeout = 2 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the background, then the overlay",
	Long: `Start the cycle daemon as a detached background process, logging to
nicotine.log in the temp directory. When show_overlay is enabled the overlay
then runs in the foreground.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	fmt.Println("Starting Nicotine 🚬")

	pid, logPath, err := spawnDaemon()
	if err != nil {
		return err
	}
	fmt.Printf("Daemon started (pid %d), logging to %s\n", pid, logPath)

	if !cfg.ShowOverlay {
		fmt.Println("Overlay disabled - daemon running in background")
		return nil
	}

	if !waitForSocket(daemon.SocketPath, daemonStartTimeout) {
		log.Warn().Str("socket", daemon.SocketPath).Msg("Daemon socket did not appear, starting overlay anyway")
	}
	return runOverlay(cmd, args)
}

// spawnDaemon re-executes this binary as "nicotine daemon" in its own session
// so it outlives the terminal.
func spawnDaemon() (int, string, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, "", fmt.Errorf("failed to locate executable: %w", err)
	}

	logPath := filepath.Join(os.TempDir(), "nicotine.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"daemon", "--log-file", logPath}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	if level := viper.GetString("log_level"); level != "" {
		args = append(args, "--log-level", level)
	}

	c := exec.Command(exe, args...)
	c.Dir = os.TempDir()
	// Panics and anything written before the logger is up
	c.Stdout = logFile
	c.Stderr = logFile
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := c.Start(); err != nil {
		return 0, "", fmt.Errorf("failed to start daemon: %w", err)
	}
	pid := c.Process.Pid
	if err := c.Process.Release(); err != nil {
		return 0, "", err
	}
	return pid, logPath, nil
}

func waitForSocket(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}
