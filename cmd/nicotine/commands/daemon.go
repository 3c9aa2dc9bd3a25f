package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/isomerc/nicotine/internal/config"
	"github.com/isomerc/nicotine/internal/cycle"
	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/isomerc/nicotine/internal/input"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/isomerc/nicotine/internal/notify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the cycle daemon in the foreground",
	Long: `Run the cycle daemon in the foreground.

The daemon owns the client list, refreshes it every 500ms, serves the control
socket at /tmp/nicotine.sock and, when enabled, reads mouse and keyboard
devices for cycle shortcuts. Use 'nicotine start' to run it in the background.`,
	Example: `  # Run with debug logging
  nicotine daemon --log-level debug --pretty`,
	RunE: runDaemon,
}

var daemonLogFile string

func init() {
	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "append logs to this file instead of stderr")
	rootCmd.AddCommand(daemonCmd)
}

// logToFile points the global logger at path, appending
func logToFile(path, level string, pretty bool) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.InitWithWriter(level, pretty, f)
	return f, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	if daemonLogFile != "" {
		f, err := logToFile(daemonLogFile, cfg.LogLevel, viper.GetBool("pretty"))
		if err != nil {
			return err
		}
		defer f.Close()
	}
	log := logger.WithComponent("daemon")

	windowMgr, err := openWindowManager(cfg)
	if err != nil {
		return err
	}
	defer windowMgr.Close()
	log.Info().Str("backend", windowMgr.Name()).Msg("Window backend ready")

	coord := cycle.NewCoordinator(windowMgr, cycle.WithMinimizeInactive(cfg.MinimizeInactive))

	d := daemon.New(coord, daemon.Options{
		CharactersPath: configMgr.CharactersPath(),
		Listeners:      inputListeners(cfg, coord),
		Notifier:       notify.New(cfg.Notifications),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("daemon failed: %w", err)
	}
	return nil
}

func inputListeners(cfg config.Config, handler input.Handler) []daemon.Listener {
	var listeners []daemon.Listener
	if cfg.EnableMouseButtons {
		listeners = append(listeners, input.NewMouseListener(cfg.MouseDevicePath, input.Binding{
			Forward:  cfg.ForwardButton,
			Backward: cfg.BackwardButton,
		}, handler))
	}
	if cfg.EnableKeyboardButtons {
		listeners = append(listeners, input.NewKeyboardListener(cfg.KeyboardDevicePath, input.Binding{
			Forward:  cfg.ForwardKey,
			Backward: cfg.BackwardKey,
			Modifier: cfg.ModifierKey,
		}, handler))
	}
	return listeners
}
