package commands

import (
	"fmt"
	"os"

	"github.com/isomerc/nicotine/internal/config"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/isomerc/nicotine/internal/window"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "nicotine",
		Short: "Nicotine - window cycler for multiboxing EVE Online clients",
		Long: `Nicotine keeps a list of running EVE Online client windows and switches
focus between them from mouse side buttons, keyboard shortcuts, a local
control socket or a small overlay in the browser.

Features:
  • X11, KDE Plasma (KWin), Sway and Hyprland backends
  • Cycle forward/backward or jump to a client by number
  • Character order from characters.txt, reloaded on change
  • Stack every client onto the same screen rectangle
  • Overlay with a live client list`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(viper.GetString("log_level"), viper.GetBool("pretty"))
		},
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/nicotine/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable console logs")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty"))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig reads the config through the global viper so flag bindings
// apply, then re-initializes logging with the configured level.
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile(), viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(configMgr.Get().LogLevel, viper.GetBool("pretty"))
	return configMgr, nil
}

// openWindowManager connects the backend for the current session
func openWindowManager(cfg config.Config) (*window.Manager, error) {
	backend, err := window.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to display server: %w", err)
	}
	return window.NewManager(backend, cfg.Filter()), nil
}
