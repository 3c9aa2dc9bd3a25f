package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/isomerc/nicotine/internal/api"
	"github.com/isomerc/nicotine/internal/config"
	"github.com/isomerc/nicotine/internal/cycle"
	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/spf13/cobra"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Serve the client list overlay",
	Long: `Serve the overlay on http://127.0.0.1:<overlay_port>.

The overlay shows the client list with the current client highlighted and
updates live over a websocket. Clicking a client focuses it.`,
	Example: `  # Open the overlay in a small browser window
  nicotine overlay &
  xdg-open http://127.0.0.1:8765`,
	Args: cobra.NoArgs,
	RunE: runOverlay,
}

func init() {
	rootCmd.AddCommand(overlayCmd)
}

func runOverlay(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("overlay")

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	windowMgr, err := openWindowManager(cfg)
	if err != nil {
		return err
	}
	defer windowMgr.Close()

	order, err := config.LoadCharacters(configMgr.CharactersPath())
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring character order")
	}
	coord := cycle.NewCoordinator(windowMgr,
		cycle.WithMinimizeInactive(cfg.MinimizeInactive),
		cycle.WithCharacterOrder(order),
	)
	if err := coord.Refresh(); err != nil {
		log.Warn().Err(err).Msg("Initial window refresh failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go daemon.RefreshEvery(ctx, coord.Resync, daemon.RefreshInterval)
	go func() {
		if err := config.WatchCharacters(ctx, configMgr.CharactersPath(), coord.SetCharacterOrder); err != nil {
			log.Warn().Err(err).Msg("Character order hot reload unavailable")
		}
	}()

	server := api.NewServer(coord, windowMgr)
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.OverlayPort)
	fmt.Printf("Overlay running at http://%s\n", addr)
	return server.Start(ctx, addr)
}
