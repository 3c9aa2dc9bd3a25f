package commands

import (
	"errors"

	"github.com/isomerc/nicotine/internal/config"
	"github.com/isomerc/nicotine/internal/cycle"
	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/isomerc/nicotine/internal/logger"
)

// dispatch sends cmd to the daemon, falling back to a one-shot direct run
// when no daemon is listening. A direct run that finds the lock held is
// skipped silently.
func dispatch(cmd daemon.Command) error {
	log := logger.WithComponent("cli")

	err := daemon.SendCommand(daemon.SocketPath, cmd)
	if err == nil {
		return nil
	}
	if !errors.Is(err, daemon.ErrDaemonNotRunning) {
		return err
	}
	log.Debug().Err(err).Str("command", cmd.String()).Msg("Daemon unavailable, running directly")

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

	err = daemon.RunDirect(daemon.LockPath, windowMgr, cmd,
		cycle.WithMinimizeInactive(cfg.MinimizeInactive),
		cycle.WithCharacterOrder(order),
	)
	if errors.Is(err, daemon.ErrBusy) {
		return nil
	}
	return err
}
