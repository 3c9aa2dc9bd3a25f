package daemon

import (
	"errors"
	"fmt"
	"os"

	"github.com/isomerc/nicotine/internal/cycle"
	"github.com/isomerc/nicotine/internal/logger"
	"golang.org/x/sys/unix"
)

// LockPath serializes direct invocations when no daemon is running
const LockPath = "/tmp/nicotine-cycle.lock"

// ErrBusy is returned when another direct invocation holds the lock
var ErrBusy = errors.New("another cycle command is in progress")

// RunDirect executes a cycle command without a daemon: it takes an exclusive
// non-blocking lock, builds a fresh state from the current window list and
// applies cmd. ErrBusy means the command was skipped.
func RunDirect(lockPath string, wm cycle.WindowSource, cmd Command, opts ...cycle.Option) error {
	log := logger.WithComponent("direct")

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			log.Debug().Str("command", cmd.String()).Msg("Lock held, skipping")
			return ErrBusy
		}
		return fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	coord := cycle.NewCoordinator(wm, opts...)
	if err := coord.Refresh(); err != nil {
		return err
	}

	switch cmd.Kind {
	case KindForward:
		return coord.Forward()
	case KindBackward:
		return coord.Backward()
	case KindSwitch:
		return coord.SwitchTo(cmd.Target)
	case KindRefresh:
		return nil
	default:
		return fmt.Errorf("%w: %s cannot run without a daemon", ErrUnknownCommand, cmd)
	}
}
