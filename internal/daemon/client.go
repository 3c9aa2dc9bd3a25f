package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// ErrDaemonNotRunning is returned when nothing listens on the control socket
var ErrDaemonNotRunning = errors.New("daemon is not running")

const dialTimeout = time.Second

// SendCommand delivers one command to the daemon. No reply is read; the
// protocol is fire-and-forget.
func SendCommand(socketPath string, cmd Command) error {
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return ErrDaemonNotRunning
	}

	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(dialTimeout))
	if _, err := conn.Write([]byte(cmd.String() + "\n")); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}
