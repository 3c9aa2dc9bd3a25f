package daemon

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCommand is returned for control lines that are not a command.
// The server ignores such lines.
var ErrUnknownCommand = errors.New("unknown command")

// Kind identifies a control command
type Kind int

const (
	KindForward Kind = iota + 1
	KindBackward
	KindSwitch
	KindRefresh
	KindQuit
)

// Command is one parsed control-protocol line
type Command struct {
	Kind Kind
	// Target is the switch:N argument
	Target int
}

// Convenience constructors
var (
	Forward  = Command{Kind: KindForward}
	Backward = Command{Kind: KindBackward}
	Refresh  = Command{Kind: KindRefresh}
	Quit     = Command{Kind: KindQuit}
)

// Switch returns a switch:N command
func Switch(n int) Command {
	return Command{Kind: KindSwitch, Target: n}
}

// ParseCommand parses one line of the control protocol. Surrounding
// whitespace is ignored.
func ParseCommand(line string) (Command, error) {
	s := strings.TrimSpace(line)
	switch s {
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	case "refresh":
		return Refresh, nil
	case "quit":
		return Quit, nil
	}

	if rest, ok := strings.CutPrefix(s, "switch:"); ok {
		n, err := strconv.ParseUint(rest, 10, 31)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrUnknownCommand, s, err)
		}
		return Switch(int(n)), nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// String returns the wire form of the command
func (c Command) String() string {
	switch c.Kind {
	case KindForward:
		return "forward"
	case KindBackward:
		return "backward"
	case KindSwitch:
		return fmt.Sprintf("switch:%d", c.Target)
	case KindRefresh:
		return "refresh"
	case KindQuit:
		return "quit"
	default:
		return "unknown"
	}
}
