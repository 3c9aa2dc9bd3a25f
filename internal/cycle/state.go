package cycle

import (
	"errors"
	"fmt"

	"github.com/isomerc/nicotine/internal/window"
)

// ErrOutOfRange is returned when a switch target has no window
var ErrOutOfRange = errors.New("switch target out of range")

// Activator focuses a window
type Activator interface {
	Activate(id window.ID) error
}

// State is the cycling state machine: an ordered window list and the index of
// the window the cycle points at. It is not safe for concurrent use; the
// Coordinator serializes access.
type State struct {
	windows    []window.Window
	current    int
	lastActive window.ID
}

// NewState returns an empty state
func NewState() *State {
	return &State{}
}

// UpdateWindows replaces the window list. The index keeps pointing at the
// same window when it is still present; otherwise it is clamped.
func (s *State) UpdateWindows(windows []window.Window) {
	var pointed window.ID
	hadPointed := false
	if s.current < len(s.windows) {
		pointed = s.windows[s.current].ID
		hadPointed = true
	}

	s.windows = append([]window.Window(nil), windows...)

	if len(s.windows) == 0 {
		s.current = 0
		return
	}
	if hadPointed {
		if idx := s.indexOf(pointed); idx >= 0 {
			s.current = idx
			return
		}
	}
	s.current = min(s.current, len(s.windows)-1)
}

// SyncWithActive points the index at the active window when it is tracked.
// It reports whether the id was found.
func (s *State) SyncWithActive(active window.ID) bool {
	idx := s.indexOf(active)
	if idx < 0 {
		return false
	}
	s.current = idx
	s.lastActive = active
	return true
}

// CycleForward advances to the next window and activates it. An empty state
// is a no-op. The index is kept even when activation fails.
func (s *State) CycleForward(a Activator) error {
	if len(s.windows) == 0 {
		return nil
	}
	s.current = (s.current + 1) % len(s.windows)
	return a.Activate(s.windows[s.current].ID)
}

// CycleBackward moves to the previous window and activates it
func (s *State) CycleBackward(a Activator) error {
	if len(s.windows) == 0 {
		return nil
	}
	s.current = (s.current - 1 + len(s.windows)) % len(s.windows)
	return a.Activate(s.windows[s.current].ID)
}

// SwitchTo activates the nth window, counting from 1. With a character order,
// n selects the nth name and the window titled with it is activated instead.
// An unresolvable target returns ErrOutOfRange and leaves the index alone.
func (s *State) SwitchTo(n int, a Activator, order []string) error {
	idx, err := s.resolve(n, order)
	if err != nil {
		return err
	}
	s.current = idx
	return a.Activate(s.windows[idx].ID)
}

// ActivateID activates the tracked window with the given id. An untracked id
// returns ErrOutOfRange and leaves the index alone.
func (s *State) ActivateID(id window.ID, a Activator) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: window %d is not a tracked client", ErrOutOfRange, id)
	}
	s.current = idx
	return a.Activate(id)
}

func (s *State) resolve(n int, order []string) (int, error) {
	if len(order) > 0 {
		if n < 1 || n > len(order) {
			return 0, fmt.Errorf("%w: %d (%d characters configured)", ErrOutOfRange, n, len(order))
		}
		name := order[n-1]
		for i, w := range s.windows {
			if w.Title == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: character %q has no open client", ErrOutOfRange, name)
	}

	if n < 1 || n > len(s.windows) {
		return 0, fmt.Errorf("%w: %d (%d clients open)", ErrOutOfRange, n, len(s.windows))
	}
	return n - 1, nil
}

// Windows returns a copy of the tracked windows
func (s *State) Windows() []window.Window {
	return append([]window.Window(nil), s.windows...)
}

// CurrentIndex returns the cycle index. It is meaningless when Empty.
func (s *State) CurrentIndex() int {
	return s.current
}

// Current returns the window the index points at
func (s *State) Current() (window.Window, bool) {
	if len(s.windows) == 0 {
		return window.Window{}, false
	}
	return s.windows[s.current], true
}

// LastKnownActive returns the last active id seen by SyncWithActive
func (s *State) LastKnownActive() (window.ID, bool) {
	return s.lastActive, s.lastActive != 0
}

// Empty reports whether no windows are tracked
func (s *State) Empty() bool {
	return len(s.windows) == 0
}

func (s *State) indexOf(id window.ID) int {
	for i, w := range s.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}
