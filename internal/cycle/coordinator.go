package cycle

import (
	"sync"

	"github.com/isomerc/nicotine/internal/logger"
	"github.com/isomerc/nicotine/internal/window"
)

// WindowSource is the part of the window manager the coordinator drives
type WindowSource interface {
	ListTargetWindows() ([]window.Window, error)
	ActiveWindow() (window.ID, error)
	Activate(id window.ID) error
	Minimize(id window.ID) error
}

// Snapshot is a point-in-time copy of the cycle state
type Snapshot struct {
	Windows  []window.Window `json:"windows"`
	Current  int             `json:"current"`
	ActiveID window.ID       `json:"active_id,string"`
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithMinimizeInactive minimizes every other client after an activation
func WithMinimizeInactive(enabled bool) Option {
	return func(c *Coordinator) {
		c.minimizeInactive = enabled
	}
}

// WithCharacterOrder sets the initial name order used by SwitchTo
func WithCharacterOrder(order []string) Option {
	return func(c *Coordinator) {
		c.order = order
	}
}

// Coordinator owns the shared State behind one lock and applies commands
// from any number of goroutines.
//
// The active-window query is made before taking the lock. A generation
// counter detects whether another command mutated the state meanwhile, in
// which case the (now stale) query result is dropped instead of overwriting
// the newer index.
type Coordinator struct {
	mu         sync.Mutex
	state      *State
	generation uint64
	order      []string

	wm               WindowSource
	minimizeInactive bool

	listenersMu sync.RWMutex
	listeners   []func(Snapshot)
}

// NewCoordinator creates a coordinator with an empty state
func NewCoordinator(wm WindowSource, opts ...Option) *Coordinator {
	c := &Coordinator{
		state: NewState(),
		wm:    wm,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forward activates the next client
func (c *Coordinator) Forward() error {
	return c.apply("forward", func(s *State) error {
		return s.CycleForward(c.wm)
	})
}

// Backward activates the previous client
func (c *Coordinator) Backward() error {
	return c.apply("backward", func(s *State) error {
		return s.CycleBackward(c.wm)
	})
}

// SwitchTo activates the nth client (1-based), honoring the character order
func (c *Coordinator) SwitchTo(n int) error {
	return c.apply("switch", func(s *State) error {
		return s.SwitchTo(n, c.wm, c.order)
	})
}

// ActivateWindow activates the client with the given window id
func (c *Coordinator) ActivateWindow(id window.ID) error {
	return c.apply("activate", func(s *State) error {
		return s.ActivateID(id, c.wm)
	})
}

// Refresh re-queries the client list and swaps it in. It does not sync with
// the active window. On query failure the state is left unchanged.
//
// Refresh leaves the generation alone: the index is re-resolved by id, so an
// active-window query taken before the swap is still valid after it.
func (c *Coordinator) Refresh() error {
	windows, err := c.wm.ListTargetWindows()
	if err != nil {
		return err
	}

	c.mu.Lock()
	changed := !sameWindows(c.state.windows, windows)
	c.state.UpdateWindows(windows)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if changed {
		logger.WithComponent("cycle").Debug().Int("clients", len(windows)).Msg("Client list changed")
		c.notify(snap)
	}
	return nil
}

// Resync re-queries the client list and points the index at the active
// window, so focus changes made outside nicotine show up in snapshots. An
// unavailable active window only skips the sync.
func (c *Coordinator) Resync() error {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	windows, err := c.wm.ListTargetWindows()
	if err != nil {
		return err
	}
	active, activeErr := c.wm.ActiveWindow()

	c.mu.Lock()
	before := c.snapshotLocked()
	c.state.UpdateWindows(windows)
	if activeErr == nil && c.generation == gen {
		c.state.SyncWithActive(active)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if !sameSnapshot(before, snap) {
		c.notify(snap)
	}
	return nil
}

// SetCharacterOrder replaces the name order used by SwitchTo
func (c *Coordinator) SetCharacterOrder(order []string) {
	c.mu.Lock()
	c.order = append([]string(nil), order...)
	c.mu.Unlock()
}

// CharacterOrder returns a copy of the current name order
func (c *Coordinator) CharacterOrder() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Snapshot returns a copy of the current state
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// OnChange registers fn to be called after every state change. fn runs on
// the goroutine that made the change, outside the lock.
func (c *Coordinator) OnChange(fn func(Snapshot)) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.listenersMu.Unlock()
}

func (c *Coordinator) apply(op string, fn func(*State) error) error {
	log := logger.WithComponent("cycle")

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	active, activeErr := c.wm.ActiveWindow()

	c.mu.Lock()
	switch {
	case activeErr != nil:
		log.Debug().Err(activeErr).Str("op", op).Msg("Skipping sync, active window unavailable")
	case c.generation != gen:
		log.Debug().Str("op", op).Msg("Skipping sync, state changed during query")
	default:
		c.state.SyncWithActive(active)
	}

	err := fn(c.state)
	c.generation++
	current, hasCurrent := c.state.Current()
	windows := c.state.Windows()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("op", op).Msg("Cycle command failed")
	} else if hasCurrent {
		log.Debug().Str("op", op).
			Int("index", snap.Current).
			Uint64("window_id", uint64(current.ID)).
			Str("title", current.Title).
			Msg("Activated client")
		if c.minimizeInactive {
			c.minimizeOthers(current.ID, windows)
		}
	}

	c.notify(snap)
	return err
}

// minimizeOthers is best-effort; failures are logged only
func (c *Coordinator) minimizeOthers(keep window.ID, windows []window.Window) {
	log := logger.WithComponent("cycle")
	for _, w := range windows {
		if w.ID == keep {
			continue
		}
		if err := c.wm.Minimize(w.ID); err != nil {
			log.Debug().Err(err).Uint64("window_id", uint64(w.ID)).Msg("Failed to minimize inactive client")
		}
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		Windows:  c.state.Windows(),
		Current:  c.state.CurrentIndex(),
		ActiveID: c.state.lastActive,
	}
}

func (c *Coordinator) notify(snap Snapshot) {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, fn := range c.listeners {
		fn(snap)
	}
}

func sameSnapshot(a, b Snapshot) bool {
	return a.Current == b.Current && a.ActiveID == b.ActiveID && sameWindows(a.Windows, b.Windows)
}

func sameWindows(a, b []window.Window) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
