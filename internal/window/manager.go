package window

import (
	"errors"
	"fmt"
	"strings"

	"github.com/isomerc/nicotine/internal/logger"
)

// Filter selects client windows by title
type Filter struct {
	// Prefix every client title starts with; stripped before storage
	Prefix string
	// Exclude drops windows whose title contains it (e.g. the launcher)
	Exclude string
}

// Match reports whether title belongs to a client window and returns the
// display title with the prefix removed.
func (f Filter) Match(title string) (string, bool) {
	if !strings.HasPrefix(title, f.Prefix) {
		return "", false
	}
	if f.Exclude != "" && strings.Contains(title, f.Exclude) {
		return "", false
	}
	return strings.TrimPrefix(title, f.Prefix), true
}

// Manager applies the client filter on top of a Backend and provides the
// window operations the cycler and the CLI need.
type Manager struct {
	backend Backend
	filter  Filter
}

// NewManager wraps a backend with a client filter
func NewManager(backend Backend, filter Filter) *Manager {
	return &Manager{
		backend: backend,
		filter:  filter,
	}
}

// Name returns the backend name
func (m *Manager) Name() string {
	return m.backend.Name()
}

// Close closes the underlying backend
func (m *Manager) Close() error {
	return m.backend.Close()
}

// ListTargetWindows returns the client windows in backend order with the title prefix stripped
func (m *Manager) ListTargetWindows() ([]Window, error) {
	all, err := m.backend.ListWindows()
	if err != nil {
		return nil, queryErr("list", err)
	}

	clients := make([]Window, 0, len(all))
	for _, w := range all {
		title, ok := m.filter.Match(w.Title)
		if !ok {
			continue
		}
		clients = append(clients, Window{ID: w.ID, Title: title})
	}
	return clients, nil
}

// ActiveWindow returns the focused window id
func (m *Manager) ActiveWindow() (ID, error) {
	id, err := m.backend.ActiveWindow()
	if err != nil {
		return 0, queryErr("active", err)
	}
	if id == 0 {
		return 0, &QueryError{Op: "active", Err: ErrNoActiveWindow}
	}
	return id, nil
}

// Activate focuses a window
func (m *Manager) Activate(id ID) error {
	if err := m.backend.Activate(id); err != nil {
		var ae *ActivationError
		if errors.As(err, &ae) {
			return err
		}
		return &ActivationError{ID: id, Err: err}
	}
	return nil
}

// Minimize iconifies a window
func (m *Manager) Minimize(id ID) error {
	return m.backend.Minimize(id)
}

// MoveWindow repositions a window. It is a no-op on backends that forbid placement.
func (m *Manager) MoveWindow(id ID, x, y int) error {
	if err := m.backend.Move(id, x, y); err != nil {
		return &LayoutError{Failed: []ID{id}, Err: err}
	}
	return nil
}

// Stack moves every window onto the same rectangle. A failing window does not
// stop the remaining ones; all failures are reported together.
func (m *Manager) Stack(windows []Window, r Rect) error {
	log := logger.WithComponent("window-manager")

	var failed []ID
	var errs []error
	for _, w := range windows {
		if err := m.backend.MoveResize(w.ID, r); err != nil {
			log.Warn().Err(err).Uint64("window_id", uint64(w.ID)).Str("title", w.Title).Msg("Failed to stack window")
			failed = append(failed, w.ID)
			errs = append(errs, fmt.Errorf("window %d: %w", w.ID, err))
		}
	}

	if len(errs) > 0 {
		return &LayoutError{Failed: failed, Err: errors.Join(errs...)}
	}

	log.Debug().Int("count", len(windows)).
		Int("x", r.X).Int("y", r.Y).Int("width", r.Width).Int("height", r.Height).
		Msg("Stacked windows")
	return nil
}
