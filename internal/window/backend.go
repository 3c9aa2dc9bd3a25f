package window

// ID is an opaque platform window handle. X11 XIDs, Sway container ids and
// Hyprland addresses map onto it directly; KWin UUIDs are hashed.
type ID uint64

// Window is one top-level window as reported by a backend
type Window struct {
	// Encoded as a string: hashed KWin ids do not fit a JavaScript number
	ID    ID     `json:"id,string"`
	Title string `json:"title"`
}

// Rect describes a rectangle in screen coordinates
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Backend defines the interface for display server backends (X11, KWin, Sway, Hyprland)
type Backend interface {
	// Name returns the backend name (e.g., "x11", "kwin")
	Name() string

	// ListWindows returns every titled top-level window in stacking/client order
	ListWindows() ([]Window, error)

	// ActiveWindow returns the id of the window holding input focus
	ActiveWindow() (ID, error)

	// Activate asks the display server to raise and focus a window.
	// Completion is not awaited.
	Activate(id ID) error

	// MoveResize places a window at the given rectangle
	MoveResize(id ID, r Rect) error

	// Move repositions a window without resizing it. Backends that cannot
	// place windows return nil without doing anything.
	Move(id ID, x, y int) error

	// Minimize iconifies a window. Backends without a minimize notion return nil.
	Minimize(id ID) error

	// Close releases the connection to the display server
	Close() error
}
