package window

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/isomerc/nicotine/internal/logger"
)

// icccm IconicState, sent with WM_CHANGE_STATE to minimize
const iconicState = 3

// X11Backend implements the Backend interface using the X11 protocol directly
type X11Backend struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo

	// Atoms resolved once at connect time so activation needs no round trip
	clientListAtom   xproto.Atom
	activeWindowAtom xproto.Atom
	wmNameAtom       xproto.Atom
	utf8StringAtom   xproto.Atom
	changeStateAtom  xproto.Atom
}

// NewX11Backend connects to the X server named by $DISPLAY
func NewX11Backend() (*X11Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	b := &X11Backend{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
	}

	atoms := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"_NET_CLIENT_LIST", &b.clientListAtom},
		{"_NET_ACTIVE_WINDOW", &b.activeWindowAtom},
		{"_NET_WM_NAME", &b.wmNameAtom},
		{"UTF8_STRING", &b.utf8StringAtom},
		{"WM_CHANGE_STATE", &b.changeStateAtom},
	}
	for _, a := range atoms {
		atom, err := b.getAtom(a.name)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern %s: %w", a.name, err)
		}
		*a.dst = atom
	}

	logger.WithComponent("x11-backend").Debug().
		Uint16("width", screen.WidthInPixels).
		Uint16("height", screen.HeightInPixels).
		Msg("Connected to X server")

	return b, nil
}

// Name returns the backend name
func (b *X11Backend) Name() string {
	return "x11"
}

// Close closes the X11 connection
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}

// ScreenSize returns the default screen dimensions in pixels
func (b *X11Backend) ScreenSize() (int, int) {
	return int(b.screen.WidthInPixels), int(b.screen.HeightInPixels)
}

// ListWindows returns the windows in _NET_CLIENT_LIST that carry a title
func (b *X11Backend) ListWindows() ([]Window, error) {
	log := logger.WithComponent("x11-backend")

	reply, err := xproto.GetProperty(
		b.conn,
		false,
		b.root,
		b.clientListAtom,
		xproto.AtomWindow,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}

	windows := make([]Window, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		win := xproto.Window(xgb.Get32(reply.Value[i:]))

		title, err := b.windowTitle(win)
		if err != nil {
			// Windows can disappear between the list and the title query
			log.Debug().Uint32("winID", uint32(win)).Err(err).Msg("ListWindows: failed to read title")
			continue
		}
		if title == "" {
			continue
		}
		windows = append(windows, Window{ID: ID(win), Title: title})
	}

	return windows, nil
}

// ActiveWindow reads _NET_ACTIVE_WINDOW from the root window
func (b *X11Backend) ActiveWindow() (ID, error) {
	reply, err := xproto.GetProperty(
		b.conn,
		false,
		b.root,
		b.activeWindowAtom,
		xproto.AtomWindow,
		0,
		1,
	).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get _NET_ACTIVE_WINDOW property: %w", err)
	}
	if len(reply.Value) < 4 {
		return 0, ErrNoActiveWindow
	}

	id := xgb.Get32(reply.Value)
	if id == 0 {
		return 0, ErrNoActiveWindow
	}
	return ID(id), nil
}

// Activate sends a _NET_ACTIVE_WINDOW client message to the window manager.
// Source indication 2 marks the request as coming from a pager so window
// managers honor it without focus-stealing prevention.
func (b *X11Backend) Activate(id ID) error {
	win := xproto.Window(id)

	if _, err := xproto.GetWindowAttributes(b.conn, win).Reply(); err != nil {
		return &ActivationError{ID: id, Err: fmt.Errorf("window is gone: %w", err)}
	}

	return b.sendClientMessage(win, b.activeWindowAtom, []uint32{2, 0, 0, 0, 0})
}

// MoveResize configures position and size in a single request
func (b *X11Backend) MoveResize(id ID, r Rect) error {
	return xproto.ConfigureWindowChecked(
		b.conn,
		xproto.Window(id),
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(r.X)), uint32(int32(r.Y)), uint32(r.Width), uint32(r.Height)},
	).Check()
}

// Move repositions a window
func (b *X11Backend) Move(id ID, x, y int) error {
	return xproto.ConfigureWindowChecked(
		b.conn,
		xproto.Window(id),
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))},
	).Check()
}

// Minimize asks the window manager to iconify the window (ICCCM 4.1.4)
func (b *X11Backend) Minimize(id ID) error {
	return b.sendClientMessage(xproto.Window(id), b.changeStateAtom, []uint32{iconicState, 0, 0, 0, 0})
}

func (b *X11Backend) sendClientMessage(win xproto.Window, msgType xproto.Atom, data []uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	return xproto.SendEventChecked(
		b.conn,
		false,
		b.root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(ev.Bytes()),
	).Check()
}

// windowTitle reads _NET_WM_NAME, falling back to WM_NAME
func (b *X11Backend) windowTitle(win xproto.Window) (string, error) {
	reply, err := xproto.GetProperty(b.conn, false, win, b.wmNameAtom, b.utf8StringAtom, 0, 1024).Reply()
	if err != nil {
		return "", err
	}
	if len(reply.Value) > 0 {
		return string(reply.Value), nil
	}

	reply, err = xproto.GetProperty(b.conn, false, win, xproto.AtomWmName, xproto.AtomString, 0, 1024).Reply()
	if err != nil {
		return "", err
	}
	return string(reply.Value), nil
}

// getAtom gets an atom ID by name
func (b *X11Backend) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// DetectScreenSize connects to the X server just long enough to read the
// default screen size. ok is false when no X server is reachable.
func DetectScreenSize() (width, height int, ok bool) {
	b, err := NewX11Backend()
	if err != nil {
		return 0, 0, false
	}
	defer b.Close()

	width, height = b.ScreenSize()
	return width, height, width > 0 && height > 0
}
