package window

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/isomerc/nicotine/internal/logger"
)

// KWin D-Bus constants
const (
	kwinService = "org.kde.KWin"
)

// commandRunner executes an external tool and returns its stdout
type commandRunner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// KWinBackend implements the Backend interface for KDE Plasma on Wayland.
// KWin exposes no stable window-management D-Bus API, so window operations go
// through kdotool; D-Bus is only used to confirm KWin is running.
type KWinBackend struct {
	conn *dbus.Conn
	run  commandRunner

	// Hashed ID to KWin UUID
	windowUUIDs map[ID]string
	uuidMu      sync.RWMutex
}

// NewKWinBackend creates a new KWin backend
func NewKWinBackend() (*KWinBackend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	// Check if KWin service is available
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to list D-Bus names: %w", err)
	}

	kwinFound := false
	for _, name := range names {
		if name == kwinService {
			kwinFound = true
			break
		}
	}
	if !kwinFound {
		conn.Close()
		return nil, fmt.Errorf("KWin service not found on D-Bus")
	}

	if _, err := exec.LookPath("kdotool"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kdotool is required on KDE Wayland: %w", err)
	}

	logger.WithComponent("kwin-backend").Info().Msg("Connected to KWin D-Bus service")

	return newKWinBackend(conn, execRunner), nil
}

func newKWinBackend(conn *dbus.Conn, run commandRunner) *KWinBackend {
	return &KWinBackend{
		conn:        conn,
		run:         run,
		windowUUIDs: make(map[ID]string),
	}
}

// Close closes the D-Bus connection
func (b *KWinBackend) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

// Name returns the backend name
func (b *KWinBackend) Name() string {
	return "kwin"
}

// ListWindows enumerates windows with kdotool and rebuilds the UUID map
func (b *KWinBackend) ListWindows() ([]Window, error) {
	log := logger.WithComponent("kwin-backend")

	output, err := b.run("kdotool", "search", "--name", ".")
	if err != nil {
		return nil, fmt.Errorf("kdotool search failed: %w", err)
	}

	windows := make([]Window, 0)
	uuids := make(map[ID]string)

	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		uuid := strings.TrimSpace(scanner.Text())
		if uuid == "" {
			continue
		}

		nameOutput, err := b.run("kdotool", "getwindowname", uuid)
		if err != nil {
			log.Debug().Str("windowID", uuid).Err(err).Msg("Failed to get window name")
			continue
		}
		title := strings.TrimSpace(string(nameOutput))
		if title == "" {
			continue
		}

		id := hashWindowUUID(uuid)
		uuids[id] = uuid
		windows = append(windows, Window{ID: id, Title: title})
	}

	b.uuidMu.Lock()
	b.windowUUIDs = uuids
	b.uuidMu.Unlock()

	return windows, nil
}

// ActiveWindow returns the hashed id of the focused window
func (b *KWinBackend) ActiveWindow() (ID, error) {
	output, err := b.run("kdotool", "getactivewindow")
	if err != nil {
		return 0, fmt.Errorf("kdotool getactivewindow failed: %w", err)
	}
	uuid := strings.TrimSpace(string(output))
	if uuid == "" {
		return 0, ErrNoActiveWindow
	}

	id := hashWindowUUID(uuid)
	b.uuidMu.Lock()
	b.windowUUIDs[id] = uuid
	b.uuidMu.Unlock()
	return id, nil
}

// Activate focuses a window through kdotool
func (b *KWinBackend) Activate(id ID) error {
	uuid, err := b.lookupUUID(id)
	if err != nil {
		return &ActivationError{ID: id, Err: err}
	}
	if _, err := b.run("kdotool", "windowactivate", uuid); err != nil {
		return &ActivationError{ID: id, Err: fmt.Errorf("kdotool windowactivate failed: %w", err)}
	}
	return nil
}

// MoveResize moves then resizes a window
func (b *KWinBackend) MoveResize(id ID, r Rect) error {
	if err := b.Move(id, r.X, r.Y); err != nil {
		return err
	}
	uuid, err := b.lookupUUID(id)
	if err != nil {
		return err
	}
	if _, err := b.run("kdotool", "windowsize", uuid, strconv.Itoa(r.Width), strconv.Itoa(r.Height)); err != nil {
		return fmt.Errorf("kdotool windowsize failed: %w", err)
	}
	return nil
}

// Move repositions a window
func (b *KWinBackend) Move(id ID, x, y int) error {
	uuid, err := b.lookupUUID(id)
	if err != nil {
		return err
	}
	if _, err := b.run("kdotool", "windowmove", uuid, strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return fmt.Errorf("kdotool windowmove failed: %w", err)
	}
	return nil
}

// Minimize iconifies a window
func (b *KWinBackend) Minimize(id ID) error {
	uuid, err := b.lookupUUID(id)
	if err != nil {
		return err
	}
	if _, err := b.run("kdotool", "windowminimize", uuid); err != nil {
		return fmt.Errorf("kdotool windowminimize failed: %w", err)
	}
	return nil
}

func (b *KWinBackend) lookupUUID(id ID) (string, error) {
	b.uuidMu.RLock()
	defer b.uuidMu.RUnlock()

	uuid, ok := b.windowUUIDs[id]
	if !ok {
		return "", fmt.Errorf("unknown window id %d", id)
	}
	return uuid, nil
}

// hashWindowUUID maps a KWin UUID onto a stable numeric id
func hashWindowUUID(uuid string) ID {
	h := fnv.New64a()
	h.Write([]byte(uuid))
	return ID(h.Sum64())
}
