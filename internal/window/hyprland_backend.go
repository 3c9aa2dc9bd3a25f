package window

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/isomerc/nicotine/internal/logger"
)

const hyprlandIOTimeout = 2 * time.Second

// HyprlandBackend talks to Hyprland's request socket (.socket.sock), the same
// channel hyprctl uses, so no external binary is required.
type HyprlandBackend struct {
	socketPath string
}

type hyprClient struct {
	Address string `json:"address"`
	Title   string `json:"title"`
	Mapped  bool   `json:"mapped"`
	Hidden  bool   `json:"hidden"`
}

// NewHyprlandBackend locates the instance socket for signature
func NewHyprlandBackend(runtimeDir, signature string) (*HyprlandBackend, error) {
	if signature == "" {
		return nil, fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set")
	}

	candidates := []string{filepath.Join("/tmp", "hypr", signature, ".socket.sock")}
	if runtimeDir != "" {
		candidates = append([]string{filepath.Join(runtimeDir, "hypr", signature, ".socket.sock")}, candidates...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			logger.WithComponent("hyprland-backend").Info().Str("socket", path).Msg("Connected to Hyprland")
			return &HyprlandBackend{socketPath: path}, nil
		}
	}
	return nil, fmt.Errorf("hyprland socket not found (tried %s)", strings.Join(candidates, ", "))
}

// Name returns the backend name
func (b *HyprlandBackend) Name() string {
	return "hyprland"
}

// Close is a no-op; every request uses its own connection
func (b *HyprlandBackend) Close() error {
	return nil
}

// ListWindows returns mapped, visible clients
func (b *HyprlandBackend) ListWindows() ([]Window, error) {
	out, err := b.request("j/clients")
	if err != nil {
		return nil, err
	}
	return parseHyprClients(out)
}

// ActiveWindow returns the focused client
func (b *HyprlandBackend) ActiveWindow() (ID, error) {
	out, err := b.request("j/activewindow")
	if err != nil {
		return 0, err
	}
	return parseHyprActiveWindow(out)
}

// Activate focuses a client by address
func (b *HyprlandBackend) Activate(id ID) error {
	if err := b.dispatch("focuswindow " + hyprAddress(id)); err != nil {
		return &ActivationError{ID: id, Err: err}
	}
	return nil
}

// MoveResize floats the client and places it exactly. Tiled clients cannot be
// positioned, so floating is forced first.
func (b *HyprlandBackend) MoveResize(id ID, r Rect) error {
	addr := hyprAddress(id)
	cmds := []string{
		"dispatch setfloating " + addr,
		fmt.Sprintf("dispatch movewindowpixel exact %d %d,%s", r.X, r.Y, addr),
		fmt.Sprintf("dispatch resizewindowpixel exact %d %d,%s", r.Width, r.Height, addr),
	}
	out, err := b.request("[[BATCH]]" + strings.Join(cmds, ";"))
	if err != nil {
		return err
	}
	return checkHyprReply(out)
}

// Move repositions a floating client
func (b *HyprlandBackend) Move(id ID, x, y int) error {
	return b.dispatch(fmt.Sprintf("movewindowpixel exact %d %d,%s", x, y, hyprAddress(id)))
}

// Minimize sends the client to a special workspace, Hyprland's closest
// equivalent to iconifying.
func (b *HyprlandBackend) Minimize(id ID) error {
	return b.dispatch("movetoworkspacesilent special:minimized," + hyprAddress(id))
}

func (b *HyprlandBackend) dispatch(args string) error {
	out, err := b.request("dispatch " + args)
	if err != nil {
		return err
	}
	return checkHyprReply(out)
}

func (b *HyprlandBackend) request(req string) ([]byte, error) {
	conn, err := net.DialTimeout("unix", b.socketPath, hyprlandIOTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hyprland socket: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(hyprlandIOTimeout))

	if _, err := conn.Write([]byte(req)); err != nil {
		return nil, fmt.Errorf("failed to send hyprland request: %w", err)
	}
	out, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read hyprland reply: %w", err)
	}
	return out, nil
}

func parseHyprClients(data []byte) ([]Window, error) {
	var clients []hyprClient
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("failed to parse hyprland clients: %w", err)
	}

	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		if !c.Mapped || c.Hidden || c.Title == "" {
			continue
		}
		id, err := parseHyprAddress(c.Address)
		if err != nil {
			continue
		}
		windows = append(windows, Window{ID: id, Title: c.Title})
	}
	return windows, nil
}

func parseHyprActiveWindow(data []byte) (ID, error) {
	var c hyprClient
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, fmt.Errorf("failed to parse hyprland active window: %w", err)
	}
	if c.Address == "" {
		return 0, ErrNoActiveWindow
	}
	return parseHyprAddress(c.Address)
}

// checkHyprReply accepts "ok" replies. Batches answer one "ok" per command,
// separated by blank lines or run together depending on the Hyprland version.
func checkHyprReply(out []byte) error {
	rest := strings.TrimSpace(string(out))
	for strings.HasPrefix(rest, "ok") {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "ok"))
	}
	if rest != "" {
		return fmt.Errorf("hyprland: %s", rest)
	}
	return nil
}

func parseHyprAddress(addr string) (ID, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(addr, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hyprland address %q: %w", addr, err)
	}
	return ID(v), nil
}

func hyprAddress(id ID) string {
	return fmt.Sprintf("address:0x%x", uint64(id))
}
