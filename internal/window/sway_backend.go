package window

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/isomerc/nicotine/internal/logger"
)

// i3-ipc message types used by sway
const (
	swayRunCommand uint32 = 0
	swayGetTree    uint32 = 4
)

var swayMagic = []byte("i3-ipc")

const swayIOTimeout = 2 * time.Second

// SwayBackend speaks the i3-ipc protocol on $SWAYSOCK
type SwayBackend struct {
	socketPath string
}

type swayNode struct {
	ID            int64      `json:"id"`
	Name          *string    `json:"name"`
	Type          string     `json:"type"`
	Focused       bool       `json:"focused"`
	PID           int        `json:"pid"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

type swayCommandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewSwayBackend verifies the sway socket answers
func NewSwayBackend(socketPath string) (*SwayBackend, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("SWAYSOCK is not set")
	}
	b := &SwayBackend{socketPath: socketPath}
	if _, err := b.tree(); err != nil {
		return nil, fmt.Errorf("failed to query sway: %w", err)
	}
	logger.WithComponent("sway-backend").Info().Str("socket", socketPath).Msg("Connected to sway")
	return b, nil
}

// Name returns the backend name
func (b *SwayBackend) Name() string {
	return "sway"
}

// Close is a no-op; every request uses its own connection
func (b *SwayBackend) Close() error {
	return nil
}

// ListWindows walks the layout tree and returns application containers
func (b *SwayBackend) ListWindows() ([]Window, error) {
	root, err := b.tree()
	if err != nil {
		return nil, err
	}
	var windows []Window
	walkSwayTree(root, func(n *swayNode) {
		if isSwayWindow(n) {
			windows = append(windows, Window{ID: ID(n.ID), Title: *n.Name})
		}
	})
	return windows, nil
}

// ActiveWindow returns the focused application container
func (b *SwayBackend) ActiveWindow() (ID, error) {
	root, err := b.tree()
	if err != nil {
		return 0, err
	}
	var active ID
	walkSwayTree(root, func(n *swayNode) {
		if n.Focused && isSwayWindow(n) {
			active = ID(n.ID)
		}
	})
	if active == 0 {
		return 0, ErrNoActiveWindow
	}
	return active, nil
}

// Activate focuses a container
func (b *SwayBackend) Activate(id ID) error {
	if err := b.command(fmt.Sprintf("[con_id=%d] focus", id)); err != nil {
		return &ActivationError{ID: id, Err: err}
	}
	return nil
}

// MoveResize floats the container and places it
func (b *SwayBackend) MoveResize(id ID, r Rect) error {
	return b.command(fmt.Sprintf(
		"[con_id=%d] floating enable, move absolute position %d %d, resize set %d %d",
		id, r.X, r.Y, r.Width, r.Height,
	))
}

// Move repositions a floating container
func (b *SwayBackend) Move(id ID, x, y int) error {
	return b.command(fmt.Sprintf("[con_id=%d] move absolute position %d %d", id, x, y))
}

// Minimize moves the container to the scratchpad
func (b *SwayBackend) Minimize(id ID) error {
	return b.command(fmt.Sprintf("[con_id=%d] move scratchpad", id))
}

func (b *SwayBackend) tree() (*swayNode, error) {
	payload, err := b.roundTrip(swayGetTree, nil)
	if err != nil {
		return nil, err
	}
	var root swayNode
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}
	return &root, nil
}

func (b *SwayBackend) command(cmd string) error {
	payload, err := b.roundTrip(swayRunCommand, []byte(cmd))
	if err != nil {
		return err
	}
	return parseSwayCommandReply(payload)
}

func (b *SwayBackend) roundTrip(msgType uint32, payload []byte) ([]byte, error) {
	conn, err := net.DialTimeout("unix", b.socketPath, swayIOTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sway socket: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(swayIOTimeout))

	if err := writeSwayMessage(conn, msgType, payload); err != nil {
		return nil, err
	}
	replyType, reply, err := readSwayMessage(conn)
	if err != nil {
		return nil, err
	}
	if replyType != msgType {
		return nil, fmt.Errorf("sway replied with type %d, expected %d", replyType, msgType)
	}
	return reply, nil
}

func writeSwayMessage(w io.Writer, msgType uint32, payload []byte) error {
	buf := make([]byte, 0, len(swayMagic)+8+len(payload))
	buf = append(buf, swayMagic...)
	buf = binary.NativeEndian.AppendUint32(buf, uint32(len(payload)))
	buf = binary.NativeEndian.AppendUint32(buf, msgType)
	buf = append(buf, payload...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write sway message: %w", err)
	}
	return nil
}

func readSwayMessage(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, len(swayMagic)+8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("failed to read sway header: %w", err)
	}
	if string(header[:len(swayMagic)]) != string(swayMagic) {
		return 0, nil, errors.New("invalid sway ipc magic")
	}
	length := binary.NativeEndian.Uint32(header[len(swayMagic):])
	msgType := binary.NativeEndian.Uint32(header[len(swayMagic)+4:])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("failed to read sway payload: %w", err)
	}
	return msgType, payload, nil
}

func parseSwayCommandReply(payload []byte) error {
	var results []swayCommandResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return fmt.Errorf("failed to parse sway command reply: %w", err)
	}
	var errs []string
	for _, r := range results {
		if !r.Success {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("sway: %s", strings.Join(errs, "; "))
	}
	return nil
}

func walkSwayTree(n *swayNode, visit func(*swayNode)) {
	visit(n)
	for i := range n.Nodes {
		walkSwayTree(&n.Nodes[i], visit)
	}
	for i := range n.FloatingNodes {
		walkSwayTree(&n.FloatingNodes[i], visit)
	}
}

func isSwayWindow(n *swayNode) bool {
	if n.Type != "con" && n.Type != "floating_con" {
		return false
	}
	if len(n.Nodes) > 0 || n.Name == nil || *n.Name == "" {
		return false
	}
	return n.PID > 0
}
