package window

import (
	"fmt"
	"os"
	"strings"

	"github.com/isomerc/nicotine/internal/logger"
)

// DisplayServer identifies the session's display server
type DisplayServer string

const (
	DisplayServerX11     DisplayServer = "x11"
	DisplayServerWayland DisplayServer = "wayland"
)

// Compositor identifies a Wayland compositor
type Compositor string

const (
	CompositorKDE      Compositor = "kde"
	CompositorSway     Compositor = "sway"
	CompositorHyprland Compositor = "hyprland"
	CompositorGNOME    Compositor = "gnome"
	CompositorOther    Compositor = "other"
)

// DetectDisplayServer inspects the session environment. Anything that is not
// clearly Wayland is treated as X11.
func DetectDisplayServer(getenv func(string) string) DisplayServer {
	if getenv("XDG_SESSION_TYPE") == "wayland" {
		return DisplayServerWayland
	}
	if getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}
	return DisplayServerX11
}

// DetectCompositor identifies the Wayland compositor from XDG_CURRENT_DESKTOP,
// then from compositor-specific variables.
func DetectCompositor(getenv func(string) string) Compositor {
	desktop := strings.ToLower(getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case strings.Contains(desktop, "kde"):
		return CompositorKDE
	case strings.Contains(desktop, "gnome"):
		return CompositorGNOME
	case strings.Contains(desktop, "sway"):
		return CompositorSway
	case strings.Contains(desktop, "hyprland"):
		return CompositorHyprland
	}

	if getenv("SWAYSOCK") != "" {
		return CompositorSway
	}
	if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return CompositorHyprland
	}
	return CompositorOther
}

// NewBackend picks and connects the backend for the current session. It is
// called once at startup; the choice is never re-evaluated.
func NewBackend() (Backend, error) {
	return newBackendFromEnv(os.Getenv)
}

func newBackendFromEnv(getenv func(string) string) (Backend, error) {
	log := logger.WithComponent("window-detect")

	server := DetectDisplayServer(getenv)
	if server == DisplayServerX11 {
		log.Info().Msg("Detected X11 display server")
		return connected(NewX11Backend())
	}

	compositor := DetectCompositor(getenv)
	log.Info().Str("compositor", string(compositor)).Msg("Detected Wayland display server")

	switch compositor {
	case CompositorKDE:
		return connected(NewKWinBackend())
	case CompositorSway:
		return connected(NewSwayBackend(getenv("SWAYSOCK")))
	case CompositorHyprland:
		return connected(NewHyprlandBackend(getenv("XDG_RUNTIME_DIR"), getenv("HYPRLAND_INSTANCE_SIGNATURE")))
	case CompositorGNOME:
		return nil, fmt.Errorf("%w: GNOME Shell is not yet supported due to restrictive window management APIs", ErrUnsupportedCompositor)
	default:
		return nil, fmt.Errorf("%w: unknown Wayland compositor (supported: KDE Plasma, Sway, Hyprland)", ErrUnsupportedCompositor)
	}
}

// connected converts a concrete constructor result into a Backend without
// leaking a typed nil on failure.
func connected[B Backend](b B, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
