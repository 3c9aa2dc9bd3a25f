package config

import (
	"errors"
	"fmt"

	"github.com/isomerc/nicotine/internal/window"
)

// Linux input event codes used as defaults
const (
	BtnSide  = 275 // BTN_SIDE
	BtnExtra = 276 // BTN_EXTRA
	KeyTab   = 15
)

// Fallback display size when no X server can be queried
const (
	FallbackDisplayWidth  = 1920
	FallbackDisplayHeight = 1080
)

// Config represents the application configuration
type Config struct {
	// Display geometry
	DisplayWidth  int `json:"display_width" yaml:"display_width" toml:"display_width" mapstructure:"display_width"`
	DisplayHeight int `json:"display_height" yaml:"display_height" toml:"display_height" mapstructure:"display_height"`
	PanelHeight   int `json:"panel_height" yaml:"panel_height" toml:"panel_height" mapstructure:"panel_height"`

	// Client window geometry used by stack
	EveWidth  int `json:"eve_width" yaml:"eve_width" toml:"eve_width" mapstructure:"eve_width"`
	EveHeight int `json:"eve_height" yaml:"eve_height" toml:"eve_height" mapstructure:"eve_height"`

	// Overlay placement
	OverlayX    int  `json:"overlay_x" yaml:"overlay_x" toml:"overlay_x" mapstructure:"overlay_x"`
	OverlayY    int  `json:"overlay_y" yaml:"overlay_y" toml:"overlay_y" mapstructure:"overlay_y"`
	ShowOverlay bool `json:"show_overlay" yaml:"show_overlay" toml:"show_overlay" mapstructure:"show_overlay"`
	OverlayPort int  `json:"overlay_port" yaml:"overlay_port" toml:"overlay_port" mapstructure:"overlay_port"`

	// Mouse bindings
	EnableMouseButtons bool   `json:"enable_mouse_buttons" yaml:"enable_mouse_buttons" toml:"enable_mouse_buttons" mapstructure:"enable_mouse_buttons"`
	ForwardButton      uint16 `json:"forward_button" yaml:"forward_button" toml:"forward_button" mapstructure:"forward_button"`
	BackwardButton     uint16 `json:"backward_button" yaml:"backward_button" toml:"backward_button" mapstructure:"backward_button"`
	MouseDevicePath    string `json:"mouse_device_path" yaml:"mouse_device_path" toml:"mouse_device_path" mapstructure:"mouse_device_path"`

	// Keyboard bindings; ModifierKey 0 means no modifier
	EnableKeyboardButtons bool   `json:"enable_keyboard_buttons" yaml:"enable_keyboard_buttons" toml:"enable_keyboard_buttons" mapstructure:"enable_keyboard_buttons"`
	ForwardKey            uint16 `json:"forward_key" yaml:"forward_key" toml:"forward_key" mapstructure:"forward_key"`
	BackwardKey           uint16 `json:"backward_key" yaml:"backward_key" toml:"backward_key" mapstructure:"backward_key"`
	ModifierKey           uint16 `json:"modifier_key" yaml:"modifier_key" toml:"modifier_key" mapstructure:"modifier_key"`
	KeyboardDevicePath    string `json:"keyboard_device_path" yaml:"keyboard_device_path" toml:"keyboard_device_path" mapstructure:"keyboard_device_path"`

	MinimizeInactive bool `json:"minimize_inactive" yaml:"minimize_inactive" toml:"minimize_inactive" mapstructure:"minimize_inactive"`

	// Client window selection
	TitlePrefix  string `json:"title_prefix" yaml:"title_prefix" toml:"title_prefix" mapstructure:"title_prefix"`
	TitleExclude string `json:"title_exclude" yaml:"title_exclude" toml:"title_exclude" mapstructure:"title_exclude"`

	LogLevel      string `json:"log_level" yaml:"log_level" toml:"log_level" mapstructure:"log_level"`
	Notifications bool   `json:"notifications" yaml:"notifications" toml:"notifications" mapstructure:"notifications"`
}

// Defaults returns the default configuration for a display of the given size
func Defaults(displayWidth, displayHeight int) Config {
	return Config{
		DisplayWidth:          displayWidth,
		DisplayHeight:         displayHeight,
		PanelHeight:           0,
		EveWidth:              displayWidth * 54 / 100,
		EveHeight:             displayHeight,
		OverlayX:              10,
		OverlayY:              10,
		ShowOverlay:           true,
		OverlayPort:           8765,
		EnableMouseButtons:    false,
		ForwardButton:         BtnExtra,
		BackwardButton:        BtnSide,
		EnableKeyboardButtons: true,
		ForwardKey:            KeyTab,
		BackwardKey:           KeyTab,
		ModifierKey:           0,
		MinimizeInactive:      false,
		TitlePrefix:           "EVE - ",
		TitleExclude:          "Launcher",
		LogLevel:              "info",
		Notifications:         true,
	}
}

// StackRect returns the rectangle every client is stacked onto: centered
// horizontally, flush with the top, and clear of the panel.
func (c Config) StackRect() window.Rect {
	return window.Rect{
		X:      (c.DisplayWidth - c.EveWidth) / 2,
		Y:      0,
		Width:  c.EveWidth,
		Height: c.EveHeightAdjusted(),
	}
}

// EveHeightAdjusted is the client height with the panel subtracted
func (c Config) EveHeightAdjusted() int {
	return c.DisplayHeight - c.PanelHeight
}

// Filter returns the client window filter
func (c Config) Filter() window.Filter {
	return window.Filter{Prefix: c.TitlePrefix, Exclude: c.TitleExclude}
}

// Validate checks the configuration for values that would break stacking or the overlay
func (c Config) Validate() error {
	var errs []error
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive, got %dx%d", c.DisplayWidth, c.DisplayHeight))
	}
	if c.EveWidth <= 0 || c.EveWidth > c.DisplayWidth {
		errs = append(errs, fmt.Errorf("eve_width %d must be within (0, %d]", c.EveWidth, c.DisplayWidth))
	}
	if c.PanelHeight < 0 || c.PanelHeight >= c.DisplayHeight {
		errs = append(errs, fmt.Errorf("panel_height %d must be within [0, %d)", c.PanelHeight, c.DisplayHeight))
	}
	if c.OverlayPort <= 0 || c.OverlayPort > 65535 {
		errs = append(errs, fmt.Errorf("overlay_port %d out of range", c.OverlayPort))
	}
	if c.TitlePrefix == "" {
		errs = append(errs, errors.New("title_prefix must not be empty"))
	}
	return errors.Join(errs...)
}
