package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/isomerc/nicotine/internal/logger"
	"github.com/isomerc/nicotine/internal/window"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appDirName         = "nicotine"
	configFileName     = "config.toml"
	charactersFileName = "characters.txt"
	envPrefix          = "NICOTINE"
)

// DetectDisplaySize reports the primary display size. It is a variable so
// tests and headless environments can replace the X11 probe.
var DetectDisplaySize = func() (int, int, bool) {
	return window.DetectScreenSize()
}

// Manager handles configuration loading and saving
type Manager struct {
	config     *Config
	defaults   Config
	configPath string
	v          *viper.Viper
	mu         sync.RWMutex
}

// DefaultDir returns $XDG_CONFIG_HOME/nicotine
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// DefaultPath returns the default config file path
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DetectedDefaults returns defaults sized for the current display, falling
// back to 1920x1080 when no display can be queried.
func DetectedDefaults() Config {
	width, height, ok := DetectDisplaySize()
	if !ok {
		logger.WithComponent("config").Warn().
			Int("width", FallbackDisplayWidth).
			Int("height", FallbackDisplayHeight).
			Msg("Could not detect display size, using fallback")
		width, height = FallbackDisplayWidth, FallbackDisplayHeight
	}
	return Defaults(width, height)
}

// InitFile overwrites configFile (or the default path) with detected
// defaults without reading the existing file, so a broken config can be
// replaced. It returns the path written.
func InitFile(configFile string) (string, error) {
	path, err := resolvePath(configFile)
	if err != nil {
		return "", err
	}
	m := &Manager{configPath: path, defaults: DetectedDefaults(), v: viper.New()}
	if err := m.WriteDefaults(); err != nil {
		return "", err
	}
	return path, nil
}

func resolvePath(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return DefaultPath()
}

// NewManager loads the config at configFile (or the default path). v carries
// flag bindings made by the caller; nil uses a fresh viper instance. A missing
// file is created from detected defaults.
func NewManager(configFile string, v *viper.Viper) (*Manager, error) {
	path, err := resolvePath(configFile)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = viper.New()
	}

	m := &Manager{
		configPath: path,
		defaults:   DetectedDefaults(),
		v:          v,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.WithComponent("config").Info().
			Str("path", path).
			Msg("Config file not found, creating new config")
		if err := m.WriteDefaults(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config loaded")

	return m, nil
}

// load reads the file through viper so environment variables and bound
// flags override file values.
func (m *Manager) load() error {
	m.v.SetConfigFile(m.configPath)
	m.v.SetConfigType("toml")
	m.v.SetEnvPrefix(envPrefix)
	m.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	m.v.AutomaticEnv()
	setDefaults(m.v, m.defaults)

	if err := m.v.ReadInConfig(); err != nil {
		return err
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("display_width", d.DisplayWidth)
	v.SetDefault("display_height", d.DisplayHeight)
	v.SetDefault("panel_height", d.PanelHeight)
	v.SetDefault("eve_width", d.EveWidth)
	v.SetDefault("eve_height", d.EveHeight)
	v.SetDefault("overlay_x", d.OverlayX)
	v.SetDefault("overlay_y", d.OverlayY)
	v.SetDefault("show_overlay", d.ShowOverlay)
	v.SetDefault("overlay_port", d.OverlayPort)
	v.SetDefault("enable_mouse_buttons", d.EnableMouseButtons)
	v.SetDefault("forward_button", d.ForwardButton)
	v.SetDefault("backward_button", d.BackwardButton)
	v.SetDefault("mouse_device_path", d.MouseDevicePath)
	v.SetDefault("enable_keyboard_buttons", d.EnableKeyboardButtons)
	v.SetDefault("forward_key", d.ForwardKey)
	v.SetDefault("backward_key", d.BackwardKey)
	v.SetDefault("modifier_key", d.ModifierKey)
	v.SetDefault("keyboard_device_path", d.KeyboardDevicePath)
	v.SetDefault("minimize_inactive", d.MinimizeInactive)
	v.SetDefault("title_prefix", d.TitlePrefix)
	v.SetDefault("title_exclude", d.TitleExclude)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("notifications", d.Notifications)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// WriteDefaults overwrites the config file with detected defaults
func (m *Manager) WriteDefaults() error {
	cfg := m.defaults
	if err := writeConfig(m.configPath, cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Int("display_width", cfg.DisplayWidth).
		Int("display_height", cfg.DisplayHeight).
		Msg("Wrote default config")
	return nil
}

// Path returns the path to the config file
func (m *Manager) Path() string {
	return m.configPath
}

// Dir returns the config directory path
func (m *Manager) Dir() string {
	return filepath.Dir(m.configPath)
}

// CharactersPath returns the path of characters.txt next to the config file
func (m *Manager) CharactersPath() string {
	return filepath.Join(m.Dir(), charactersFileName)
}

// Encode renders cfg as toml, yaml or json
func Encode(cfg Config, format string) ([]byte, error) {
	switch format {
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml", "":
		return yaml.Marshal(cfg)
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q (use toml, yaml or json)", format)
	}
}

func writeConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Encode(cfg, "toml")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
