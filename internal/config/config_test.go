package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/isomerc/nicotine/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func withDisplaySize(t *testing.T, width, height int, ok bool) {
	t.Helper()
	orig := DetectDisplaySize
	DetectDisplaySize = func() (int, int, bool) { return width, height, ok }
	t.Cleanup(func() { DetectDisplaySize = orig })
}

func TestDefaults(t *testing.T) {
	cfg := Defaults(2560, 1440)

	assert.Equal(t, 2560*54/100, cfg.EveWidth)
	assert.Equal(t, 1440, cfg.EveHeight)
	assert.Equal(t, uint16(276), cfg.ForwardButton)
	assert.Equal(t, uint16(275), cfg.BackwardButton)
	assert.Equal(t, uint16(15), cfg.ForwardKey)
	assert.Equal(t, uint16(15), cfg.BackwardKey)
	assert.Equal(t, uint16(0), cfg.ModifierKey)
	assert.True(t, cfg.EnableKeyboardButtons)
	assert.False(t, cfg.EnableMouseButtons)
	assert.True(t, cfg.ShowOverlay)
	assert.Equal(t, "EVE - ", cfg.TitlePrefix)
	assert.NoError(t, cfg.Validate())
}

func TestStackRect(t *testing.T) {
	cfg := Defaults(1920, 1080)
	cfg.EveWidth = 1036
	cfg.PanelHeight = 40

	assert.Equal(t, window.Rect{X: 442, Y: 0, Width: 1036, Height: 1040}, cfg.StackRect())
}

func TestValidate(t *testing.T) {
	cfg := Defaults(1920, 1080)
	cfg.EveWidth = 4000
	cfg.PanelHeight = -1
	cfg.TitlePrefix = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eve_width")
	assert.Contains(t, err.Error(), "panel_height")
	assert.Contains(t, err.Error(), "title_prefix")
}

func TestNewManagerCreatesDefaults(t *testing.T) {
	withDisplaySize(t, 2560, 1440, true)
	path := filepath.Join(t.TempDir(), "nicotine", "config.toml")

	m, err := NewManager(path, nil)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, 2560, cfg.DisplayWidth)
	assert.Equal(t, 1440, cfg.DisplayHeight)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "characters.txt"), m.CharactersPath())
}

func TestNewManagerFallbackDisplaySize(t *testing.T) {
	withDisplaySize(t, 0, 0, false)
	path := filepath.Join(t.TempDir(), "config.toml")

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackDisplayWidth, m.Get().DisplayWidth)
	assert.Equal(t, FallbackDisplayHeight, m.Get().DisplayHeight)
}

func TestNewManagerReadsFileAndFillsMissingKeys(t *testing.T) {
	withDisplaySize(t, 1920, 1080, true)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
display_width = 3440
display_height = 1440
eve_width = 1800
panel_height = 32
enable_mouse_buttons = true
modifier_key = 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := NewManager(path, nil)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, 3440, cfg.DisplayWidth)
	assert.Equal(t, 1800, cfg.EveWidth)
	assert.True(t, cfg.EnableMouseButtons)
	assert.Equal(t, uint16(42), cfg.ModifierKey)
	// Not in the file: defaults apply
	assert.Equal(t, uint16(276), cfg.ForwardButton)
	assert.Equal(t, "Launcher", cfg.TitleExclude)
	assert.Equal(t, window.Rect{X: 820, Y: 0, Width: 1800, Height: 1408}, cfg.StackRect())
}

func TestNewManagerEnvOverride(t *testing.T) {
	withDisplaySize(t, 1920, 1080, true)
	t.Setenv("NICOTINE_OVERLAY_PORT", "9999")
	path := filepath.Join(t.TempDir(), "config.toml")

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9999, m.Get().OverlayPort)
}

func TestNewManagerInvalidFile(t *testing.T) {
	withDisplaySize(t, 1920, 1080, true)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("eve_width = 0\n"), 0644))

	_, err := NewManager(path, nil)
	assert.Error(t, err)
}

func TestWriteDefaultsOverwrites(t *testing.T) {
	withDisplaySize(t, 1920, 1080, true)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("eve_width = 1000\n"), 0644))

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, m.Get().EveWidth)

	require.NoError(t, m.WriteDefaults())
	assert.Equal(t, 1920*54/100, m.Get().EveWidth)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "eve_width = 1036")
}

func TestInitFileReplacesBrokenConfig(t *testing.T) {
	withDisplaySize(t, 2560, 1440, true)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("eve_width = \"wide\"\n"), 0644))

	written, err := InitFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	m, err := NewManager(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2560*54/100, m.Get().EveWidth)
}

func TestEncodeFormats(t *testing.T) {
	cfg := Defaults(1920, 1080)

	out, err := Encode(cfg, "yaml")
	require.NoError(t, err)
	var decoded Config
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, cfg, decoded)

	out, err = Encode(cfg, "json")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"title_prefix": "EVE - "`)

	out, err = Encode(cfg, "toml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "forward_button = 276")

	_, err = Encode(cfg, "xml")
	assert.Error(t, err)
}

func TestParseCharacters(t *testing.T) {
	input := `# main accounts
Alpha One

  Bravo
# Charlie is benched
Delta
`
	names, err := ParseCharacters(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha One", "Bravo", "Delta"}, names)
}

func TestLoadCharactersMissingFile(t *testing.T) {
	names, err := LoadCharacters(filepath.Join(t.TempDir(), "characters.txt"))
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestWatchCharacters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "characters.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- WatchCharacters(ctx, path, func(names []string) {
			mu.Lock()
			got = names
			mu.Unlock()
		})
	}()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("Alpha\nBravo\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2 && got[0] == "Alpha" && got[1] == "Bravo"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
