package config

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/isomerc/nicotine/internal/logger"
)

const charactersDebounce = 100 * time.Millisecond

// ParseCharacters reads one character name per line. Blank lines and lines
// starting with # are skipped.
func ParseCharacters(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// LoadCharacters reads the character order file. A missing file yields no
// order and no error.
func LoadCharacters(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	names, err := ParseCharacters(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return names, nil
}

// WatchCharacters calls onChange with the reloaded order whenever the file at
// path is written, created, removed or renamed. The parent directory is
// watched so the file may appear after the watch starts. It blocks until ctx
// is done.
func WatchCharacters(ctx context.Context, path string, onChange func([]string)) error {
	log := logger.WithComponent("characters")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	// Editors often emit several events per save
	var debounce *time.Timer
	reload := func() {
		names, err := LoadCharacters(path)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to reload character order")
			return
		}
		log.Info().Int("characters", len(names)).Msg("Character order reloaded")
		onChange(names)
	}
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(charactersDebounce, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Character file watcher error")
		}
	}
}
