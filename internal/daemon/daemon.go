package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/isomerc/nicotine/internal/config"
	"github.com/isomerc/nicotine/internal/cycle"
	"github.com/isomerc/nicotine/internal/logger"
)

// SocketPath is the well-known control endpoint
const SocketPath = "/tmp/nicotine.sock"

// RefreshInterval bounds how stale the window list can get
const RefreshInterval = 500 * time.Millisecond

const readTimeout = 2 * time.Second

// Listener is a background command producer such as an input device reader
type Listener interface {
	Name() string
	Run(ctx context.Context) error
}

// Notifier shows a desktop notification
type Notifier interface {
	Notify(summary, body string) error
}

// Options configures a Daemon. Zero values select the defaults.
type Options struct {
	SocketPath      string
	RefreshInterval time.Duration
	// CharactersPath is watched and reloaded into the character order
	CharactersPath string
	Listeners      []Listener
	Notifier       Notifier
	// Exit terminates the process on quit; defaults to os.Exit
	Exit func(code int)
}

// Daemon serves the control socket and runs the background tasks around
// one shared Coordinator.
type Daemon struct {
	coord *cycle.Coordinator
	opts  Options

	ready chan struct{}
}

// New creates a daemon around coord
func New(coord *cycle.Coordinator, opts Options) *Daemon {
	if opts.SocketPath == "" {
		opts.SocketPath = SocketPath
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = RefreshInterval
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	return &Daemon{
		coord: coord,
		opts:  opts,
		ready: make(chan struct{}),
	}
}

// Ready is closed once the control socket accepts connections
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Run binds the control socket and serves until ctx is done. Background
// tasks stop with ctx.
func (d *Daemon) Run(ctx context.Context) error {
	log := logger.WithComponent("daemon")

	if err := d.coord.Refresh(); err != nil {
		log.Warn().Err(err).Msg("Initial window refresh failed")
	}
	d.loadCharacters()

	ln, err := listen(d.opts.SocketPath)
	if err != nil {
		return err
	}
	defer os.Remove(d.opts.SocketPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		RefreshEvery(ctx, d.coord.Refresh, d.opts.RefreshInterval)
	}()

	if d.opts.CharactersPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := config.WatchCharacters(ctx, d.opts.CharactersPath, d.coord.SetCharacterOrder)
			if err != nil {
				log.Warn().Err(err).Msg("Character order hot reload unavailable")
			}
		}()
	}

	for _, l := range d.opts.Listeners {
		wg.Add(1)
		go func(l Listener) {
			defer wg.Done()
			d.runListener(ctx, l)
		}(l)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info().Str("socket", d.opts.SocketPath).Msg("Daemon listening")
	close(d.ready)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Msg("Failed to accept connection")
			continue
		}
		// Connections are handled one at a time
		d.handleConn(conn)
	}

	wg.Wait()
	log.Info().Msg("Daemon stopped")
	return nil
}

// Handle executes one command against the shared state
func (d *Daemon) Handle(cmd Command) error {
	switch cmd.Kind {
	case KindForward:
		return d.coord.Forward()
	case KindBackward:
		return d.coord.Backward()
	case KindSwitch:
		return d.coord.SwitchTo(cmd.Target)
	case KindRefresh:
		return d.coord.Refresh()
	case KindQuit:
		logger.WithComponent("daemon").Info().Msg("Quit requested")
		os.Remove(d.opts.SocketPath)
		d.opts.Exit(0)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (d *Daemon) handleConn(conn net.Conn) {
	log := logger.WithComponent("daemon")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		log.Debug().Err(err).Msg("Failed to read command")
		return
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring control line")
		return
	}

	log.Debug().Str("command", cmd.String()).Msg("Received command")
	if err := d.Handle(cmd); err != nil {
		log.Warn().Err(err).Str("command", cmd.String()).Msg("Command failed")
	}
}

// RefreshEvery calls refresh on every tick until ctx is done. The daemon
// passes Coordinator.Refresh; the overlay passes Coordinator.Resync so it
// also tracks focus changes made outside nicotine.
func RefreshEvery(ctx context.Context, refresh func() error, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Query failures are expected while clients start or close
			if err := refresh(); err != nil {
				logger.WithComponent("daemon").Trace().Err(err).Msg("Periodic refresh failed")
			}
		}
	}
}

func (d *Daemon) runListener(ctx context.Context, l Listener) {
	log := logger.WithComponent("daemon")

	err := l.Run(ctx)
	if err == nil {
		return
	}

	log.Warn().Err(err).Str("listener", l.Name()).
		Msg("Input listener disabled, continuing without it")
	if d.opts.Notifier != nil {
		body := fmt.Sprintf("%s shortcuts are unavailable: %v", l.Name(), err)
		if nerr := d.opts.Notifier.Notify("Nicotine", body); nerr != nil {
			log.Debug().Err(nerr).Msg("Failed to send notification")
		}
	}
}

func (d *Daemon) loadCharacters() {
	if d.opts.CharactersPath == "" {
		return
	}
	order, err := config.LoadCharacters(d.opts.CharactersPath)
	if err != nil {
		logger.WithComponent("daemon").Warn().Err(err).Msg("Failed to load character order")
		return
	}
	d.coord.SetCharacterOrder(order)
	if len(order) > 0 {
		logger.WithComponent("daemon").Info().Int("characters", len(order)).Msg("Loaded character order")
	}
}

// listen binds the unix socket, removing a stale endpoint left by a crashed instance
func listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", path, err)
	}
	return ln, nil
}
