package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/isomerc/nicotine/internal/logger"
)

// DeviceError reports that a listener could not find or open its device.
// It disables that listener only.
type DeviceError struct {
	Listener string
	Path     string
	Err      error
}

func (e *DeviceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s listener: %v", e.Listener, e.Err)
	}
	return fmt.Sprintf("%s listener: %s: %v", e.Listener, e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ErrNoDevice is returned when no device exposes the wanted capabilities
var ErrNoDevice = errors.New("no matching input device found")

// Handler receives the commands a listener produces
type Handler interface {
	Forward() error
	Backward() error
}

// Listener passively reads one input device and forwards bound presses to a
// Handler. The device is never grabbed, so normal input keeps working.
type Listener struct {
	name       string
	devicePath string
	probe      []uint16
	binding    Binding
	handler    Handler

	devicesFile string
}

// NewMouseListener listens for side buttons. An empty devicePath auto-detects
// the first device with either bound button.
func NewMouseListener(devicePath string, binding Binding, handler Handler) *Listener {
	return &Listener{
		name:        "mouse",
		devicePath:  devicePath,
		probe:       []uint16{binding.Forward, binding.Backward, BtnSide, BtnExtra},
		binding:     binding,
		handler:     handler,
		devicesFile: procDevicesPath,
	}
}

// NewKeyboardListener listens for key presses. An empty devicePath
// auto-detects the first device that looks like a keyboard.
func NewKeyboardListener(devicePath string, binding Binding, handler Handler) *Listener {
	return &Listener{
		name:        "keyboard",
		devicePath:  devicePath,
		probe:       []uint16{KeyTab, KeyLeftShift, KeyZ},
		binding:     binding,
		handler:     handler,
		devicesFile: procDevicesPath,
	}
}

// Name returns the listener kind
func (l *Listener) Name() string {
	return l.name
}

// Open returns the device to read: the configured path when it opens,
// otherwise the first detected device with the wanted capabilities.
func (l *Listener) Open() (*os.File, error) {
	log := logger.WithComponent("input")

	if l.devicePath != "" {
		f, err := os.OpenFile(l.devicePath, os.O_RDONLY, 0)
		if err == nil {
			log.Info().Str("listener", l.name).Str("path", l.devicePath).Msg("Using configured input device")
			return f, nil
		}
		log.Warn().Err(err).Str("listener", l.name).Str("path", l.devicePath).
			Msg("Failed to open configured device, falling back to detection")
	}

	path, name, err := l.detect()
	if err != nil {
		return nil, &DeviceError{Listener: l.name, Err: err}
	}

	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, &DeviceError{Listener: l.name, Path: path, Err: err}
	}
	log.Info().Str("listener", l.name).Str("device", name).Str("path", path).Msg("Found input device")
	return f, nil
}

func (l *Listener) detect() (string, string, error) {
	f, err := os.Open(l.devicesFile)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	devices, err := ParseDevices(f)
	if err != nil {
		return "", "", err
	}
	for _, d := range devices {
		if d.HasAnyKey(l.probe...) {
			return d.Handler, d.Name, nil
		}
	}
	return "", "", ErrNoDevice
}

// Run opens the device and serves events until ctx is done or the device
// fails. A DeviceError means the listener never started.
func (l *Listener) Run(ctx context.Context) error {
	f, err := l.Open()
	if err != nil {
		return err
	}

	// Closing the file unblocks the pending read
	stop := context.AfterFunc(ctx, func() { f.Close() })
	defer stop()
	defer f.Close()

	err = l.Serve(ctx, f)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Serve translates events from r until it ends or ctx is done
func (l *Listener) Serve(ctx context.Context, r io.Reader) error {
	log := logger.WithComponent("input")
	log.Info().Str("listener", l.name).
		Uint16("forward", l.binding.Forward).
		Uint16("backward", l.binding.Backward).
		Uint16("modifier", l.binding.Modifier).
		Msg("Listening for input")

	translator := NewTranslator(l.binding)
	buf := make([]byte, eventSize)

	for {
		if ctx.Err() != nil {
			return nil
		}

		ev, err := ReadEvent(r, buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &DeviceError{Listener: l.name, Err: err}
		}

		var cmdErr error
		switch cmd := translator.Translate(ev); cmd {
		case CommandForward:
			cmdErr = l.handler.Forward()
		case CommandBackward:
			cmdErr = l.handler.Backward()
		default:
			continue
		}
		if cmdErr != nil {
			log.Warn().Err(cmdErr).Str("listener", l.name).Msg("Cycle command failed")
		}
	}
}
