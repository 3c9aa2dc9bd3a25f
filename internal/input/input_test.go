package input

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeEvent(ev Event) []byte {
	buf := make([]byte, eventSize)
	binary.LittleEndian.PutUint16(buf[16:18], ev.Type)
	binary.LittleEndian.PutUint16(buf[18:20], ev.Code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(ev.Value))
	return buf
}

func key(code uint16, value int32) Event {
	return Event{Type: EvKey, Code: code, Value: value}
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent(encodeEvent(Event{Type: EvKey, Code: BtnExtra, Value: -1}))
	require.NoError(t, err)
	assert.Equal(t, Event{Type: EvKey, Code: BtnExtra, Value: -1}, ev)

	_, err = DecodeEvent(make([]byte, 10))
	assert.Error(t, err)
}

func TestTranslatorPlainBinding(t *testing.T) {
	tr := NewTranslator(Binding{Forward: BtnExtra, Backward: BtnSide})

	assert.Equal(t, CommandForward, tr.Translate(key(BtnExtra, valuePress)))
	assert.Equal(t, CommandNone, tr.Translate(key(BtnExtra, valueRepeat)))
	assert.Equal(t, CommandNone, tr.Translate(key(BtnExtra, valueRelease)))
	assert.Equal(t, CommandBackward, tr.Translate(key(BtnSide, valuePress)))
	assert.Equal(t, CommandNone, tr.Translate(key(272, valuePress)))
	// Relative motion and sync events are ignored
	assert.Equal(t, CommandNone, tr.Translate(Event{Type: 0x02, Code: BtnExtra, Value: 1}))
}

func TestTranslatorModifierTakesPrecedence(t *testing.T) {
	tr := NewTranslator(Binding{Forward: KeyTab, Backward: KeyTab, Modifier: KeyLeftShift})

	assert.Equal(t, CommandForward, tr.Translate(key(KeyTab, valuePress)))

	assert.Equal(t, CommandNone, tr.Translate(key(KeyLeftShift, valuePress)))
	assert.Equal(t, CommandBackward, tr.Translate(key(KeyTab, valuePress)))

	// Autorepeat keeps the modifier held
	assert.Equal(t, CommandNone, tr.Translate(key(KeyLeftShift, valueRepeat)))
	assert.Equal(t, CommandBackward, tr.Translate(key(KeyTab, valuePress)))

	assert.Equal(t, CommandNone, tr.Translate(key(KeyLeftShift, valueRelease)))
	assert.Equal(t, CommandForward, tr.Translate(key(KeyTab, valuePress)))
}

func TestTranslatorNoModifierConfigured(t *testing.T) {
	tr := NewTranslator(Binding{Forward: KeyTab, Backward: KeyTab})

	// Shift is not a modifier here, so Tab always goes forward
	tr.Translate(key(KeyLeftShift, valuePress))
	assert.Equal(t, CommandForward, tr.Translate(key(KeyTab, valuePress)))
}

const procDevices = `I: Bus=0011 Vendor=0001 Product=0001 Version=ab41
N: Name="AT Translated Set 2 keyboard"
P: Phys=isa0060/serio0/input0
H: Handlers=sysrq kbd leds event3
B: EV=120013
B: KEY=402000000 3803078f800d001 feffffdfffefffff fffffffffffffffe

I: Bus=0003 Vendor=046d Product=c52b Version=0111
N: Name="Logitech USB Receiver Mouse"
H: Handlers=mouse0 event5
B: EV=17
B: KEY=1f0000 0 0 0 0
B: REL=1943

I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
H: Handlers=kbd event0
B: KEY=10000000000000 0
`

func TestParseDevices(t *testing.T) {
	devices, err := ParseDevices(strings.NewReader(procDevices))
	require.NoError(t, err)
	require.Len(t, devices, 3)

	kbd := devices[0]
	assert.Equal(t, "AT Translated Set 2 keyboard", kbd.Name)
	assert.Equal(t, "/dev/input/event3", kbd.Handler)
	assert.True(t, kbd.HasKey(KeyTab))
	assert.True(t, kbd.HasKey(KeyZ))
	assert.False(t, kbd.HasKey(BtnSide))

	mouse := devices[1]
	assert.Equal(t, "/dev/input/event5", mouse.Handler)
	assert.True(t, mouse.HasKey(BtnSide))
	assert.True(t, mouse.HasKey(BtnExtra))
	assert.False(t, mouse.HasKey(KeyTab))

	power := devices[2]
	assert.True(t, power.HasKey(116)) // KEY_POWER
	assert.False(t, power.HasAnyKey(KeyTab, KeyLeftShift, KeyZ))
}

type countingHandler struct {
	forward, backward int
	err               error
}

func (h *countingHandler) Forward() error {
	h.forward++
	return h.err
}

func (h *countingHandler) Backward() error {
	h.backward++
	return h.err
}

func TestListenerServe(t *testing.T) {
	var stream bytes.Buffer
	for _, ev := range []Event{
		key(BtnExtra, valuePress),
		key(BtnExtra, valueRelease),
		{Type: 0, Code: 0, Value: 0},
		key(BtnSide, valuePress),
		key(BtnSide, valueRelease),
		key(BtnExtra, valuePress),
	} {
		stream.Write(encodeEvent(ev))
	}

	h := &countingHandler{err: errors.New("activation failed")}
	l := NewMouseListener("", Binding{Forward: BtnExtra, Backward: BtnSide}, h)

	require.NoError(t, l.Serve(context.Background(), &stream))
	assert.Equal(t, 2, h.forward)
	assert.Equal(t, 1, h.backward)
}

func TestListenerServeTruncatedStream(t *testing.T) {
	h := &countingHandler{}
	l := NewKeyboardListener("", Binding{Forward: KeyTab, Backward: KeyTab}, h)

	err := l.Serve(context.Background(), bytes.NewReader(make([]byte, 10)))
	var de *DeviceError
	assert.ErrorAs(t, err, &de)
}

func TestListenerDetectsDevice(t *testing.T) {
	dir := t.TempDir()
	devicesFile := filepath.Join(dir, "devices")
	require.NoError(t, os.WriteFile(devicesFile, []byte(procDevices), 0644))

	mouse := NewMouseListener("", Binding{Forward: BtnExtra, Backward: BtnSide}, &countingHandler{})
	mouse.devicesFile = devicesFile
	path, name, err := mouse.detect()
	require.NoError(t, err)
	assert.Equal(t, "/dev/input/event5", path)
	assert.Equal(t, "Logitech USB Receiver Mouse", name)

	kbd := NewKeyboardListener("", Binding{Forward: KeyTab, Backward: KeyTab}, &countingHandler{})
	kbd.devicesFile = devicesFile
	path, _, err = kbd.detect()
	require.NoError(t, err)
	assert.Equal(t, "/dev/input/event3", path)
}

func TestListenerNoDevice(t *testing.T) {
	dir := t.TempDir()
	devicesFile := filepath.Join(dir, "devices")
	require.NoError(t, os.WriteFile(devicesFile, []byte(""), 0644))

	l := NewMouseListener(filepath.Join(dir, "missing-event"), Binding{Forward: BtnExtra, Backward: BtnSide}, &countingHandler{})
	l.devicesFile = devicesFile

	err := l.Run(context.Background())
	var de *DeviceError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.Equal(t, "mouse", de.Listener)
}

func TestListenerConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	devicePath := filepath.Join(dir, "event9")
	require.NoError(t, os.WriteFile(devicePath, encodeEvent(key(KeyTab, valuePress)), 0644))

	h := &countingHandler{}
	l := NewKeyboardListener(devicePath, Binding{Forward: KeyTab, Backward: KeyTab}, h)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 1, h.forward)
}
