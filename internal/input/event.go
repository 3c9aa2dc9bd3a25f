package input

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Linux input event types and codes
const (
	EvKey = 0x01

	KeyTab       = 15
	KeyLeftShift = 42
	KeyZ         = 44
	BtnSide      = 275
	BtnExtra     = 276
)

// Key event values
const (
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// eventSize is sizeof(struct input_event) on 64-bit Linux: a 16-byte
// timeval followed by type, code and value.
const eventSize = 24

// Event is one decoded input_event
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// DecodeEvent parses a raw input_event record
func DecodeEvent(buf []byte) (Event, error) {
	if len(buf) < eventSize {
		return Event{}, fmt.Errorf("short input event: %d bytes", len(buf))
	}
	return Event{
		Type:  binary.LittleEndian.Uint16(buf[16:18]),
		Code:  binary.LittleEndian.Uint16(buf[18:20]),
		Value: int32(binary.LittleEndian.Uint32(buf[20:24])),
	}, nil
}

// ReadEvent reads and decodes the next event from a device stream
func ReadEvent(r io.Reader, buf []byte) (Event, error) {
	if _, err := io.ReadFull(r, buf[:eventSize]); err != nil {
		return Event{}, err
	}
	return DecodeEvent(buf)
}
