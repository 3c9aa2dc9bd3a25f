package input

import (
	"bufio"
	"io"
	"math/bits"
	"strconv"
	"strings"
)

const procDevicesPath = "/proc/bus/input/devices"

// DeviceInfo is one block of /proc/bus/input/devices
type DeviceInfo struct {
	Name    string
	Handler string // /dev/input/eventN
	keyBits []uint64
}

// HasKey reports whether the device advertises code in its KEY capability bitmap
func (d DeviceInfo) HasKey(code uint16) bool {
	word := int(code) / bits.UintSize
	if word >= len(d.keyBits) {
		return false
	}
	return d.keyBits[word]&(1<<(uint(code)%bits.UintSize)) != 0
}

// HasAnyKey reports whether the device advertises any of codes
func (d DeviceInfo) HasAnyKey(codes ...uint16) bool {
	for _, c := range codes {
		if c != 0 && d.HasKey(c) {
			return true
		}
	}
	return false
}

// ParseDevices parses the /proc/bus/input/devices format
func ParseDevices(r io.Reader) ([]DeviceInfo, error) {
	var devices []DeviceInfo
	var current DeviceInfo

	flush := func() {
		if current.Handler != "" {
			devices = append(devices, current)
		}
		current = DeviceInfo{}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			flush()

		case strings.HasPrefix(line, "N: Name="):
			current.Name = strings.Trim(strings.TrimPrefix(line, "N: Name="), `"`)

		case strings.HasPrefix(line, "H: Handlers="):
			for _, part := range strings.Fields(strings.TrimPrefix(line, "H: Handlers=")) {
				if strings.HasPrefix(part, "event") {
					current.Handler = "/dev/input/" + part
				}
			}

		case strings.HasPrefix(line, "B: KEY="):
			current.keyBits = parseBitmap(strings.TrimPrefix(line, "B: KEY="))
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// parseBitmap decodes a kernel capability bitmap. Words are printed most
// significant first, so the result is reversed to index word 0 at [0].
func parseBitmap(s string) []uint64 {
	fields := strings.Fields(s)
	words := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 64)
		if err != nil {
			return nil
		}
		words[len(fields)-1-i] = v
	}
	return words
}
