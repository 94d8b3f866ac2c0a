//go:build linux

package input

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux joystick API (include/uapi/linux/joystick.h) event layout and
// ioctl request numbers. Computed from the kernel's _IOR macro rather
// than vendoring the header: _IOR('j', nr, size) =
// (2<<30) | (size<<16) | ('j'<<8) | nr.
const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	jsiocgaxes    = 0x80016a11 // _IOR('j', 0x11, __u8)
	jsiocgbuttons = 0x80016a12 // _IOR('j', 0x12, __u8)
)

type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

const jsEventSize = 8

// HardwareSource reads a Linux joystick device (/dev/input/jsN) in a
// non-blocking poll-and-return style, per spec.md §4.1. Axis 0=pan,
// 1=tilt, 2=throttle, 3=zaxis/zoom; unavailable axes read 0.0.
type HardwareSource struct {
	mu      sync.Mutex
	path    string
	fd      int
	open    bool
	name    string
	axes    []int16 // raw int16 values, -32767..32767
	buttons map[int]bool
}

// OpenHardware opens the given device path (e.g. /dev/input/js0)
// non-blocking. A missing device is not a fatal error: it returns a
// Source whose Poll reports !ok until a device appears, matching the
// "idle, not error" health transition in spec.md §4.1.
func OpenHardware(path string) *HardwareSource {
	h := &HardwareSource{path: path, fd: -1, buttons: make(map[int]bool)}
	h.tryOpen()
	return h
}

func (h *HardwareSource) tryOpen() {
	fd, err := unix.Open(h.path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		h.open = false
		return
	}
	h.fd = fd
	h.open = true
	h.axes = make([]int16, 8)
	if n, ok := ioctlGetUint8(fd, jsiocgaxes); ok {
		h.axes = make([]int16, n)
	}
	if name, err := ioctlGetName(fd, 128); err == nil {
		h.name = name
	} else {
		h.name = filepath.Base(h.path)
	}
}

func ioctlGetUint8(fd int, req uintptr) (int, bool) {
	var v uint8
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return 0, false
	}
	return int(v), true
}

func ioctlGetName(fd int, buflen int) (string, error) {
	buf := make([]byte, buflen)
	// _IOC_READ('j', 0x13, buflen)
	req := uintptr((2 << 30) | (buflen << 16) | ('j' << 8) | 0x13)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return "", errno
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), nil
}

func (h *HardwareSource) drain() {
	var raw [jsEventSize]byte
	for {
		n, err := unix.Read(h.fd, raw[:])
		if err != nil || n != jsEventSize {
			return
		}
		ev := jsEvent{
			Time:   binary.LittleEndian.Uint32(raw[0:4]),
			Value:  int16(binary.LittleEndian.Uint16(raw[4:6])),
			Type:   raw[6],
			Number: raw[7],
		}
		switch ev.Type &^ jsEventInit {
		case jsEventAxis:
			for len(h.axes) <= int(ev.Number) {
				h.axes = append(h.axes, 0)
			}
			h.axes[ev.Number] = ev.Value
		case jsEventButton:
			h.buttons[int(ev.Number)] = ev.Value != 0
		}
	}
}

func axisToFloat(v int16) float64 {
	f := float64(v) / 32767.0
	if f < -1 {
		f = -1
	}
	if f > 1 {
		f = 1
	}
	return f
}

func (h *HardwareSource) Poll() (Sample, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.open {
		h.tryOpen()
		if !h.open {
			return Sample{}, false
		}
	}
	h.drain()
	s := Sample{Buttons: make(map[int]bool, len(h.buttons))}
	get := func(idx int) float64 {
		if idx >= 0 && idx < len(h.axes) {
			return axisToFloat(h.axes[idx])
		}
		return 0.0
	}
	s.X = get(0)
	s.Y = get(1)
	s.Throttle = get(2)
	s.Z = get(3)
	for k, v := range h.buttons {
		s.Buttons[k] = v
	}
	return s, true
}

func (h *HardwareSource) Name() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.open {
		return ""
	}
	return h.name
}

func (h *HardwareSource) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open {
		_ = unix.Close(h.fd)
		h.open = false
	}
	return nil
}

// DeviceInfo describes one discoverable joystick device for
// GET /api/usb/devices (SPEC_FULL.md §3's supplemented discovery
// endpoint, ported from the original's api_discover).
type DeviceInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Axes    int    `json:"axes"`
	Buttons int    `json:"buttons"`
}

// ListDevices enumerates /dev/input/js* devices.
func ListDevices() ([]DeviceInfo, error) {
	matches, err := filepath.Glob("/dev/input/js*")
	if err != nil {
		return nil, fmt.Errorf("glob joystick devices: %w", err)
	}
	sort.Strings(matches)
	out := make([]DeviceInfo, 0, len(matches))
	for _, path := range matches {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		info := DeviceInfo{Path: path}
		if name, err := ioctlGetName(fd, 128); err == nil {
			info.Name = name
		}
		if n, ok := ioctlGetUint8(fd, jsiocgaxes); ok {
			info.Axes = n
		}
		if n, ok := ioctlGetUint8(fd, jsiocgbuttons); ok {
			info.Buttons = n
		}
		_ = unix.Close(fd)
		out = append(out, info)
	}
	return out, nil
}
