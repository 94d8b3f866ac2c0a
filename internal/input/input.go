// Package input abstracts the joystick input source: a physical HID
// device or a virtual HTTP-driven override, swapped atomically. The
// small-interface-plus-variants shape is grounded on the donor's
// led.Driver interface (ledcube/internal/led/driver.go) and its
// fake/preview "always have a working stand-in" variants
// (ledcube/internal/driver/fake, .../preview).
package input

// Sample is one tick's normalized axis + button read.
type Sample struct {
	X, Y, Throttle, Z float64 // each in [-1, +1]
	Buttons           map[int]bool
}

// Source is the pull API spec.md §4.1 describes.
type Source interface {
	// Poll returns the current sample. ok is false only when the
	// source has nothing to report (a hardware source with no device);
	// the virtual source always reports its last values, starting from
	// its initial sample. Callers should treat !ok as idle, not an error.
	Poll() (Sample, bool)
	// Name reports a human-readable description for /api/status.
	Name() string
	Close() error
}
