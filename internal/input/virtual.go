package input

import "sync/atomic"

// VirtualSource accepts writes via the HTTP surface and returns the
// last written values on Poll. Writers and the one reader coordinate
// through an atomic pointer holder, per spec.md §5's "Virtual-joystick
// buffer" rule.
type VirtualSource struct {
	state atomic.Pointer[Sample]
}

func NewVirtual() *VirtualSource {
	v := &VirtualSource{}
	v.state.Store(&Sample{Throttle: -1.0, Buttons: map[int]bool{}})
	return v
}

// Write replaces the virtual sample. Buttons merges on top of the
// previous set rather than fully replacing it, so independent
// press/release calls don't clobber other held buttons.
func (v *VirtualSource) Write(x, y, throttle, z float64) {
	prev := v.state.Load()
	next := &Sample{X: x, Y: y, Throttle: throttle, Z: z, Buttons: copyButtons(prev.Buttons)}
	v.state.Store(next)
}

func (v *VirtualSource) SetButton(idx int, down bool) {
	prev := v.state.Load()
	next := &Sample{X: prev.X, Y: prev.Y, Throttle: prev.Throttle, Z: prev.Z, Buttons: copyButtons(prev.Buttons)}
	next.Buttons[idx] = down
	v.state.Store(next)
}

// ReleaseZoom explicitly zeroes the z-axis, leaving the other axes and
// the buttons as they are (spec.md §9's virtual re-center). No HTTP
// handler calls it; POST /api/virtual with z=0 has the same effect on
// the axes. The hardware z-axis stays sticky.
func (v *VirtualSource) ReleaseZoom() {
	prev := v.state.Load()
	next := &Sample{X: prev.X, Y: prev.Y, Throttle: prev.Throttle, Z: 0, Buttons: copyButtons(prev.Buttons)}
	v.state.Store(next)
}

func copyButtons(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (v *VirtualSource) Poll() (Sample, bool) {
	s := v.state.Load()
	return *s, true
}

func (v *VirtualSource) Snapshot() Sample {
	return *v.state.Load()
}

func (v *VirtualSource) Name() string { return "virtual" }
func (v *VirtualSource) Close() error { return nil }
