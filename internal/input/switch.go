package input

import "sync/atomic"

// Switch holds both the Hardware and Virtual sources and atomically
// selects between them, per spec.md §4.1: "Swap is atomic: when the
// virtual flag is on, hardware is ignored but the device handle is
// kept open if possible."
type Switch struct {
	hw      *HardwareSource
	virtual *VirtualSource
	useVirt atomic.Bool
}

func NewSwitch(hw *HardwareSource, virt *VirtualSource, virtualEnabled bool) *Switch {
	s := &Switch{hw: hw, virtual: virt}
	s.useVirt.Store(virtualEnabled)
	return s
}

func (s *Switch) SetVirtualEnabled(enabled bool) { s.useVirt.Store(enabled) }
func (s *Switch) VirtualEnabled() bool           { return s.useVirt.Load() }

func (s *Switch) Virtual() *VirtualSource { return s.virtual }

// Poll reads the active source. When the hardware source has no
// device, Poll falls back to the virtual source's last values so the
// control loop keeps a definite sample even before the operator
// enables the virtual flag explicitly, matching the original's
// "no joystick -> use virtual state" fallback.
func (s *Switch) Poll() (Sample, bool) {
	if s.useVirt.Load() {
		return s.virtual.Poll()
	}
	if sample, ok := s.hw.Poll(); ok {
		return sample, true
	}
	return s.virtual.Poll()
}

func (s *Switch) Name() string {
	if s.useVirt.Load() {
		return s.virtual.Name()
	}
	if n := s.hw.Name(); n != "" {
		return n
	}
	return ""
}

func (s *Switch) Close() error {
	_ = s.hw.Close()
	return nil
}
