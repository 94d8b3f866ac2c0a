// Package conditioner implements the pure axis-conditioning transform:
// deadzone -> expo -> fine-mode gain -> 16-bit scale -> invert/bias
// (then the optional soft limits).
//
// The pipeline is a pure function of its inputs: identical (axes, held
// buttons, fixture params, settings) always yields identical output,
// per the testable property in spec.md §8. No package-level state.
package conditioner

import (
	"math"

	"github.com/nhaun24/followspot/internal/dmxmodel"
)

// Axes is the raw normalized joystick sample for one tick.
type Axes struct {
	X        float64 // pan, [-1, +1]
	Y        float64 // tilt, [-1, +1]
	Throttle float64 // dimmer source, [-1, +1]
	Z        float64 // zoom rocker, [-1, +1], if present
}

// Held carries the momentary button state relevant to conditioning.
type Held struct {
	FineMode bool
	ZoomMod  bool
	Flash10  bool
	DimOff   bool
}

// Params is the subset of Settings the conditioner needs, plus the
// per-fixture invert/bias values it applies after the shared curve.
type Params struct {
	Deadzone     float64
	Expo         float64
	FineGain     float64
	ZoomDeadzone float64
	ZoomExpo     float64

	ThrottleInvert bool
	ZoomInvert     bool

	InvertPan  bool
	InvertTilt bool
	PanBias    int32
	TiltBias   int32

	// Optional soft limits, 0 on both ends disables the clamp. Ported
	// from the original controller's pan_min/max, tilt_min/max.
	PanLimitMin, PanLimitMax   uint16
	TiltLimitMin, TiltLimitMax uint16

	// ZoomFromZAxis selects the dedicated z-axis convention; when
	// false and ZoomMod is held, Y feeds zoom instead (legacy mode).
	ZoomFromZAxis bool
}

const (
	center16     = 32768
	flash10Level = 26 // round(0.10 * 255)
)

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyDeadzone implements spec.md §4.2 step 2.
func applyDeadzone(raw, dz float64) float64 {
	if dz <= 0 {
		return raw
	}
	if math.Abs(raw) < dz {
		return 0
	}
	sign := 1.0
	if raw < 0 {
		sign = -1.0
	}
	return sign * (math.Abs(raw) - dz) / (1 - dz)
}

// applyExpo implements spec.md §4.2 step 3: sign(v) * |v|^(1+2*expo).
func applyExpo(v, expo float64) float64 {
	sign := 1.0
	if v < 0 {
		sign = -1.0
	}
	exponent := 1 + 2*expo
	return sign * math.Pow(math.Abs(v), exponent)
}

// scale16 maps [-1, +1] to [0, 65535] with 32768 as center, clamping.
func scale16(v float64) uint16 {
	raw := center16 + math.Round(v*32767)
	return dmxmodel.Clamp16(int32(raw))
}

// conditionAxis runs deadzone -> expo -> fine-gain for one stick axis.
func conditionAxis(raw, dz, expo, fineGain float64, fine bool) float64 {
	raw = clampf(raw, -1, 1)
	v := applyDeadzone(raw, dz)
	v = applyExpo(v, expo)
	if fine {
		v *= fineGain
	}
	return v
}

func applyInvertBias16(v16 uint16, invert bool, bias int32, limMin, limMax uint16) uint16 {
	signed := int32(v16)
	if invert {
		signed = 65535 - signed
	}
	signed += bias
	out := dmxmodel.Clamp16(signed)
	if limMin != 0 || limMax != 0 {
		if out < limMin {
			out = limMin
		}
		if limMax != 0 && out > limMax {
			out = limMax
		}
	}
	return out
}

// Condition runs the full pipeline for one fixture on one tick. zoomPrev
// is the zoom value carried over from the previous tick (zoom is sticky
// for hardware input, see spec.md §9); Condition returns the new zoom
// value to be stored back by the caller.
func Condition(axes Axes, held Held, p Params, zoomPrev uint16) dmxmodel.FixtureValues {
	x := axes.X
	y := axes.Y

	// Per-fixture invert/bias apply to the scaled 16-bit value (step 5),
	// not the raw axis, so the shared deadzone/expo curve below is
	// identical for every fixture regardless of its invert flag.
	xCond := conditionAxis(x, p.Deadzone, p.Expo, p.FineGain, held.FineMode)
	var yCond float64
	writeTilt := true
	if held.ZoomMod && !p.ZoomFromZAxis {
		// y-axis feeds zoom instead of tilt while zoom-mod is held.
		writeTilt = false
	} else {
		yCond = conditionAxis(y, p.Deadzone, p.Expo, p.FineGain, held.FineMode)
	}

	pan16 := scale16(xCond)
	pan16 = applyInvertBias16(pan16, p.InvertPan, p.PanBias, p.PanLimitMin, p.PanLimitMax)

	var tilt16 uint16
	if writeTilt {
		tilt16 = scale16(yCond)
		tilt16 = applyInvertBias16(tilt16, p.InvertTilt, p.TiltBias, p.TiltLimitMin, p.TiltLimitMax)
	}

	zoom16 := zoomPrev
	if held.ZoomMod && p.ZoomFromZAxis {
		zCond := conditionAxis(axes.Z, p.ZoomDeadzone, p.ZoomExpo, p.FineGain, false)
		if p.ZoomInvert {
			zCond = -zCond
		}
		zoom16 = scale16(zCond)
	} else if held.ZoomMod {
		zCond := conditionAxis(y, p.ZoomDeadzone, p.ZoomExpo, p.FineGain, false)
		if p.ZoomInvert {
			zCond = -zCond
		}
		zoom16 = scale16(zCond)
	}
	// else: zoom is sticky, retains zoomPrev.

	dim8 := Dimmer(axes.Throttle, p.ThrottleInvert, held)

	return dmxmodel.FixtureValues{Pan16: pan16, Tilt16: tilt16, Dim8: dim8, Zoom16: zoom16}
}

// Dimmer computes the dimmer byte from the throttle axis and the
// flash-10/dim-off overrides, per spec.md §4.2.
func Dimmer(throttle float64, invert bool, held Held) uint8 {
	t := clampf(throttle, -1, 1)
	if invert {
		t = -t
	}
	// Linear [-1,+1] -> [0,255].
	v := (t + 1.0) * 0.5 * 255.0
	dim := dmxmodel.Clamp8(int32(math.Round(v)))
	if held.Flash10 {
		dim = flash10Level
	}
	if held.DimOff {
		dim = 0
	}
	return dim
}
