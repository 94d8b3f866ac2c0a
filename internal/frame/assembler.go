// Package frame implements the frame assembler: it packs per-fixture
// channel maps into per-universe 512-byte DMX buffers, spec.md §4.4.
// The buffer-holder shape is grounded on the donor's render.Engine
// owned framebuffers (BufA/BufB/Out in ledcube/internal/render/engine.go).
package frame

import (
	"github.com/nhaun24/followspot/internal/dmxmodel"
	"github.com/nhaun24/followspot/internal/store"
)

// UniverseBuffer is the 512-byte DMX payload for one universe plus the
// bookkeeping the emitter needs, spec.md §3.
type UniverseBuffer struct {
	Data     [512]byte
	Dirty    bool
	Retiring bool // true for exactly the tick that sends the final all-zero frame
}

// Assembler owns the set of UniverseBuffers, allocating lazily on
// first use and retiring them when no enabled fixture references the
// universe anymore, per spec.md §3's Lifecycle rule.
type Assembler struct {
	buffers map[int]*UniverseBuffer
}

func New() *Assembler {
	return &Assembler{buffers: make(map[int]*UniverseBuffer)}
}

// Buffers returns the live universe set for the emitter to iterate.
func (a *Assembler) Buffers() map[int]*UniverseBuffer {
	return a.buffers
}

func (a *Assembler) bufferFor(universe int) *UniverseBuffer {
	b, ok := a.buffers[universe]
	if !ok {
		b = &UniverseBuffer{}
		a.buffers[universe] = b
	}
	return b
}

// writeSlot writes val at the fixture-relative offset k (1-based) if
// k > 0; a zero offset means "unused" and must not be touched, per
// spec.md §4.4.
func writeSlot(buf *UniverseBuffer, startAddr, k int, val byte) {
	if k <= 0 {
		return
	}
	slot := startAddr + k - 1 // 1-based DMX slot
	if slot < 1 || slot > 512 {
		return
	}
	idx := slot - 1 // 0-based into Data
	if buf.Data[idx] != val {
		buf.Dirty = true
	}
	buf.Data[idx] = val
}

// Assemble runs one tick: for every enabled fixture, resolve its
// current value (from resolve) and write it into its universe buffer.
// Universes with no remaining enabled fixture are retired with one
// final all-zero frame.
func (a *Assembler) Assemble(fixtures []store.Fixture, resolve func(store.Fixture) dmxmodel.FixtureValues) {
	active := make(map[int]bool, len(a.buffers))
	for _, f := range fixtures {
		if !f.Enabled {
			continue
		}
		active[f.Universe] = true
		buf := a.bufferFor(f.Universe)
		buf.Retiring = false
		v := resolve(f)

		pan := v.Pan16
		tilt := v.Tilt16
		writeSlot(buf, f.StartAddr, f.PanCoarse, dmxmodel.Coarse(pan))
		writeSlot(buf, f.StartAddr, f.PanFine, dmxmodel.Fine(pan))
		writeSlot(buf, f.StartAddr, f.TiltCoarse, dmxmodel.Coarse(tilt))
		writeSlot(buf, f.StartAddr, f.TiltFine, dmxmodel.Fine(tilt))
		writeSlot(buf, f.StartAddr, f.Dimmer, v.Dim8)
		writeSlot(buf, f.StartAddr, f.Zoom, dmxmodel.Coarse(v.Zoom16))
		writeSlot(buf, f.StartAddr, f.ZoomFine, dmxmodel.Fine(v.Zoom16))
		writeSlot(buf, f.StartAddr, f.ColorTempChannel, byte(f.ColorTempValue))
	}

	for uni, buf := range a.buffers {
		if !active[uni] {
			if !buf.Retiring {
				buf.Data = [512]byte{}
				buf.Dirty = true
				buf.Retiring = true
			} else {
				delete(a.buffers, uni)
			}
		}
	}
}

// ReleaseAll zeroes every live buffer once, marking it dirty, per
// spec.md §4.4's "When RuntimeState.active is false" rule. Returns the
// set of universes that were zeroed; the control loop's shutdown uses
// it to send each of them a final zero frame.
func (a *Assembler) ReleaseAll() []int {
	universes := make([]int, 0, len(a.buffers))
	for uni, buf := range a.buffers {
		buf.Data = [512]byte{}
		buf.Dirty = true
		universes = append(universes, uni)
	}
	return universes
}
