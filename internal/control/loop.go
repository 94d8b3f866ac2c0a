// Package control implements the fixed-period scheduler that drives
// input -> buttons -> conditioner -> preset -> frame -> sACN each
// tick, spec.md §4.7. The wall-clock ticker-with-drift-correction
// shape (stop the ticker, recompute the remaining delta, start a
// fresh ticker) is carried over from arcaluminis.go's render loop:
// `delta = period - elapsed; if delta.Milliseconds() > 0 { ticker =
// time.NewTicker(delta) }`. Where that loop free-ran at a constant
// FPS, this one recomputes the period from the live settings snapshot
// every tick and, on overrun, starts a fresh full period rather than
// a shortened catch-up delta (spec.md's "skip, don't burst").
package control

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhaun24/followspot/internal/apperr"
	"github.com/nhaun24/followspot/internal/buttons"
	"github.com/nhaun24/followspot/internal/conditioner"
	"github.com/nhaun24/followspot/internal/dmxmodel"
	"github.com/nhaun24/followspot/internal/frame"
	"github.com/nhaun24/followspot/internal/indicator"
	"github.com/nhaun24/followspot/internal/input"
	"github.com/nhaun24/followspot/internal/preset"
	"github.com/nhaun24/followspot/internal/sacn"
	"github.com/nhaun24/followspot/internal/store"
)

// Loop owns every subsystem the control loop drives each tick. Fields
// below the separator line are touched only from the loop's own
// goroutine and need no synchronization; state and the two pending
// request flags are the atomics shared across goroutine boundaries.
type Loop struct {
	st         *store.Store
	in         *input.Switch
	presets    *preset.Engine
	assembler  *frame.Assembler
	emitter    *sacn.Emitter
	indicators indicator.IndicatorSink
	fixtureLED indicator.FixtureStatusSink

	state atomic.Pointer[RuntimeState]

	// pendingActivate/pendingRelease let the HTTP surface request the
	// same transition the button machine's Activate/Release semantic
	// buttons produce, consumed at the top of the next tick.
	pendingActivate atomic.Bool
	pendingRelease  atomic.Bool

	// --- loop-goroutine-only state ---
	machine      *buttons.Machine
	active       bool
	justReleased bool
	zoomPrev     map[string]uint16
	sawError     bool
	lastSacnLog  time.Time
}

// RequestActivate asks the next tick to activate the rig, as if the
// Activate semantic button had been pressed. Safe from any goroutine.
func (l *Loop) RequestActivate() { l.pendingActivate.Store(true) }

// RequestRelease asks the next tick to release the rig.
func (l *Loop) RequestRelease() { l.pendingRelease.Store(true) }

// ActivatePending and ReleasePending report whether a request is
// still queued for the next tick to consume.
func (l *Loop) ActivatePending() bool { return l.pendingActivate.Load() }
func (l *Loop) ReleasePending() bool  { return l.pendingRelease.Load() }

func New(st *store.Store, in *input.Switch, presets *preset.Engine, asm *frame.Assembler, em *sacn.Emitter, ind indicator.IndicatorSink, fled indicator.FixtureStatusSink) *Loop {
	l := &Loop{
		st:         st,
		in:         in,
		presets:    presets,
		assembler:  asm,
		emitter:    em,
		indicators: ind,
		fixtureLED: fled,
		zoomPrev:   make(map[string]uint16),
	}
	l.machine = buttons.New(buttons.Hooks{
		OnActivate: func() { l.active = true },
		OnRelease: func() {
			l.active = false
			l.justReleased = true
		},
	})
	l.state.Store(newRuntimeState())
	return l
}

// Snapshot returns the most recently published RuntimeState.
func (l *Loop) Snapshot() *RuntimeState { return l.state.Load() }

func framePeriod(hz int) time.Duration {
	if hz <= 0 {
		hz = 40
	}
	return time.Second / time.Duration(hz)
}

// Run blocks, ticking until ctx is cancelled. On cancellation it
// completes the current tick, emits a final zero frame per active
// universe, and closes the emitter, per spec.md §5's shutdown rule.
func (l *Loop) Run(ctx context.Context) {
	snap := l.st.Snapshot()
	period := framePeriod(snap.Settings.FrameRateHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	if l.indicators != nil {
		l.indicators.SetPower(true)
	}

	for {
		select {
		case <-ticker.C:
			tickStart := time.Now()
			snap = l.st.Snapshot()
			l.tick(tickStart, snap)

			elapsed := time.Since(tickStart)
			next := framePeriod(snap.Settings.FrameRateHz)
			delta := next - elapsed
			if delta <= 0 {
				delta = next
			}
			ticker.Stop()
			ticker = time.NewTicker(delta)

		case <-ctx.Done():
			l.shutdown()
			return
		}
	}
}

func (l *Loop) shutdown() {
	log.Info().Msg("control loop shutting down, sending final zero frame")
	universes := l.assembler.ReleaseAll()
	now := time.Now()
	snap := l.st.Snapshot()
	for _, uni := range universes {
		buf := l.assembler.Buffers()[uni]
		if buf == nil {
			continue
		}
		_, _ = l.emitter.Send(now, uni, snap.Settings.CID, byte(clampPriority(snap.Settings.SacnPriority)), buf.Data, true, snap.Settings.UniverseBindMode, snap.Settings.UnicastTargets)
	}
	if l.indicators != nil {
		l.indicators.SetPower(false)
	}
	_ = l.emitter.Close()
}

func (l *Loop) tick(now time.Time, snap *store.Snapshot) {
	if l.pendingActivate.CompareAndSwap(true, false) {
		l.active = true
	}
	if l.pendingRelease.CompareAndSwap(true, false) {
		l.active = false
		l.justReleased = true
	}

	sample, haveInput := l.in.Poll()
	if !haveInput {
		log.Debug().Msg("control: no input sample, conditioning from an all-zero sample")
	}

	sem := buttons.SemanticButtons{
		Activate: snap.Settings.BtnActivate,
		Release:  snap.Settings.BtnRelease,
		Flash10:  snap.Settings.BtnFlash10,
		DimOff:   snap.Settings.BtnDimOff,
		FineMode: snap.Settings.BtnFineMode,
		ZoomMod:  snap.Settings.BtnZoomMod,
	}
	held, down := l.machine.Process(now, sample.Buttons, sem)
	presetVals, presetActive := preset.Resolve(snap, down)

	next := l.state.Load().clone()
	next.Active = l.active
	next.LastFrameTimestamp = now
	next.InputName = l.in.Name()
	next.InputVirtual = l.in.VirtualEnabled()

	axes := conditioner.Axes{X: sample.X, Y: sample.Y, Throttle: sample.Throttle, Z: sample.Z}
	chHeld := conditioner.Held{FineMode: held.FineMode, ZoomMod: held.ZoomMod, Flash10: held.Flash10, DimOff: held.DimOff}

	resolve := func(f store.Fixture) dmxmodel.FixtureValues {
		var v dmxmodel.FixtureValues
		if presetActive {
			v = presetVals
		} else {
			v = conditioner.Condition(axes, chHeld, paramsFor(f, snap.Settings), l.zoomPrev[f.ID])
			if chHeld.ZoomMod && !snap.Settings.ZoomFromZAxis {
				// y feeds zoom, so Condition leaves tilt unset; keep the
				// fixture's last published tilt instead of sending 0.
				if prev, ok := next.Values[f.ID]; ok {
					v.Tilt16 = prev.Tilt16
				}
			}
		}
		l.zoomPrev[f.ID] = v.Zoom16
		next.Values[f.ID] = v
		return v
	}

	if l.active {
		l.assembler.Assemble(snap.Fixtures, resolve)
	} else if l.justReleased {
		l.assembler.ReleaseAll()
		l.justReleased = false
	}

	logSacn := snap.Settings.DebugLogSacn &&
		now.Sub(l.lastSacnLog) >= time.Duration(snap.Settings.DebugLogInterval)*time.Millisecond
	if logSacn {
		l.lastSacnLog = now
	}

	universeErr := make(map[int]bool)
	anyErr := false
	for uni, buf := range l.assembler.Buffers() {
		seq, err := l.emitter.Send(now, uni, snap.Settings.CID, byte(clampPriority(snap.Settings.SacnPriority)), buf.Data, buf.Dirty, snap.Settings.UniverseBindMode, snap.Settings.UnicastTargets)
		if err != nil {
			anyErr = true
			universeErr[uni] = true
			if e, ok := apperr.As(err); ok {
				next.ErrorMessage = e.Error()
			} else {
				next.ErrorMessage = err.Error()
			}
			log.Warn().Err(err).Int("universe", uni).Msg("sacn send failed")
			continue
		}
		buf.Dirty = false
		if logSacn {
			sacn.LogDebug(uni, seq, buf.Data, snap.Settings.DebugLogMode)
		}
	}
	next.Error = anyErr
	if !anyErr {
		next.ErrorMessage = ""
	}

	for _, f := range snap.Fixtures {
		ok := !universeErr[f.Universe]
		next.FixtureOK[f.ID] = ok
		if l.fixtureLED != nil && f.StatusLedSlot > 0 {
			l.fixtureLED.SetFixtureOK(f.StatusLedSlot, ok)
		}
	}
	if l.indicators != nil {
		l.indicators.SetError(next.Error)
	}

	l.state.Store(next)
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 200 {
		return 200
	}
	return p
}

// paramsFor derives the conditioner Params for one fixture from the
// shared Settings and the fixture's own invert/bias/limits.
func paramsFor(f store.Fixture, s store.Settings) conditioner.Params {
	return conditioner.Params{
		Deadzone:       s.Deadzone,
		Expo:           s.Expo,
		FineGain:       s.FineModeGain,
		ZoomDeadzone:   s.ZoomDeadzone,
		ZoomExpo:       s.ZoomExpo,
		ThrottleInvert: s.ThrottleInvert,
		ZoomInvert:     s.ZoomInvert,
		InvertPan:      f.InvertPan,
		InvertTilt:     f.InvertTilt,
		PanBias:        int32(f.PanBias),
		TiltBias:       int32(f.TiltBias),
		PanLimitMin:    s.PanLimitMin,
		PanLimitMax:    s.PanLimitMax,
		TiltLimitMin:   s.TiltLimitMin,
		TiltLimitMax:   s.TiltLimitMax,
		ZoomFromZAxis:  s.ZoomFromZAxis,
	}
}
