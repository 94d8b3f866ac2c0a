// Package indicator drives the power/error/fixture-status LED
// outputs described in spec.md §7 ("GPIO outputs"). The
// host.Init()-then-open-with-console-fallback shape is grounded on
// spi/render.go's InitLedRenderer: that function tries spireg.Open
// and falls back to a screen.New console drawer when no SPI port is
// found; this package tries gpioreg.ByName and falls back to a no-op
// pin when no GPIO chip is found, so the process still runs on a dev
// laptop instead of failing to start.
package indicator

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// IndicatorSink drives the two process-level LEDs: power (on while
// the process is running) and error (on while RuntimeState.error is
// set), per spec.md §7.
type IndicatorSink interface {
	SetPower(on bool)
	SetError(on bool)
	Close() error
}

// FixtureStatusSink drives one LED per fixture slot, reflecting the
// emitter's per-fixture health (spec.md §7).
type FixtureStatusSink interface {
	SetFixtureOK(slot int, ok bool)
	Close() error
}

type gpioSink struct {
	power   gpio.PinOut
	errPin  gpio.PinOut
	fixture map[int]gpio.PinOut
}

// New opens the power/error pins and one pin per fixture-status slot
// by BCM number. host.Init() is called once; a pin that gpioreg can't
// find (wrong number, no GPIO chip present) falls back to nil, which
// setPin treats as a no-op rather than failing startup.
func New(powerPin, errorPin int, fixturePins []int) (IndicatorSink, FixtureStatusSink, error) {
	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("indicator: host.Init failed, GPIO outputs are no-ops")
		return newNoop(), newNoop(), nil
	}
	s := &gpioSink{
		power:   openPin(powerPin, "power"),
		errPin:  openPin(errorPin, "error"),
		fixture: make(map[int]gpio.PinOut, len(fixturePins)),
	}
	for i, pin := range fixturePins {
		s.fixture[i+1] = openPin(pin, fmt.Sprintf("fixture[%d]", i+1))
	}
	return s, s, nil
}

// openPin returns nil when bcm is unset, the chip has no such pin, or
// the pin doesn't support output; setPin treats a nil pin as a no-op.
func openPin(bcm int, label string) gpio.PinOut {
	if bcm <= 0 {
		return nil
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", bcm))
	if p == nil {
		log.Warn().Int("bcm", bcm).Str("role", label).Msg("indicator: GPIO pin not found, no-op")
		return nil
	}
	out, ok := p.(gpio.PinOut)
	if !ok {
		log.Warn().Int("bcm", bcm).Str("role", label).Msg("indicator: pin does not support output")
		return nil
	}
	return out
}

func (s *gpioSink) SetPower(on bool) { setPin(s.power, on) }
func (s *gpioSink) SetError(on bool) { setPin(s.errPin, on) }

func (s *gpioSink) SetFixtureOK(slot int, ok bool) {
	p, exists := s.fixture[slot]
	if !exists {
		return
	}
	setPin(p, ok)
}

func setPin(p gpio.PinOut, on bool) {
	if p == nil {
		return
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := p.Out(level); err != nil {
		log.Warn().Err(err).Msg("indicator: gpio write failed")
	}
}

func (s *gpioSink) Close() error {
	setPin(s.power, false)
	setPin(s.errPin, false)
	for _, p := range s.fixture {
		setPin(p, false)
	}
	return nil
}

// noopSink is used on hosts with no GPIO controller (spec.md §16's
// "provide a no-op implementation for non-Pi hosts").
type noopSink struct{}

func newNoop() *noopSink { return &noopSink{} }

func (noopSink) SetPower(bool)              {}
func (noopSink) SetError(bool)              {}
func (noopSink) SetFixtureOK(int, bool)     {}
func (noopSink) Close() error               { return nil }
