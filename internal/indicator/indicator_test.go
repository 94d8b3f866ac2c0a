package indicator

import "testing"

func TestNoopSinkNeverPanics(t *testing.T) {
	sink := newNoop()
	sink.SetPower(true)
	sink.SetError(true)
	sink.SetFixtureOK(1, false)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGpioSinkNilPinsAreNoop(t *testing.T) {
	s := &gpioSink{}
	s.SetPower(true)
	s.SetError(false)
	s.SetFixtureOK(3, true)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
