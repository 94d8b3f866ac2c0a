package control

import (
	"time"

	"github.com/nhaun24/followspot/internal/dmxmodel"
)

// RuntimeState is the read side of spec.md §3's RuntimeState: written
// only by the control loop, published lock-free for the HTTP surface
// and status websocket to read, per spec.md §5.
type RuntimeState struct {
	Active              bool
	Error               bool
	ErrorMessage        string
	LastFrameTimestamp  time.Time
	FixtureOK           map[string]bool
	Values              map[string]dmxmodel.FixtureValues
	InputName           string
	InputVirtual        bool
}

func newRuntimeState() *RuntimeState {
	return &RuntimeState{
		FixtureOK: make(map[string]bool),
		Values:    make(map[string]dmxmodel.FixtureValues),
	}
}

func (s *RuntimeState) clone() *RuntimeState {
	n := *s
	n.FixtureOK = make(map[string]bool, len(s.FixtureOK))
	for k, v := range s.FixtureOK {
		n.FixtureOK[k] = v
	}
	n.Values = make(map[string]dmxmodel.FixtureValues, len(s.Values))
	for k, v := range s.Values {
		n.Values[k] = v
	}
	return &n
}
