// Package buttons implements the debounced button edge state machine
// of spec.md §4.3, issuing commands to hooks supplied by the control
// loop. The Hooks-struct dispatch style is ported from the donor
// sequence player (ledcube/internal/sequence/player.go)'s Hooks field
// group, generalized from renderer callbacks to button actions.
package buttons

import "time"

// DebounceWindow is the minimum spacing between accepted edges on the
// same button, spec.md §4.3 and §8.
const DebounceWindow = 5 * time.Millisecond

// Hooks are the semantic-action callbacks the machine fires on edges.
type Hooks struct {
	OnActivate func()
	OnRelease  func()
}

// Held is the momentary button state the conditioner and frame
// assembler consult each tick.
type Held struct {
	FineMode bool
	ZoomMod  bool
	Flash10  bool
	DimOff   bool
}

// SemanticButtons is the subset of Settings the machine needs to map
// raw button indices to semantic actions.
type SemanticButtons struct {
	Activate int
	Release  int
	Flash10  int
	DimOff   int
	FineMode int
	ZoomMod  int
}

// Machine tracks per-button down/edge state across ticks.
type Machine struct {
	hooks Hooks

	prevDown    map[int]bool
	lastEdge    map[int]time.Time
	debouncedOn map[int]bool
}

func New(hooks Hooks) *Machine {
	return &Machine{
		hooks:       hooks,
		prevDown:    make(map[int]bool),
		lastEdge:    make(map[int]time.Time),
		debouncedOn: make(map[int]bool),
	}
}

// Process consumes one tick's raw button vector (index -> pressed) at
// timestamp now, debounces edges per button, fires semantic-action
// hooks, and returns the debounced Held state plus the full set of
// currently-down button indices (for preset-recall resolution).
func (m *Machine) Process(now time.Time, raw map[int]bool, sem SemanticButtons) (Held, map[int]bool) {
	down := make(map[int]bool, len(raw))
	for idx, pressed := range raw {
		accepted := pressed
		if last, ok := m.lastEdge[idx]; ok && now.Sub(last) < DebounceWindow {
			// Edge arrived inside the debounce window: collapse it,
			// keep the previously-debounced state.
			accepted = m.debouncedOn[idx]
		} else if pressed != m.debouncedOn[idx] {
			m.lastEdge[idx] = now
		}
		m.debouncedOn[idx] = accepted
		down[idx] = accepted
	}

	rose := func(idx int) bool {
		return down[idx] && !m.prevDown[idx]
	}

	if rose(sem.Activate) && m.hooks.OnActivate != nil {
		m.hooks.OnActivate()
	}
	if rose(sem.Release) && m.hooks.OnRelease != nil {
		m.hooks.OnRelease()
	}

	held := Held{
		FineMode: down[sem.FineMode],
		ZoomMod:  down[sem.ZoomMod],
		Flash10:  down[sem.Flash10],
		DimOff:   down[sem.DimOff],
	}

	m.prevDown = down
	return held, down
}
