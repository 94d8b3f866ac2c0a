// Package preset implements the Preset engine: capture/recall of
// position snapshots and their binding to joystick buttons, spec.md
// §4.6. The "held values" mechanism is modeled as a Hold lookup the
// control loop consults each tick, generalized from the donor
// sequence player's Program/Clip CRUD shape
// (ledcube/internal/sequence/player.go) to snapshot recall instead of
// timeline playback.
package preset

import (
	"sort"

	"github.com/nhaun24/followspot/internal/dmxmodel"
	"github.com/nhaun24/followspot/internal/store"
)

// Engine wraps the config store with the preset-specific operations
// and the momentary-hold resolution used by the control loop.
type Engine struct {
	st *store.Store
}

func New(st *store.Store) *Engine {
	return &Engine{st: st}
}

// Capture snapshots the given conditioner output into a new preset. An
// empty name assigns "Preset N" for the smallest unused N.
func (e *Engine) Capture(id, name string, v dmxmodel.FixtureValues) (store.Preset, error) {
	return e.st.CapturePreset(id, name, v.Pan16, v.Tilt16, v.Dim8, v.Zoom16)
}

// Update replaces a preset's captured values, or renames it, or both.
func (e *Engine) Update(id string, v *dmxmodel.FixtureValues, name string) error {
	return e.st.UpdatePreset(id, func(p *store.Preset) {
		if v != nil {
			p.Pan16, p.Tilt16, p.Dim8, p.Zoom16 = v.Pan16, v.Tilt16, v.Dim8, v.Zoom16
		}
		if name != "" {
			p.Name = name
		}
	})
}

// Delete removes a preset, cascading to any button binding.
func (e *Engine) Delete(id string) error {
	return e.st.DeletePreset(id)
}

// Bind associates button with preset id ("" unbinds).
func (e *Engine) Bind(button int, id string) error {
	return e.st.BindButton(button, id)
}

// List returns presets sorted by name.
func (e *Engine) List() []store.Preset {
	return store.SortedPresets(e.st.Snapshot().Presets)
}

// Resolve returns the held preset values for the current tick, given
// the set of buttons currently down. When more than one bound
// recall button is held, the lowest button index wins, a deterministic
// tie-break the spec leaves unspecified.
func Resolve(snap *store.Snapshot, down map[int]bool) (dmxmodel.FixtureValues, bool) {
	if len(snap.Bindings) == 0 {
		return dmxmodel.FixtureValues{}, false
	}
	bindings := append([]store.ButtonBinding(nil), snap.Bindings...)
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Button < bindings[j].Button })
	for _, b := range bindings {
		if !down[b.Button] {
			continue
		}
		for _, p := range snap.Presets {
			if p.ID == b.Preset {
				return dmxmodel.FixtureValues{Pan16: p.Pan16, Tilt16: p.Tilt16, Dim8: p.Dim8, Zoom16: p.Zoom16}, true
			}
		}
	}
	return dmxmodel.FixtureValues{}, false
}
