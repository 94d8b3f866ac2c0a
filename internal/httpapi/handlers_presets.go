package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/nhaun24/followspot/internal/apperr"
	"github.com/nhaun24/followspot/internal/dmxmodel"
)

type presetCaptureRequest struct {
	Name    string `json:"name"`
	Fixture string `json:"fixture"` // optional; defaults to the first enabled fixture's live values
}

// handlePresetsCollection implements GET/POST /api/presets.
//
// Capture sources its (pan16, tilt16, dim8, zoom16) tuple from the
// control loop's RuntimeState.Values rather than from the store,
// since the store only holds committed presets, not live conditioner
// output. When the request names a fixture id, that fixture's current
// values are captured; otherwise the first enabled fixture with
// published values wins, matching the single-spot assumption of the original
// capture() workflow.
func (s *Server) handlePresetsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.presets.List())
	case http.MethodPost:
		var req presetCaptureRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		v, err := s.currentValues(req.Fixture)
		if err != nil {
			writeError(w, err)
			return
		}
		p, err := s.presets.Capture(newPresetID(), req.Name, v)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) currentValues(fixtureID string) (dmxmodel.FixtureValues, error) {
	snap := s.loop.Snapshot()
	if fixtureID != "" {
		v, ok := snap.Values[fixtureID]
		if !ok {
			return dmxmodel.FixtureValues{}, apperr.NotFoundf("fixture %q has no live values yet", fixtureID)
		}
		return v, nil
	}
	for _, f := range s.st.Snapshot().Fixtures {
		if !f.Enabled {
			continue
		}
		if v, ok := snap.Values[f.ID]; ok {
			return v, nil
		}
	}
	return dmxmodel.FixtureValues{}, apperr.Validation("no live fixture values to capture")
}

func newPresetID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

type presetPatchRequest struct {
	Name    string                   `json:"name"`
	Refresh bool                     `json:"refresh"` // recapture live values instead of renaming only
	Fixture string                   `json:"fixture"`
	Values  *dmxmodel.FixtureValues `json:"values"`
}

// handlePresetItemOrRecall routes everything under /api/presets/:
// PATCH/DELETE /api/presets/{id}, and POST /api/presets/{id}/recall.
func (s *Server) handlePresetItemOrRecall(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/presets/")
	id, action := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, action = rest[:i], rest[i+1:]
	}
	if id == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "missing preset id"})
		return
	}

	if action == "recall" {
		s.handlePresetRecall(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req presetPatchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		values := req.Values
		if req.Refresh {
			v, err := s.currentValues(req.Fixture)
			if err != nil {
				writeError(w, err)
				return
			}
			values = &v
		}
		if err := s.presets.Update(id, values, req.Name); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	case http.MethodDelete:
		if err := s.presets.Delete(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handlePresetRecall implements POST /api/presets/{id}/recall. When
// the preset has a bound button, a brief simulated press/release
// drives the same momentary-hold path the joystick does; an unbound
// preset has no hold mechanism to piggyback on and is reported 404.
func (s *Server) handlePresetRecall(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	snap := s.st.Snapshot()
	button := -1
	for _, b := range snap.Bindings {
		if b.Preset == id {
			button = b.Button
			break
		}
	}
	if button < 0 {
		writeError(w, apperr.NotFoundf("preset %q is not bound to a button", id))
		return
	}
	virt := s.sw.Virtual()
	virt.SetButton(button, true)
	go func() {
		time.Sleep(200 * time.Millisecond)
		virt.SetButton(button, false)
	}()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "button": button})
}

type presetButtonRequest struct {
	Button int    `json:"button"`
	Preset string `json:"preset"` // "" unbinds
}

// handlePresetButtons implements POST /api/preset-buttons: bind or
// unbind a preset to a joystick button, spec.md §4.6.
func (s *Server) handlePresetButtons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req presetButtonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.presets.Bind(req.Button, req.Preset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"button": req.Button, "preset": req.Preset})
}
