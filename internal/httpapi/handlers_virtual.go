package httpapi

import (
	"net/http"

	"github.com/nhaun24/followspot/internal/apperr"
)

type virtualStateResponse struct {
	Enabled  bool    `json:"enabled"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Throttle float64 `json:"throttle"`
	Z        float64 `json:"z"`
}

type virtualWriteRequest struct {
	Enabled  *bool    `json:"enabled"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Throttle *float64 `json:"throttle"`
	Z        *float64 `json:"z"`
}

// handleVirtual implements GET/POST /api/virtual: read or write the
// virtual joystick's axes and enabled flag, spec.md §4.1.
func (s *Server) handleVirtual(w http.ResponseWriter, r *http.Request) {
	virt := s.sw.Virtual()
	switch r.Method {
	case http.MethodGet:
		sample := virt.Snapshot()
		writeJSON(w, http.StatusOK, virtualStateResponse{
			Enabled:  s.sw.VirtualEnabled(),
			X:        sample.X,
			Y:        sample.Y,
			Throttle: sample.Throttle,
			Z:        sample.Z,
		})
	case http.MethodPost:
		var req virtualWriteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Enabled != nil {
			s.sw.SetVirtualEnabled(*req.Enabled)
		}
		cur := virt.Snapshot()
		x, y, throttle, z := cur.X, cur.Y, cur.Throttle, cur.Z
		if req.X != nil {
			x = *req.X
		}
		if req.Y != nil {
			y = *req.Y
		}
		if req.Throttle != nil {
			throttle = *req.Throttle
		}
		if req.Z != nil {
			z = *req.Z
		}
		virt.Write(x, y, throttle, z)
		writeJSON(w, http.StatusOK, virtualStateResponse{
			Enabled: s.sw.VirtualEnabled(), X: x, Y: y, Throttle: throttle, Z: z,
		})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

type virtualButtonRequest struct {
	Button int `json:"button"`
}

// handleVirtualPress and handleVirtualRelease implement
// POST /api/virtual/press and /api/virtual/release: discrete button
// edges on the virtual source, spec.md §9.
func (s *Server) handleVirtualPress(w http.ResponseWriter, r *http.Request) {
	s.handleVirtualButton(w, r, true)
}

func (s *Server) handleVirtualRelease(w http.ResponseWriter, r *http.Request) {
	s.handleVirtualButton(w, r, false)
}

func (s *Server) handleVirtualButton(w http.ResponseWriter, r *http.Request, down bool) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req virtualButtonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Button < 0 {
		writeError(w, apperr.Validation("button must be >= 0"))
		return
	}
	s.sw.Virtual().SetButton(req.Button, down)
	writeJSON(w, http.StatusOK, map[string]any{"button": req.Button, "down": down})
}
