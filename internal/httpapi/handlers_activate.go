package httpapi

import "net/http"

// handleActivate and handleRelease implement POST /api/activate and
// POST /api/release: an HTTP-triggered equivalent of the Activate and
// Release semantic joystick buttons, consumed by the control loop at
// the top of its next tick.
func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	s.loop.RequestActivate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "activating"})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	s.loop.RequestRelease()
	writeJSON(w, http.StatusOK, map[string]string{"status": "releasing"})
}
