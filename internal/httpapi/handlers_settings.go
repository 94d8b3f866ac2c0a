package httpapi

import (
	"net/http"

	"github.com/nhaun24/followspot/internal/store"
)

// handleSettings implements GET/POST /api/settings. POST merges: the
// request body is decoded into a copy of the current Settings value,
// so any JSON key the client omits leaves that field at its prior
// value rather than zeroing it out.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.st.Snapshot().Settings)
	case http.MethodPost:
		current := s.st.Snapshot().Settings
		if err := decodeJSON(r, &current); err != nil {
			writeError(w, err)
			return
		}
		if err := s.st.UpdateSettings(func(dst *store.Settings) { *dst = current }); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.st.Snapshot().Settings)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}
