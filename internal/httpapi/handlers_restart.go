package httpapi

import "net/http"

// handleRestart implements POST /api/restart. The actual process exit
// is delegated to the restart callback wired in from cmd/followspot;
// a process supervisor (systemd, etc.) is responsible for bringing the
// process back up, per spec.md's systemd-integration Non-goal.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restarting"})
	if s.restart != nil {
		go s.restart()
	}
}
