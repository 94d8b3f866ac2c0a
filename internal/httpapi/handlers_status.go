package httpapi

import (
	"net/http"
)

type statusResponse struct {
	Active             bool              `json:"active"`
	Error              bool              `json:"error"`
	ErrorMessage       string            `json:"error_message"`
	LastFrameTimestamp int64             `json:"last_frame_timestamp_ms"`
	FixtureOK          map[string]bool   `json:"fixture_ok"`
	InputName          string            `json:"input_name"`
	InputVirtual       bool              `json:"input_virtual"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rs := s.loop.Snapshot()
	resp := statusResponse{
		Active:             rs.Active,
		Error:              rs.Error,
		ErrorMessage:       rs.ErrorMessage,
		LastFrameTimestamp: rs.LastFrameTimestamp.UnixMilli(),
		FixtureOK:          rs.FixtureOK,
		InputName:          rs.InputName,
		InputVirtual:       rs.InputVirtual,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if s.logs != nil {
		_, _ = w.Write([]byte(s.logs.Dump()))
	}
}
