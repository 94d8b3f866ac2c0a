// Package httpapi implements the JSON control surface of spec.md §6:
// settings, fixtures, presets, the virtual joystick override, status,
// and the supplemented live-status websocket stream. The
// negroni.Classic()-wrapping-a-ServeMux shape is ported from
// r3-spaceapistatus/webserver.go's goRunWebserver; the websocket
// upgrade/broadcast style is ported from
// ledcube/internal/ws/state.go's HandleFramesWS/broadcastFrame.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/codegangsta/negroni"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nhaun24/followspot/internal/apperr"
	"github.com/nhaun24/followspot/internal/control"
	"github.com/nhaun24/followspot/internal/input"
	"github.com/nhaun24/followspot/internal/logging"
	"github.com/nhaun24/followspot/internal/preset"
	"github.com/nhaun24/followspot/internal/store"
)

// Server holds everything the HTTP handlers need. It has no state of
// its own beyond the websocket client set; Settings/Fixtures/Presets
// live in the store, RuntimeState lives in the control loop.
type Server struct {
	st      *store.Store
	loop    *control.Loop
	sw      *input.Switch
	presets *preset.Engine
	logs    *logging.RingBuffer
	restart func()

	wsMu      sync.Mutex
	wsClients map[*websocket.Conn]bool
}

func NewServer(st *store.Store, loop *control.Loop, sw *input.Switch, presets *preset.Engine, logs *logging.RingBuffer, restart func()) *Server {
	return &Server{
		st:        st,
		loop:      loop,
		sw:        sw,
		presets:   presets,
		logs:      logs,
		restart:   restart,
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Handler builds the negroni-wrapped ServeMux, grounded on
// r3-spaceapistatus/webserver.go's negroni.Classic()+mux.UseHandler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/status/stream", s.handleStatusStream)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/settings", s.handleSettings)

	mux.HandleFunc("/api/fixtures", s.handleFixturesCollection)
	mux.HandleFunc("/api/fixtures/", s.handleFixtureItemOrSpecial)

	mux.HandleFunc("/api/activate", s.handleActivate)
	mux.HandleFunc("/api/release", s.handleRelease)

	mux.HandleFunc("/api/virtual", s.handleVirtual)
	mux.HandleFunc("/api/virtual/press", s.handleVirtualPress)
	mux.HandleFunc("/api/virtual/release", s.handleVirtualRelease)

	mux.HandleFunc("/api/presets", s.handlePresetsCollection)
	mux.HandleFunc("/api/presets/", s.handlePresetItemOrRecall)
	mux.HandleFunc("/api/preset-buttons", s.handlePresetButtons)

	mux.HandleFunc("/api/network/adapters", s.handleNetworkAdapters)
	mux.HandleFunc("/api/usb/devices", s.handleUSBDevices)

	mux.HandleFunc("/api/restart", s.handleRestart)

	n := negroni.Classic()
	n.UseHandler(mux)
	return n
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("httpapi: encode response failed")
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	if e, ok := apperr.As(err); ok {
		writeJSON(w, e.Kind.Status(), map[string]string{"error": e.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return nil
}
