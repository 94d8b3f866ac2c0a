package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var statusUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleStatusStream implements the supplemented GET /api/status/stream
// websocket: a periodic push of the same payload /api/status returns,
// so the UI doesn't need to poll. Client registration and broadcast
// are ported from ledcube/internal/ws/state.go's
// HandleFramesWS/broadcastFrame pair.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("httpapi: status websocket upgrade failed")
		return
	}

	s.wsMu.Lock()
	s.wsClients[conn] = true
	s.wsMu.Unlock()
	s.writeStatusTo(conn)

	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.wsClients, conn)
			s.wsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastStatus pushes the current RuntimeState to every connected
// status websocket client. It is intended to be called from a ticker
// in cmd/followspot's main loop, independent of the control loop's own
// tick rate.
func (s *Server) BroadcastStatus() {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if len(s.wsClients) == 0 {
		return
	}
	b := s.statusPayload()
	for c := range s.wsClients {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("httpapi: status websocket write failed")
		}
	}
}

func (s *Server) writeStatusTo(conn *websocket.Conn) {
	_ = conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	_ = conn.WriteMessage(websocket.TextMessage, s.statusPayload())
}

func (s *Server) statusPayload() []byte {
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
	b, _ := json.Marshal(resp)
	return b
}
