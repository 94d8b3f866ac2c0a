package sacn

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhaun24/followspot/internal/apperr"
	"github.com/nhaun24/followspot/internal/store"
)

const sourceName = "FollowSpot"

// keepaliveInterval is the "refresh at least once per second" rule
// in spec.md §4.5.
const keepaliveInterval = 1 * time.Second

// universeState tracks the per-universe sequence counter and last
// send time the emitter needs to decide whether a tick is a real
// update or a keepalive refresh.
type universeState struct {
	seq      uint8
	lastSent time.Time
}

// Emitter owns one UDP socket per bound local address and the
// per-universe sequence counters, spec.md §4.5. Sockets are opened
// once at construction and reused for the life of the process.
type Emitter struct {
	mu     sync.Mutex
	conns  []*net.UDPConn
	states map[int]*universeState
}

// New dials one UDP socket per bind address (or a single
// INADDR_ANY socket when addrs is empty, per spec.md §4.5).
func New(addrs []string) (*Emitter, error) {
	e := &Emitter{states: make(map[int]*universeState)}
	if len(addrs) == 0 {
		conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
		if err != nil {
			return nil, apperr.Network("sacn: open default socket", err)
		}
		e.conns = append(e.conns, conn)
		return e, nil
	}
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip == nil {
			return nil, apperr.Validation(fmt.Sprintf("sacn: invalid bind address %q", a))
		}
		conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: ip, Port: 0})
		if err != nil {
			return nil, apperr.Network(fmt.Sprintf("sacn: bind %s", a), err)
		}
		e.conns = append(e.conns, conn)
	}
	return e, nil
}

func (e *Emitter) Close() error {
	for _, c := range e.conns {
		_ = c.Close()
	}
	return nil
}

// destFor resolves a universe's destination per spec.md §4.5: a
// multicast group derived from the universe number, or an explicit
// per-universe unicast target.
func destFor(universe int, mode store.BindMode, unicastTargets map[int]string) (*net.UDPAddr, error) {
	if mode == store.BindUnicast {
		addr, ok := unicastTargets[universe]
		if !ok || addr == "" {
			return nil, apperr.Validation(fmt.Sprintf("sacn: no unicast target configured for universe %d", universe))
		}
		ip := net.ParseIP(addr)
		if ip == nil {
			return nil, apperr.Validation(fmt.Sprintf("sacn: invalid unicast target %q for universe %d", addr, universe))
		}
		return &net.UDPAddr{IP: ip, Port: Port}, nil
	}
	hi := byte((universe >> 8) & 0xFF)
	lo := byte(universe & 0xFF)
	return &net.UDPAddr{IP: net.IPv4(239, 255, hi, lo), Port: Port}, nil
}

// Send transmits one universe's current buffer if it's dirty, or a
// keepalive refresh if keepaliveInterval has elapsed since the last
// send for that universe, per spec.md §4.5. It writes the packet
// once per bound local address (multi-NIC duplication is intentional;
// receivers dedupe by CID+sequence). now is the caller's clock so
// tests can drive it deterministically.
// Send returns the sequence number it used (even when err != nil,
// the counter had already advanced) so callers can attribute a debug
// log line to the right packet.
func (e *Emitter) Send(now time.Time, universe int, cid [16]byte, priority uint8, dmx [dmxSlots]byte, dirty bool, mode store.BindMode, unicastTargets map[int]string) (uint8, error) {
	e.mu.Lock()
	st, ok := e.states[universe]
	if !ok {
		st = &universeState{lastSent: time.Time{}}
		e.states[universe] = st
	}
	shouldSend := dirty || now.Sub(st.lastSent) >= keepaliveInterval
	if !shouldSend {
		e.mu.Unlock()
		return st.seq, nil
	}
	seq := st.seq
	st.seq++
	st.lastSent = now
	e.mu.Unlock()

	dest, err := destFor(universe, mode, unicastTargets)
	if err != nil {
		return seq, err
	}

	pkt := Encode(Packet{
		CID:        cid,
		SourceName: sourceName,
		Priority:   priority,
		Sequence:   seq,
		Universe:   uint16(universe),
		Dmx:        dmx,
	})

	var sendErr error
	for _, conn := range e.conns {
		if _, err := conn.WriteToUDP(pkt, dest); err != nil {
			sendErr = err
		}
	}
	if sendErr != nil {
		return seq, apperr.Network(fmt.Sprintf("sacn: send universe %d", universe), sendErr)
	}
	return seq, nil
}

// LogDebug writes one sACN frame summary line per spec.md's
// supplemented debug-logging feature, ported from the original's
// _maybe_log_sacn. mode controls verbosity: "summary" logs only the
// non-zero channel count, "nonzero" lists nonzero slot/value pairs,
// "full" dumps all 512 bytes.
func LogDebug(universe int, seq uint8, dmx [dmxSlots]byte, mode string) {
	nonzero := 0
	for _, b := range dmx {
		if b != 0 {
			nonzero++
		}
	}
	ev := log.Debug().Int("universe", universe).Int("seq", int(seq)).Int("nonzero_slots", nonzero)
	switch mode {
	case "nonzero":
		pairs := make(map[int]byte, nonzero)
		for i, b := range dmx {
			if b != 0 {
				pairs[i+1] = b
			}
		}
		ev.Interface("slots", pairs).Msg("sacn frame")
	case "full":
		ev.Bytes("dmx", dmx[:]).Msg("sacn frame")
	default:
		ev.Msg("sacn frame")
	}
}
