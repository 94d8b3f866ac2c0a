package sacn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhaun24/followspot/internal/store"
)

func TestEmitterSequenceIncrementsPerUniverse(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	defer e.Close()

	var cid [16]byte
	var dmx [dmxSlots]byte
	now := time.Unix(1000, 0)

	seq, err := e.Send(now, 1, cid, 150, dmx, true, store.BindMulticast, nil)
	require.NoError(t, err)
	require.Equal(t, uint8(0), seq)

	now = now.Add(25 * time.Millisecond)
	dmx[0] = 0x01
	seq, err = e.Send(now, 1, cid, 150, dmx, true, store.BindMulticast, nil)
	require.NoError(t, err)
	require.Equal(t, uint8(1), seq)
}

func TestEmitterKeepaliveWithoutDirty(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	defer e.Close()

	var cid [16]byte
	var dmx [dmxSlots]byte
	now := time.Unix(2000, 0)
	_, err = e.Send(now, 1, cid, 150, dmx, true, store.BindMulticast, nil)
	require.NoError(t, err)

	// Not yet a second later and not dirty: no send, sequence unchanged.
	now = now.Add(100 * time.Millisecond)
	seq, err := e.Send(now, 1, cid, 150, dmx, false, store.BindMulticast, nil)
	require.NoError(t, err)
	require.Equal(t, uint8(1), seq)

	// A full second elapsed: keepalive fires even though not dirty.
	now = now.Add(950 * time.Millisecond)
	seq, err = e.Send(now, 1, cid, 150, dmx, false, store.BindMulticast, nil)
	require.NoError(t, err)
	require.Equal(t, uint8(1), seq) // seq returned is the one just used for this send
	require.Equal(t, uint8(2), e.states[1].seq)
}

func TestDestForMulticastDerivesFromUniverse(t *testing.T) {
	addr, err := destFor(300, store.BindMulticast, nil)
	require.NoError(t, err)
	hi := byte(300 >> 8)
	lo := byte(300 & 0xFF)
	require.True(t, addr.IP.Equal(net.IPv4(239, 255, hi, lo)))
	require.Equal(t, Port, addr.Port)
}

func TestDestForUnicastRequiresTarget(t *testing.T) {
	_, err := destFor(1, store.BindUnicast, nil)
	require.Error(t, err)

	addr, err := destFor(1, store.BindUnicast, map[int]string{1: "10.0.0.5"})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", addr.IP.String())
}

func TestMultiNICSendsOncePerBoundAddress(t *testing.T) {
	e, err := New([]string{"127.0.0.1", "127.0.0.2"})
	require.NoError(t, err)
	defer e.Close()
	require.Len(t, e.conns, 2)

	var cid [16]byte
	var dmx [dmxSlots]byte
	_, err = e.Send(time.Unix(0, 0), 1, cid, 150, dmx, true, store.BindMulticast, nil)
	require.NoError(t, err)
}
