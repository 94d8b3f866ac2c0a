package sacn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	var cid [16]byte
	copy(cid[:], []byte("0123456789abcdef"))

	var dmx [dmxSlots]byte
	dmx[0] = 0x80
	dmx[4] = 0xFF

	pkt := Packet{
		CID:        cid,
		SourceName: sourceName,
		Priority:   150,
		Sequence:   7,
		Universe:   1,
		Dmx:        dmx,
	}
	buf := Encode(pkt)
	require.Len(t, buf, PacketSize)

	assert.Equal(t, byte(0x00), buf[0])
	assert.Equal(t, byte(0x10), buf[1]) // preamble_size = 0x0010
	assert.Equal(t, byte(0x00), buf[2])
	assert.Equal(t, byte(0x00), buf[3]) // postamble_size = 0

	assert.Equal(t, "ASC-E1.17\x00\x00\x00", string(buf[4:16]))

	off := 16
	rootVector := buf[off+2 : off+6]
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x04}, rootVector)
	gotCID := buf[off+6 : off+6+16]
	assert.Equal(t, cid[:], gotCID)

	off += 2 + 4 + 16
	framingVector := buf[off+2 : off+6]
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02}, framingVector)
	off += 2 + 4
	gotName := buf[off : off+sourceNameLen]
	trimmed := string(gotName[:len(sourceName)])
	assert.Equal(t, sourceName, trimmed)
	for _, b := range gotName[len(sourceName):] {
		assert.Equal(t, byte(0), b)
	}
	off += sourceNameLen
	assert.Equal(t, byte(150), buf[off]) // priority
	off++
	off += 2 // sync address
	assert.Equal(t, byte(7), buf[off]) // sequence
	off++
	assert.Equal(t, byte(0), buf[off]) // options, Stream_Terminated clear
	off++
	assert.Equal(t, []byte{0x00, 0x01}, buf[off:off+2]) // universe big-endian
	off += 2

	off += 2 // dmp flags+length
	assert.Equal(t, byte(0x02), buf[off]) // dmp vector
	off++
	assert.Equal(t, byte(0xA1), buf[off])
	off++
	assert.Equal(t, []byte{0x00, 0x00}, buf[off:off+2]) // first property address
	off += 2
	assert.Equal(t, []byte{0x00, 0x01}, buf[off:off+2]) // address increment
	off += 2
	assert.Equal(t, []byte{0x02, 0x01}, buf[off:off+2]) // property value count = 513
	off += 2
	assert.Equal(t, byte(0x00), buf[off]) // start code
	off++
	assert.Equal(t, dmx[:], buf[off:off+dmxSlots])
}

func TestEncodeBasicFrameScenario(t *testing.T) {
	// spec.md §8 scenario 1: DMX[1..5] = [0x80, 0x00, 0x80, 0x00, 0xFF]
	var dmx [dmxSlots]byte
	dmx[0] = 0x80
	dmx[1] = 0x00
	dmx[2] = 0x80
	dmx[3] = 0x00
	dmx[4] = 0xFF

	buf := Encode(Packet{SourceName: sourceName, Universe: 1, Sequence: 0, Dmx: dmx})
	dmxStart := PacketSize - dmxSlots
	assert.Equal(t, []byte{0x80, 0x00, 0x80, 0x00, 0xFF}, buf[dmxStart:dmxStart+5])
}

func TestSourceNamePadsWithZeros(t *testing.T) {
	buf := Encode(Packet{SourceName: "x", Universe: 1})
	nameOff := 16 + (2 + 4 + 16) + (2 + 4)
	name := buf[nameOff : nameOff+sourceNameLen]
	assert.Equal(t, byte('x'), name[0])
	for _, b := range name[1:] {
		assert.Equal(t, byte(0), b)
	}
}
