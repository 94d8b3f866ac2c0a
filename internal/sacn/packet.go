// Package sacn implements the ANSI E1.31 (sACN) wire format and a
// UDP emitter that transmits DMP data packets to one or more bound
// local addresses, spec.md §4.5/§6. The manual byte-level packet
// construction and per-sender sequence counter are grounded on
// scoobymooch-artnet_showrunner/main.go's buildArtDMX/ArtNetSender —
// same shape, a different (bit-exact, spec-mandated) wire format.
package sacn

import "encoding/binary"

const (
	Port = 5568

	rootPreambleSize     = 0x0010
	rootPostambleSize    = 0x0000
	vectorRootE131Data   = 0x00000004
	vectorE131DataPacket = 0x00000002
	vectorDMPSetProperty = 0x02

	sourceNameLen = 64
	cidLen        = 16
	dmxSlots      = 512

	dmpLen     = 2 + 1 + 1 + 2 + 2 + 2 + 1 + dmxSlots // flags/len + vector + addr/data type + first addr + increment + count + start code + 512 data
	framingLen = 2 + 4 + sourceNameLen + 1 + 2 + 1 + 1 + 2 + dmpLen
	rootLen    = 2 + 4 + cidLen + framingLen

	// PacketSize is the full wire size of one encoded DMP data packet.
	PacketSize = 2 + 2 + 12 + rootLen // preamble + postamble + ACN-PID + root PDU
)

var acnPID = [12]byte{'A', 'S', 'C', '-', 'E', '1', '.', '1', '7', 0, 0, 0}

// Packet holds the fields that vary per emitted frame; everything
// else in the wire layout is fixed by the protocol.
type Packet struct {
	CID        [16]byte
	SourceName string // truncated/padded to 64 bytes
	Priority   uint8
	Sequence   uint8
	Universe   uint16
	Dmx        [dmxSlots]byte // DMX slots 1..512
}

// Encode renders the bit-exact E1.31 DMP data packet per spec.md §6:
// root PDU, framing PDU, DMP PDU, start code (0x00), then 512 DMX
// data bytes.
func Encode(p Packet) []byte {
	buf := make([]byte, PacketSize)
	off := 0

	binary.BigEndian.PutUint16(buf[off:], rootPreambleSize)
	off += 2
	binary.BigEndian.PutUint16(buf[off:], rootPostambleSize)
	off += 2
	copy(buf[off:], acnPID[:])
	off += 12

	putFlagsLength(buf[off:], rootLen)
	off += 2
	binary.BigEndian.PutUint32(buf[off:], vectorRootE131Data)
	off += 4
	copy(buf[off:], p.CID[:])
	off += cidLen

	putFlagsLength(buf[off:], framingLen)
	off += 2
	binary.BigEndian.PutUint32(buf[off:], vectorE131DataPacket)
	off += 4
	putSourceName(buf[off:], p.SourceName)
	off += sourceNameLen
	buf[off] = p.Priority
	off++
	binary.BigEndian.PutUint16(buf[off:], 0) // synchronization_address
	off += 2
	buf[off] = p.Sequence
	off++
	buf[off] = 0 // options: Stream_Terminated clear, per spec.md §4.5
	off++
	binary.BigEndian.PutUint16(buf[off:], p.Universe)
	off += 2

	putFlagsLength(buf[off:], dmpLen)
	off += 2
	buf[off] = vectorDMPSetProperty
	off++
	buf[off] = 0xA1 // address_type_and_data_type
	off++
	binary.BigEndian.PutUint16(buf[off:], 0x0000) // first_property_address
	off += 2
	binary.BigEndian.PutUint16(buf[off:], 0x0001) // address_increment
	off += 2
	binary.BigEndian.PutUint16(buf[off:], 0x0201) // property_value_count = 513
	off += 2
	buf[off] = 0x00 // DMX start code
	off++
	copy(buf[off:], p.Dmx[:])
	off += dmxSlots

	return buf
}

// putFlagsLength packs the fixed ACN flags (0x7 in the high nibble)
// and a 12-bit length into the 2-byte field each PDU starts with.
func putFlagsLength(dst []byte, length int) {
	v := uint16(0x7000) | uint16(length&0x0FFF)
	binary.BigEndian.PutUint16(dst, v)
}

func putSourceName(dst []byte, name string) {
	b := []byte(name)
	if len(b) > sourceNameLen {
		b = b[:sourceNameLen]
	}
	copy(dst, b)
	for i := len(b); i < sourceNameLen; i++ {
		dst[i] = 0
	}
}
