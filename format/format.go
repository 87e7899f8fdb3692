// Package format defines the packet-format abstraction the fec package's
// encoder and decoder are written against: the capability to locate a
// packet's ID field, its payload region, the bytes that must agree across
// every systematic packet of one image, and its CRC.
//
// The core never hard-codes a byte layout; it only ever asks a PacketFormat
// for ranges and hands back the bytes those ranges name. This is what lets
// the same encode/decode logic serve both concrete formats in this package
// (and any format an operator describes with a YAML document, see
// LoadCustom) without a type switch anywhere in fec.
package format

import "fmt"

// Range is a contiguous byte span within one packet: [Offset, Offset+Length).
type Range struct {
	Offset int
	Length int
}

// End returns the exclusive end offset of the range.
func (r Range) End() int {
	return r.Offset + r.Length
}

// PacketFormat is the capability set the core needs to treat an opaque byte
// buffer as "a packet" without knowing its concrete layout.
type PacketFormat interface {
	// Name identifies the format, e.g. for CLI --format selection and log
	// messages.
	Name() string

	// PacketLen is the total number of bytes in one packet of this format.
	PacketLen() int

	// PayloadRange is the contiguous region interpreted as big-endian
	// 16-bit field symbols. Its length is always even.
	PayloadRange() Range

	// IDRange is the two-byte, big-endian packet-ID field.
	IDRange() Range

	// CRCRange is the field the CRC is written into. CRC bytes are never
	// part of ImageScopeRanges or PayloadRange.
	CRCRange() Range

	// ImageScopeRanges lists the byte ranges that must be identical across
	// every systematic packet of one image (image id, dimensions, and any
	// other per-image metadata the format carries). The encoder requires
	// all systematic slots to agree and copies these from slot 0 for FEC
	// packets; the decoder copies them from whichever packet was selected
	// and does not check that the selected packets agree.
	ImageScopeRanges() []Range

	// ComputeCRC computes the CRC over whatever bytes of packet this
	// format considers authenticated. packet must be PacketLen() bytes.
	ComputeCRC(packet []byte) uint32

	// VerifyCRC reports whether packet's stored CRC field matches
	// ComputeCRC's result.
	VerifyCRC(packet []byte) bool
}

// PayloadSymbols returns the number of 16-bit field symbols the payload
// region of f holds.
func PayloadSymbols(f PacketFormat) int {
	return f.PayloadRange().Length / 2
}

// ReadID returns the 16-bit packet ID stored in packet, big-endian, per
// f.IDRange().
func ReadID(f PacketFormat, packet []byte) uint16 {
	r := f.IDRange()
	return uint16(packet[r.Offset])<<8 | uint16(packet[r.Offset+1])
}

// WriteID writes id into packet's ID field, big-endian, per f.IDRange().
func WriteID(f PacketFormat, packet []byte, id uint16) {
	r := f.IDRange()
	packet[r.Offset] = byte(id >> 8)
	packet[r.Offset+1] = byte(id)
}

// ReadSymbol returns payload symbol j (0 <= j < PayloadSymbols(f)) of
// packet, big-endian, per f.PayloadRange().
func ReadSymbol(f PacketFormat, packet []byte, j int) uint16 {
	off := f.PayloadRange().Offset + 2*j
	return uint16(packet[off])<<8 | uint16(packet[off+1])
}

// WriteSymbol writes payload symbol j of packet, big-endian.
func WriteSymbol(f PacketFormat, packet []byte, j int, v uint16) {
	off := f.PayloadRange().Offset + 2*j
	packet[off] = byte(v >> 8)
	packet[off+1] = byte(v)
}

// WriteCRC writes the CRC field of packet, big-endian, per f.CRCRange()
// (always 4 bytes).
func WriteCRC(f PacketFormat, packet []byte, crc uint32) {
	r := f.CRCRange()
	packet[r.Offset] = byte(crc >> 24)
	packet[r.Offset+1] = byte(crc >> 16)
	packet[r.Offset+2] = byte(crc >> 8)
	packet[r.Offset+3] = byte(crc)
}

// validateRanges is a sanity check concrete formats run once (typically
// from an init func or a constructor) to guard against a format whose
// ranges overlap or overrun the packet. It never needs to run per-packet.
func validateRanges(f PacketFormat) error {
	packetLen := f.PacketLen()
	payload := f.PayloadRange()
	id := f.IDRange()
	crc := f.CRCRange()

	if payload.Length%2 != 0 {
		return fmt.Errorf("format %s: payload length %d is not even", f.Name(), payload.Length)
	}
	if id.Length != 2 {
		return fmt.Errorf("format %s: id field length %d, want 2", f.Name(), id.Length)
	}
	if crc.Length != 4 {
		return fmt.Errorf("format %s: crc field length %d, want 4", f.Name(), crc.Length)
	}

	spans := []Range{payload, id, crc}
	spans = append(spans, f.ImageScopeRanges()...)

	for _, r := range spans {
		if r.Offset < 0 || r.End() > packetLen {
			return fmt.Errorf("format %s: range %+v falls outside packet length %d", f.Name(), r, packetLen)
		}
	}
	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			if spans[i].Offset < spans[j].End() && spans[j].Offset < spans[i].End() {
				return fmt.Errorf("format %s: ranges %+v and %+v overlap", f.Name(), spans[i], spans[j])
			}
		}
	}
	return nil
}
