package format

import "hash/crc32"

// standardTable is an IEEE CRC-32 table, same polynomial the Go standard
// library ships; no third-party CRC implementation in the example corpus
// improves on crc32.IEEE for a checksum this well specified, so this stays
// on the standard library (see DESIGN.md).
var standardTable = crc32.MakeTable(crc32.IEEE)

// Standard is the 256-byte SSDV packet format, carrying a sync byte, packet
// type, 6-character callsign, image id and dimensions, followed by payload
// and a trailing CRC-32.
//
// Layout:
//
//	0      sync byte (fixed 0x55)
//	1      packet type
//	2-8    callsign (7 bytes, space padded)
//	9-10   image id (big-endian uint16)
//	11-12  packet id  <- IDRange
//	13     width / 8
//	14     height / 8
//	15     flags
//	16-17  reserved (image-scope, zero)
//	18-251 payload (234 bytes = 117 symbols)  <- PayloadRange
//	252-255 CRC-32, big-endian                <- CRCRange
type standardFormat struct{}

// Standard is the shared instance of the 256-byte format.
var Standard PacketFormat = standardFormat{}

const (
	standardPacketLen = 256
	standardSyncByte  = 0x55
)

func (standardFormat) Name() string     { return "standard" }
func (standardFormat) PacketLen() int   { return standardPacketLen }
func (standardFormat) IDRange() Range   { return Range{Offset: 11, Length: 2} }
func (standardFormat) CRCRange() Range  { return Range{Offset: 252, Length: 4} }
func (standardFormat) PayloadRange() Range {
	return Range{Offset: 18, Length: standardPacketLen - 18 - 4}
}

func (standardFormat) ImageScopeRanges() []Range {
	return []Range{
		{Offset: 0, Length: 11}, // sync, type, callsign, image id
		{Offset: 13, Length: 5}, // width, height, flags, reserved
	}
}

// ComputeCRC authenticates every byte of the packet except the CRC field
// itself, including the sync byte and ID — the usual SSDV convention of
// protecting the whole frame with one checksum.
func (f standardFormat) ComputeCRC(packet []byte) uint32 {
	end := f.CRCRange().Offset
	return crc32.Checksum(packet[:end], standardTable)
}

func (f standardFormat) VerifyCRC(packet []byte) bool {
	r := f.CRCRange()
	want := uint32(packet[r.Offset])<<24 | uint32(packet[r.Offset+1])<<16 | uint32(packet[r.Offset+2])<<8 | uint32(packet[r.Offset+3])
	return want == f.ComputeCRC(packet)
}

func init() {
	if err := validateRanges(Standard); err != nil {
		panic(err)
	}
}
