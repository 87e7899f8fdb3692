package format

import "hash/crc32"

// longjiang2Seed replaces the sync byte, packet type and callsign that the
// standard format authenticates directly: this format omits those bytes on
// the wire entirely (they're implied by context, not transmitted) but still
// wants them to participate in the CRC so a packet from the wrong mission
// doesn't accidentally look valid. Folding them into the CRC's initial
// value gets that without transmitting them.
const longjiang2Seed uint32 = 0x4c4a3200 // "LJ2\0", this format's identity tag

var longjiang2Table = crc32.MakeTable(crc32.IEEE)

// longjiang2Format is the 218-byte variant that drops the sync byte, packet
// type and callsign that Standard carries, to save airtime on a link where
// those are already known out of band.
//
// Layout:
//
//	0-1    image id (big-endian uint16)
//	2-3    packet id               <- IDRange
//	4      width / 8
//	5      height / 8
//	6      flags
//	7      reserved (image-scope, zero)
//	8-213  payload (206 bytes = 103 symbols)  <- PayloadRange
//	214-217 CRC-32, big-endian                <- CRCRange
type longjiang2Format struct{}

// Longjiang2 is the shared instance of the 218-byte format.
var Longjiang2 PacketFormat = longjiang2Format{}

const longjiang2PacketLen = 218

func (longjiang2Format) Name() string    { return "longjiang2" }
func (longjiang2Format) PacketLen() int  { return longjiang2PacketLen }
func (longjiang2Format) IDRange() Range  { return Range{Offset: 2, Length: 2} }
func (longjiang2Format) CRCRange() Range { return Range{Offset: 214, Length: 4} }

func (longjiang2Format) PayloadRange() Range {
	return Range{Offset: 8, Length: longjiang2PacketLen - 8 - 4}
}

func (longjiang2Format) ImageScopeRanges() []Range {
	return []Range{
		{Offset: 0, Length: 2}, // image id
		{Offset: 4, Length: 4}, // width, height, flags, reserved
	}
}

func (f longjiang2Format) ComputeCRC(packet []byte) uint32 {
	end := f.CRCRange().Offset
	return crc32.Update(longjiang2Seed, longjiang2Table, packet[:end])
}

func (f longjiang2Format) VerifyCRC(packet []byte) bool {
	r := f.CRCRange()
	want := uint32(packet[r.Offset])<<24 | uint32(packet[r.Offset+1])<<16 | uint32(packet[r.Offset+2])<<8 | uint32(packet[r.Offset+3])
	return want == f.ComputeCRC(packet)
}

func init() {
	if err := validateRanges(Longjiang2); err != nil {
		panic(err)
	}
}
