// Package testimage builds synthetic SSDV-shaped images for exercising the
// fec package's encoder and decoder in tests, without depending on a real
// captured SSDV file.
package testimage

import (
	"math/rand"

	"github.com/daniestevez/ssdv-fec/format"
)

// Build returns a synthetic image of k systematic packets for format f: one
// random but fixed set of image-scope bytes shared by every slot, and
// distinct random payload content per slot, seeded for reproducibility.
func Build(f format.PacketFormat, k int, seed int64) []byte {
	packetLen := f.PacketLen()
	image := make([]byte, k*packetLen)
	rng := rand.New(rand.NewSource(seed))

	scopeBytes := make(map[int][]byte, len(f.ImageScopeRanges()))
	for _, r := range f.ImageScopeRanges() {
		b := make([]byte, r.Length)
		rng.Read(b) //nolint:errcheck // math/rand.Rand.Read never errors
		scopeBytes[r.Offset] = b
	}

	n := format.PayloadSymbols(f)
	for i := 0; i < k; i++ {
		packet := image[i*packetLen : (i+1)*packetLen]
		for _, r := range f.ImageScopeRanges() {
			copy(packet[r.Offset:r.End()], scopeBytes[r.Offset])
		}
		for j := 0; j < n; j++ {
			format.WriteSymbol(f, packet, j, uint16(rng.Intn(1<<16)))
		}
		format.WriteID(f, packet, uint16(i))
		format.WriteCRC(f, packet, f.ComputeCRC(packet))
	}
	return image
}

// Slot returns a copy of systematic packet i's bytes from image.
func Slot(f format.PacketFormat, image []byte, i int) []byte {
	packetLen := f.PacketLen()
	out := make([]byte, packetLen)
	copy(out, image[i*packetLen:(i+1)*packetLen])
	return out
}
