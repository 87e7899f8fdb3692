package fec

import (
	"bytes"
	"fmt"

	"github.com/daniestevez/ssdv-fec/format"
	"github.com/daniestevez/ssdv-fec/gf16"
)

// Encode writes the packet with the given 16-bit id into out, using the k
// systematic packets packed back-to-back in image. k is derived from
// len(image)/f.PacketLen().
//
// For id < k this is the systematic packet: out is a byte-for-byte copy of
// image's slot id, with only the ID and CRC fields rewritten. For id >= k,
// out's payload is the evaluation at x = alpha^id of the column-wise
// polynomial whose coefficients are the k systematic payload symbols, and
// its image-scope fields are copied from slot 0.
//
// image is read-only for the duration of this call; out is fully owned and
// overwritten. Encode performs no allocation.
func Encode(f format.PacketFormat, image []byte, id uint16, out []byte) error {
	packetLen := f.PacketLen()
	if packetLen <= 0 || len(image)%packetLen != 0 {
		return fmt.Errorf("%w: image buffer length %d is not a multiple of packet length %d", ErrBufferSize, len(image), packetLen)
	}
	k := len(image) / packetLen
	if len(out) != packetLen {
		return fmt.Errorf("%w: output buffer length %d, want %d", ErrBufferSize, len(out), packetLen)
	}

	slot := func(i int) []byte { return image[i*packetLen : (i+1)*packetLen] }

	if err := checkImageScopeAgreement(f, k, slot); err != nil {
		return err
	}

	if int(id) < k {
		copy(out, slot(int(id)))
	} else {
		copy(out, slot(0))
		encodeParityPayload(f, k, slot, id, out)
	}

	format.WriteID(f, out, id)
	format.WriteCRC(f, out, f.ComputeCRC(out))
	return nil
}

// encodeParityPayload fills out's payload region with column j equal to
// V(id) . (m[0][j], ..., m[k-1][j]), accumulating in place so no buffer
// proportional to k or the payload size is ever allocated.
func encodeParityPayload(f format.PacketFormat, k int, slot func(int) []byte, id uint16, out []byte) {
	n := format.PayloadSymbols(f)
	for j := 0; j < n; j++ {
		format.WriteSymbol(f, out, j, 0)
	}

	base := gf16.Pow(gf16.Alpha, uint32(id))
	coeff := gf16.One
	for i := 0; i < k; i++ {
		row := slot(i)
		for j := 0; j < n; j++ {
			m := gf16.Element(format.ReadSymbol(f, row, j))
			acc := gf16.Element(format.ReadSymbol(f, out, j))
			acc = gf16.Add(acc, gf16.Mul(coeff, m))
			format.WriteSymbol(f, out, j, uint16(acc))
		}
		coeff = gf16.Mul(coeff, base)
	}
}

// checkImageScopeAgreement requires every image-scope range (per
// f.ImageScopeRanges()) to be byte-identical across all k slots. An image
// of zero systematic packets has no slot 0 to agree with anything, so it's
// rejected here too rather than treated as a trivial no-op encode.
func checkImageScopeAgreement(f format.PacketFormat, k int, slot func(int) []byte) error {
	if k == 0 {
		return fmt.Errorf("%w: zero systematic packets", ErrMalformedInput)
	}

	ranges := f.ImageScopeRanges()
	s0 := slot(0)
	for i := 1; i < k; i++ {
		si := slot(i)
		for _, r := range ranges {
			if !bytes.Equal(s0[r.Offset:r.End()], si[r.Offset:r.End()]) {
				return fmt.Errorf("%w: image-scope bytes %d:%d disagree between packet 0 and packet %d", ErrMalformedInput, r.Offset, r.End(), i)
			}
		}
	}
	return nil
}
