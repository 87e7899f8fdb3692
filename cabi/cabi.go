// Package main, built with `go build -buildmode=c-shared`, is the C ABI
// wrapper for the ssdv-fec codec. It exposes encode and decode with plain
// pointer+length parameters and a format enum; all storage stays
// caller-owned. The wrapper adds no semantics beyond calling-convention
// translation.
package main

/*
#include <stdint.h>

typedef enum {
	SSDV_FEC_FORMAT_STANDARD = 0,
	SSDV_FEC_FORMAT_LONGJIANG2 = 1,
} ssdv_fec_format_t;
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/daniestevez/ssdv-fec/fec"
	"github.com/daniestevez/ssdv-fec/format"
)

// Return codes are a flat enumeration: 0 success, negative values one per
// error kind, so C callers can switch on them without linking against Go
// error values.
const (
	resultOK = C.int(0)

	resultNotEnoughPackets  = C.int(-1)
	resultBufferSize        = C.int(-2)
	resultMalformedInput    = C.int(-3)
	resultDuplicatePacketID = C.int(-4)
	resultSingularMatrix    = C.int(-5)
	resultUnknownFormat     = C.int(-6)
	resultUnknownError      = C.int(-7)
)

// FormatID is an alias for the C-ABI format-selector type, so that code
// elsewhere in this package (including its tests) can name format values
// without writing its own cgo preamble for the enum.
type FormatID = C.ssdv_fec_format_t

const (
	FormatStandard   FormatID = C.SSDV_FEC_FORMAT_STANDARD
	FormatLongjiang2 FormatID = C.SSDV_FEC_FORMAT_LONGJIANG2
)

func resolveFormat(f C.ssdv_fec_format_t) (format.PacketFormat, C.int) {
	switch f {
	case C.SSDV_FEC_FORMAT_STANDARD:
		return format.Standard, resultOK
	case C.SSDV_FEC_FORMAT_LONGJIANG2:
		return format.Longjiang2, resultOK
	default:
		return nil, resultUnknownFormat
	}
}

func errorToResult(err error) C.int {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, fec.ErrNotEnoughPackets):
		return resultNotEnoughPackets
	case errors.Is(err, fec.ErrBufferSize):
		return resultBufferSize
	case errors.Is(err, fec.ErrMalformedInput):
		return resultMalformedInput
	case errors.Is(err, fec.ErrDuplicatePacketID):
		return resultDuplicatePacketID
	case errors.Is(err, fec.ErrSingularMatrix):
		return resultSingularMatrix
	default:
		return resultUnknownError
	}
}

// cBytes reinterprets a C pointer+length pair as a Go byte slice, without
// copying; the caller retains ownership for the duration of the call.
func cBytes(p *C.uint8_t, n C.int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), int(n))
}

//export ssdv_fec_encode
func ssdv_fec_encode(cfmt C.ssdv_fec_format_t, image *C.uint8_t, imageLen C.int, id C.uint16_t, out *C.uint8_t, outLen C.int) C.int {
	f, res := resolveFormat(cfmt)
	if res != resultOK {
		return res
	}
	err := fec.Encode(f, cBytes(image, imageLen), uint16(id), cBytes(out, outLen))
	return errorToResult(err)
}

//export ssdv_fec_decode
func ssdv_fec_decode(cfmt C.ssdv_fec_format_t, recv *C.uint8_t, recvLen C.int, out *C.uint8_t, outLen C.int) C.int {
	f, res := resolveFormat(cfmt)
	if res != resultOK {
		return res
	}
	err := fec.Decode(f, cBytes(recv, recvLen), cBytes(out, outLen))
	return errorToResult(err)
}

func main() {}
