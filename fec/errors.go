package fec

import "errors"

// Error kinds: a small fixed set of sentinels, checked with errors.Is, the
// way Dire Wolf's own code distinguishes ordinary failure (an Assert-free
// returned error) from an internal invariant violation (Assert itself).
var (
	// ErrNotEnoughPackets means the decoder was given fewer than k
	// distinct, valid-CRC packet IDs.
	ErrNotEnoughPackets = errors.New("fec: not enough distinct valid packets to reconstruct the image")

	// ErrBufferSize means an input or output buffer length was not a
	// multiple of the format's packet length, or an output buffer was too
	// small for the operation.
	ErrBufferSize = errors.New("fec: buffer size is not a multiple of the packet length")

	// ErrMalformedInput means the image-scope fields disagreed across
	// slots, or k was zero.
	ErrMalformedInput = errors.New("fec: malformed input")

	// ErrDuplicatePacketID means an encode operation over a run of
	// consecutive IDs would wrap past 2^16 and collide with an ID already
	// produced in that run. The core's single-packet Encode never returns
	// this itself (it has no notion of "a run"); it exists for callers,
	// such as the CLI, that generate runs of IDs.
	ErrDuplicatePacketID = errors.New("fec: packet id run wraps around and collides with itself")

	// ErrSingularMatrix means Gauss-Jordan elimination found a zero pivot
	// column with distinct packet IDs, which should be impossible (a
	// Vandermonde matrix on distinct nodes is always invertible). Seeing
	// this means either the PacketFormat returned a duplicate ID without
	// it being caught during selection, or the field arithmetic is wrong.
	ErrSingularMatrix = errors.New("fec: internal error: singular Vandermonde matrix for distinct packet ids")
)
