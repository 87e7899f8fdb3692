package main

import (
	"errors"
	"os"

	"github.com/daniestevez/ssdv-fec/fec"
	"github.com/daniestevez/ssdv-fec/format"
)

// runDecode implements `ssdv-fec decode`. args is the subcommand's own
// positional arguments: <in> <out>. Since a received packet run carries no
// in-band count of the original systematic packets, the caller must supply
// it with --npackets (reused here to mean "k", the decode target, rather
// than "N" as it does for encode).
func runDecode(f format.PacketFormat, args []string, k int) int {
	if len(args) != 2 {
		logger.Error("decode takes exactly two positional arguments: <in> <out>")
		usage()
		return 1
	}
	if k <= 0 {
		logger.Error("decode requires --npackets to specify k, the number of systematic packets in the original image")
		return 1
	}

	recv, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("reading input file", "err", err)
		return 1
	}

	out := make([]byte, k*f.PacketLen())
	if err := fec.Decode(f, recv, out); err != nil {
		code := 2
		if errors.Is(err, fec.ErrBufferSize) {
			code = 1
		}
		logger.Error("decoding", "err", err)
		return code
	}

	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		logger.Error("writing output file", "err", err)
		return 1
	}

	logger.Info("decode complete", "systematic", k, "format", f.Name())
	return 0
}
