package main

import (
	"math"
	"os"

	"github.com/daniestevez/ssdv-fec/fec"
	"github.com/daniestevez/ssdv-fec/format"
)

// runEncode implements `ssdv-fec encode`. args is the subcommand's own
// positional arguments (after "encode" has been stripped): <in> <out>.
func runEncode(f format.PacketFormat, args []string, npackets int, rate float64, first int) int {
	if len(args) != 2 {
		logger.Error("encode takes exactly two positional arguments: <in> <out>")
		usage()
		return 1
	}
	if npackets != 0 && rate != 0 {
		logger.Error("--npackets and --rate are mutually exclusive")
		return 1
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("reading input file", "err", err)
		return 1
	}

	packetLen := f.PacketLen()
	if packetLen <= 0 || len(image) == 0 || len(image)%packetLen != 0 {
		logger.Error("input file length is not a positive multiple of the packet length", "length", len(image), "packetLen", packetLen)
		return 1
	}
	k := len(image) / packetLen

	n, err := resolvePacketCount(k, npackets, rate)
	if err != nil {
		logger.Error("resolving packet count", "err", err)
		return 1
	}
	if n > 0x10000 {
		logger.Error("packet id run would wrap and collide with itself", "err", fec.ErrDuplicatePacketID, "n", n)
		return 1
	}

	out, err := os.Create(args[1])
	if err != nil {
		logger.Error("creating output file", "err", err)
		return 1
	}
	defer out.Close()

	buf := make([]byte, packetLen)
	for i := 0; i < n; i++ {
		id := uint16((first + i) % 0x10000)
		if err := fec.Encode(f, image, id, buf); err != nil {
			logger.Error("encoding packet", "id", id, "err", err)
			return 1
		}
		if _, err := out.Write(buf); err != nil {
			logger.Error("writing packet", "err", err)
			return 1
		}
	}

	logger.Info("encode complete", "systematic", k, "emitted", n, "format", f.Name())
	return 0
}

// resolvePacketCount applies the --npackets/--rate policy: --npackets wins
// if set, --rate computes N = ceil(k/rate), and with neither set the default
// is the systematic-only run (N = k, rate 1).
func resolvePacketCount(k, npackets int, rate float64) (int, error) {
	switch {
	case npackets > 0:
		return npackets, nil
	case rate > 0:
		if rate > 1 {
			return 0, errRateOutOfRange
		}
		return int(math.Ceil(float64(k) / rate)), nil
	default:
		return k, nil
	}
}
