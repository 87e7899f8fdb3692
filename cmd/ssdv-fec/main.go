// Command ssdv-fec is a file-to-file encoder/decoder for the SSDV systematic
// erasure code: it turns a concatenation of k systematic packets into a run
// of N packets (some systematic, some FEC), and reconstructs the original k
// packets from any k distinct, CRC-valid packets received back.
package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Command-line front end for the ssdv-fec codec.
 *
 * Usage:	ssdv-fec [--format F] encode [--npackets N | --rate R] [--first N] <in> <out>
 *		ssdv-fec [--format F] decode <in> <out>
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	Prefix:          "ssdv-fec",
})

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  ssdv-fec [flags] encode [--npackets N | --rate R] [--first N] <in> <out>")
	fmt.Fprintln(os.Stderr, "  ssdv-fec [flags] decode <in> <out>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	pflag.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the CLI and returns the process exit code: 0 success, 1
// user error, 2 decode failure. It rebuilds
// pflag.CommandLine from scratch so it can be called more than once per
// process, which the CLI itself never needs but its tests do.
func run(args []string) int {
	pflag.CommandLine = pflag.NewFlagSet("ssdv-fec", pflag.ContinueOnError)
	var (
		formatName   = pflag.StringP("format", "f", "standard", "packet format: standard, longjiang2")
		formatConfig = pflag.String("format-config", "", "path to a YAML custom packet-format descriptor; overrides --format")
		npackets     = pflag.IntP("npackets", "n", 0, "total number of packets to emit (encode only); k for decode")
		rate         = pflag.Float64P("rate", "r", 0, "code rate in (0,1]; N = ceil(k/rate) (encode only)")
		first        = pflag.Int("first", 0, "id of the first emitted packet (encode only)")
		verbose      = pflag.CountP("verbose", "v", "increase logging verbosity")
		quiet        = pflag.BoolP("quiet", "q", false, "suppress all but error output")
		help         = pflag.BoolP("help", "h", false, "display help text")
	)
	pflag.Usage = usage
	if err := pflag.CommandLine.Parse(args); err != nil {
		return 1
	}

	switch {
	case *quiet:
		logger.SetLevel(log.ErrorLevel)
	case *verbose >= 2:
		logger.SetLevel(log.DebugLevel)
	case *verbose == 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	if *help {
		usage()
		return 0
	}

	rest := pflag.Args()
	if len(rest) < 1 {
		logger.Error("missing encode/decode subcommand")
		usage()
		return 1
	}

	f, err := resolveFormat(*formatName, *formatConfig)
	if err != nil {
		logger.Error("resolving packet format", "err", err)
		return 1
	}

	switch rest[0] {
	case "encode":
		return runEncode(f, rest[1:], *npackets, *rate, *first)
	case "decode":
		return runDecode(f, rest[1:], *npackets)
	default:
		logger.Error("unknown subcommand", "subcommand", rest[0])
		usage()
		return 1
	}
}
