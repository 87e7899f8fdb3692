package main

import (
	"fmt"

	"github.com/daniestevez/ssdv-fec/format"
)

// resolveFormat picks the packet format to use: formatConfig, if non-empty,
// always wins over the built-in name.
func resolveFormat(name, formatConfig string) (format.PacketFormat, error) {
	if formatConfig != "" {
		return format.LoadCustom(formatConfig)
	}
	switch name {
	case "standard":
		return format.Standard, nil
	case "longjiang2":
		return format.Longjiang2, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want standard, longjiang2, or use --format-config)", name)
	}
}
