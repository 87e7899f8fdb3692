package format

import (
	"fmt"
	"hash/crc32"
	"os"

	"gopkg.in/yaml.v3"
)

// customSpec is the YAML shape operators write to describe a new SSDV-like
// packet layout without recompiling the codec. Any non-payload, non-ID,
// non-CRC byte range a mission needs to carry is named explicitly in
// ImageScope and treated as image-scope.
type customSpec struct {
	Name        string  `yaml:"name"`
	PacketLen   int     `yaml:"packet_len"`
	PayloadFrom rangeSpec `yaml:"payload"`
	ID          rangeSpec `yaml:"id"`
	CRC         rangeSpec `yaml:"crc"`
	ImageScope  []rangeSpec `yaml:"image_scope"`
	// CRCSeed lets a custom format fold fixed bytes into the checksum the
	// way Longjiang2 does, without needing to transmit them.
	CRCSeed uint32 `yaml:"crc_seed"`
}

type rangeSpec struct {
	Offset int `yaml:"offset"`
	Length int `yaml:"length"`
}

func (r rangeSpec) toRange() Range {
	return Range{Offset: r.Offset, Length: r.Length}
}

type customFormat struct {
	name       string
	packetLen  int
	payload    Range
	id         Range
	crc        Range
	imageScope []Range
	table      *crc32.Table
	seed       uint32
}

func (c *customFormat) Name() string             { return c.name }
func (c *customFormat) PacketLen() int            { return c.packetLen }
func (c *customFormat) PayloadRange() Range       { return c.payload }
func (c *customFormat) IDRange() Range            { return c.id }
func (c *customFormat) CRCRange() Range           { return c.crc }
func (c *customFormat) ImageScopeRanges() []Range { return c.imageScope }

func (c *customFormat) ComputeCRC(packet []byte) uint32 {
	return crc32.Update(c.seed, c.table, packet[:c.crc.Offset])
}

func (c *customFormat) VerifyCRC(packet []byte) bool {
	r := c.crc
	want := uint32(packet[r.Offset])<<24 | uint32(packet[r.Offset+1])<<16 | uint32(packet[r.Offset+2])<<8 | uint32(packet[r.Offset+3])
	return want == c.ComputeCRC(packet)
}

// LoadCustom reads a YAML packet-format descriptor from path and returns a
// PacketFormat built from it. See customSpec for the document shape.
func LoadCustom(path string) (PacketFormat, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading format config %s: %w", path, err)
	}

	var spec customSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing format config %s: %w", path, err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("format config %s: name is required", path)
	}

	imageScope := make([]Range, len(spec.ImageScope))
	for i, r := range spec.ImageScope {
		imageScope[i] = r.toRange()
	}

	f := &customFormat{
		name:       spec.Name,
		packetLen:  spec.PacketLen,
		payload:    spec.PayloadFrom.toRange(),
		id:         spec.ID.toRange(),
		crc:        spec.CRC.toRange(),
		imageScope: imageScope,
		table:      crc32.MakeTable(crc32.IEEE),
		seed:       spec.CRCSeed,
	}

	if err := validateRanges(f); err != nil {
		return nil, fmt.Errorf("format config %s: %w", path, err)
	}
	return f, nil
}
