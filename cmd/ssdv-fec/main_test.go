package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniestevez/ssdv-fec/format"
	"github.com/daniestevez/ssdv-fec/internal/testimage"
)

func Test_EncodeDecode_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	const k = 6
	image := testimage.Build(format.Standard, k, 11)

	inPath := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(inPath, image, 0o644))

	encPath := filepath.Join(dir, "encoded.bin")
	code := run([]string{"encode", "--npackets", "9", "--first", "0", inPath, encPath})
	require.Equal(t, 0, code)

	encoded, err := os.ReadFile(encPath)
	require.NoError(t, err)
	assert.Len(t, encoded, 9*format.Standard.PacketLen())

	decPath := filepath.Join(dir, "decoded.bin")
	code = run([]string{"decode", "--npackets", "6", encPath, decPath})
	require.Equal(t, 0, code)

	decoded, err := os.ReadFile(decPath)
	require.NoError(t, err)
	assert.Equal(t, image, decoded)
}

func Test_EncodeDecode_RoundtripWithRate(t *testing.T) {
	dir := t.TempDir()
	const k = 5
	image := testimage.Build(format.Standard, k, 17)

	inPath := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(inPath, image, 0o644))

	encPath := filepath.Join(dir, "encoded.bin")
	code := run([]string{"encode", "--rate", "0.5", inPath, encPath})
	require.Equal(t, 0, code)

	encoded, err := os.ReadFile(encPath)
	require.NoError(t, err)
	assert.Len(t, encoded, 10*format.Standard.PacketLen()) // ceil(5/0.5) = 10

	decPath := filepath.Join(dir, "decoded.bin")
	code = run([]string{"decode", "--npackets", "5", encPath, decPath})
	require.Equal(t, 0, code)

	decoded, err := os.ReadFile(decPath)
	require.NoError(t, err)
	assert.Equal(t, image, decoded)
}

func Test_Encode_RejectsMutuallyExclusiveFlags(t *testing.T) {
	dir := t.TempDir()
	image := testimage.Build(format.Standard, 4, 1)
	inPath := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(inPath, image, 0o644))

	code := run([]string{"encode", "--npackets", "4", "--rate", "0.5", inPath, filepath.Join(dir, "out.bin")})
	assert.Equal(t, 1, code)
}

func Test_Decode_RequiresNpackets(t *testing.T) {
	dir := t.TempDir()
	recvPath := filepath.Join(dir, "recv.bin")
	require.NoError(t, os.WriteFile(recvPath, make([]byte, format.Standard.PacketLen()), 0o644))

	code := run([]string{"decode", recvPath, filepath.Join(dir, "out.bin")})
	assert.Equal(t, 1, code)
}

func Test_Decode_InsufficientPacketsExitsWithTwo(t *testing.T) {
	dir := t.TempDir()
	const k = 6
	image := testimage.Build(format.Standard, k, 22)
	inPath := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(inPath, image, 0o644))

	encPath := filepath.Join(dir, "encoded.bin")
	require.Equal(t, 0, run([]string{"encode", "--npackets", "4", inPath, encPath}))

	code := run([]string{"decode", "--npackets", "6", encPath, filepath.Join(dir, "out.bin")})
	assert.Equal(t, 2, code)
}

func Test_Encode_RejectsIDWraparound(t *testing.T) {
	dir := t.TempDir()
	image := testimage.Build(format.Standard, 2, 33)
	inPath := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(inPath, image, 0o644))

	code := run([]string{"encode", "--npackets", "65537", inPath, filepath.Join(dir, "out.bin")})
	assert.Equal(t, 1, code)
}

func Test_Run_RejectsUnknownSubcommand(t *testing.T) {
	code := run([]string{"frobnicate"})
	assert.Equal(t, 1, code)
}

func Test_Run_HelpExitsZero(t *testing.T) {
	code := run([]string{"--help"})
	assert.Equal(t, 0, code)
}

func Test_ResolveFormat(t *testing.T) {
	f, err := resolveFormat("standard", "")
	require.NoError(t, err)
	assert.Equal(t, format.Standard, f)

	f, err = resolveFormat("longjiang2", "")
	require.NoError(t, err)
	assert.Equal(t, format.Longjiang2, f)

	_, err = resolveFormat("bogus", "")
	assert.Error(t, err)
}
