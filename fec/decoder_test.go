package fec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/daniestevez/ssdv-fec/format"
	"github.com/daniestevez/ssdv-fec/internal/testimage"
)

// buildReceived encodes image under every id in ids, returning a
// back-to-back recv buffer of len(ids) packets in that order.
func buildReceived(t testing.TB, f format.PacketFormat, image []byte, ids []uint16) []byte {
	t.Helper()
	recv := make([]byte, len(ids)*f.PacketLen())
	for i, id := range ids {
		out := recv[i*f.PacketLen() : (i+1)*f.PacketLen()]
		require.NoError(t, Encode(f, image, id, out))
	}
	return recv
}

// distinctIDs draws k distinct packet ids from [0, pool) via a random
// permutation, so tests can freely mix systematic and FEC ids.
func distinctIDs(t *rapid.T, k, pool int) []uint16 {
	candidates := make([]int, pool)
	for i := range candidates {
		candidates[i] = i
	}
	perm := rapid.Permutation(candidates).Draw(t, "idPool")
	ids := make([]uint16, k)
	for i := 0; i < k; i++ {
		ids[i] = uint16(perm[i])
	}
	return ids
}

// Test_Roundtrip checks that any k distinct encoded ids decode back to the
// original image, byte-identical.
func Test_Roundtrip(t *testing.T) {
	for _, f := range testFormats {
		t.Run(f.Name(), func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				k := rapid.IntRange(1, 16).Draw(t, "k")
				seed := rapid.Int64().Draw(t, "seed")
				image := testimage.Build(f, k, seed)

				ids := distinctIDs(t, k, 3*k+1)
				recv := buildReceived(t, f, image, ids)

				out := make([]byte, k*f.PacketLen())
				require.NoError(t, Decode(f, recv, out))

				for i := 0; i < k; i++ {
					wantOut := make([]byte, f.PacketLen())
					require.NoError(t, Encode(f, image, uint16(i), wantOut))
					assert.Equal(t, wantOut, out[i*f.PacketLen():(i+1)*f.PacketLen()])
				}
			})
		})
	}
}

// Test_OrderAndDuplicateInsensitivity checks that the order packets arrive
// in, and any duplicate ids among them, do not affect the decoded result.
func Test_OrderAndDuplicateInsensitivity(t *testing.T) {
	f := format.Standard
	const k = 12
	image := testimage.Build(f, k, 42)

	pool := make([]uint16, 50)
	for i := range pool {
		pool[i] = uint16(i)
	}
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	ids := pool[:k]

	recvOrdered := buildReceived(t, f, image, ids)

	shuffled := append([]uint16(nil), ids...)
	rand.New(rand.NewSource(9)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	// Duplicate the first few ids.
	withDupes := append(append([]uint16(nil), shuffled...), shuffled[0], shuffled[1], shuffled[2])
	recvShuffled := buildReceived(t, f, image, withDupes)

	outOrdered := make([]byte, k*f.PacketLen())
	outShuffled := make([]byte, k*f.PacketLen())
	require.NoError(t, Decode(f, recvOrdered, outOrdered))
	require.NoError(t, Decode(f, recvShuffled, outShuffled))

	assert.Equal(t, outOrdered, outShuffled)
}

func Test_NotEnoughPackets(t *testing.T) {
	f := format.Standard
	const k = 10
	image := testimage.Build(f, k, 1)

	ids := make([]uint16, k-1)
	for i := range ids {
		ids[i] = uint16(i)
	}
	recv := buildReceived(t, f, image, ids)

	out := make([]byte, k*f.PacketLen())
	err := Decode(f, recv, out)
	assert.ErrorIs(t, err, ErrNotEnoughPackets)
}

func Test_DroppedCorruptPacketStillFails(t *testing.T) {
	// Flip a byte in one of the k supplied packets (breaking its CRC) and
	// supply no replacement; the packet is dropped during selection and
	// the decode should fail with ErrNotEnoughPackets.
	f := format.Standard
	const k = 10
	image := testimage.Build(f, k, 2)

	ids := make([]uint16, k)
	for i := range ids {
		ids[i] = uint16(i)
	}
	recv := buildReceived(t, f, image, ids)
	recv[3*f.PacketLen()] ^= 0xff // corrupt packet 3

	out := make([]byte, k*f.PacketLen())
	err := Decode(f, recv, out)
	assert.ErrorIs(t, err, ErrNotEnoughPackets)
}

func Test_Decode_HighPacketID(t *testing.T) {
	// Encoding id 65535 and decoding with it plus all-but-one systematic
	// packets should reconstruct the image exactly.
	f := format.Standard
	const k = 20
	image := testimage.Build(f, k, 3)

	ids := make([]uint16, 0, k)
	for i := 1; i < k; i++ { // drop systematic packet 0
		ids = append(ids, uint16(i))
	}
	ids = append(ids, 65535)
	recv := buildReceived(t, f, image, ids)

	out := make([]byte, k*f.PacketLen())
	require.NoError(t, Decode(f, recv, out))

	for i := 0; i < k; i++ {
		want := make([]byte, f.PacketLen())
		require.NoError(t, Encode(f, image, uint16(i), want))
		assert.Equal(t, want, out[i*f.PacketLen():(i+1)*f.PacketLen()])
	}
}

func Test_Decode_AllSystematicShortcut(t *testing.T) {
	// Every id already systematic; decode must be the identity.
	f := format.Standard
	const k = 8
	image := testimage.Build(f, k, 4)

	ids := make([]uint16, k)
	for i := range ids {
		ids[i] = uint16(i)
	}
	recv := buildReceived(t, f, image, ids)

	out := make([]byte, k*f.PacketLen())
	require.NoError(t, Decode(f, recv, out))
	assert.Equal(t, image, out)
}

func Test_Decode_MixOfSystematicAndFec(t *testing.T) {
	// A handful of FEC packets filling in for some missing systematic
	// slots.
	f := format.Standard
	const k = 30
	image := testimage.Build(f, k, 5)

	ids := make([]uint16, 0, k)
	for i := 0; i < k; i++ {
		if i >= 5 && i < 20 { // drop systematic packets 5..19
			continue
		}
		ids = append(ids, uint16(i))
	}
	for extra := 0; len(ids) < k; extra++ { // fill the gap with FEC packets
		ids = append(ids, uint16(k+extra))
	}
	recv := buildReceived(t, f, image, ids)

	out := make([]byte, k*f.PacketLen())
	require.NoError(t, Decode(f, recv, out))
	assert.Equal(t, image, out)
}

func Test_Decode_RejectsBadBufferSizes(t *testing.T) {
	f := format.Standard
	const k = 5
	image := testimage.Build(f, k, 6)
	ids := []uint16{0, 1, 2, 3, 4}
	recv := buildReceived(t, f, image, ids)

	out := make([]byte, k*f.PacketLen())
	assert.ErrorIs(t, Decode(f, recv[:len(recv)-1], out), ErrBufferSize)
	assert.ErrorIs(t, Decode(f, recv, out[:len(out)-1]), ErrBufferSize)
}
