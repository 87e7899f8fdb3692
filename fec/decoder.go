package fec

import (
	"fmt"

	"github.com/daniestevez/ssdv-fec/format"
	"github.com/daniestevez/ssdv-fec/gf16"
)

// Decode reconstructs the k systematic packets of one image from recv,
// which holds n >= k received packets of arbitrary id, in any order,
// possibly with duplicates. k is derived from len(out)/f.PacketLen().
//
// Decode mutates recv's payload bytes in place as part of Gauss-Jordan
// elimination (see eliminate below); the caller must treat recv as
// destroyed once Decode returns, whatever the result.
func Decode(f format.PacketFormat, recv []byte, out []byte) error {
	packetLen := f.PacketLen()
	if packetLen <= 0 || len(out) == 0 || len(out)%packetLen != 0 {
		return fmt.Errorf("%w: output buffer length %d is not a positive multiple of packet length %d", ErrBufferSize, len(out), packetLen)
	}
	k := len(out) / packetLen
	if len(recv)%packetLen != 0 {
		return fmt.Errorf("%w: received buffer length %d is not a multiple of packet length %d", ErrBufferSize, len(recv), packetLen)
	}
	n := len(recv) / packetLen

	selected, ids, err := selectDistinctValid(f, recv, packetLen, n, k)
	if err != nil {
		return err
	}

	if allSystematic(ids, k) {
		return emitSystematicShortcut(f, recv, packetLen, out, selected, ids)
	}

	rows := append([]int(nil), selected...)
	v := buildVandermonde(ids, k)

	if err := eliminate(f, recv, packetLen, v, rows, k); err != nil {
		return err
	}

	return emitFromRows(f, recv, packetLen, out, rows, k)
}

// selectDistinctValid scans recv for the first k packets (in buffer order)
// whose CRC verifies and whose id hasn't been seen yet. It returns, in
// selection order, the recv-buffer packet index and id of each one chosen.
func selectDistinctValid(f format.PacketFormat, recv []byte, packetLen, n, k int) ([]int, []uint16, error) {
	selected := make([]int, 0, k)
	ids := make([]uint16, 0, k)
	seen := make(map[uint16]bool, k)

	for p := 0; p < n && len(selected) < k; p++ {
		packet := recv[p*packetLen : (p+1)*packetLen]
		if !f.VerifyCRC(packet) {
			continue
		}
		id := format.ReadID(f, packet)
		if seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, p)
		ids = append(ids, id)
	}

	if len(selected) < k {
		return nil, nil, fmt.Errorf("%w: found %d distinct valid packets, need %d", ErrNotEnoughPackets, len(selected), k)
	}
	return selected, ids, nil
}

// allSystematic reports whether ids is exactly the set {0, 1, ..., k-1}.
// Since selectDistinctValid already guarantees k distinct values, it's
// enough to check that every id is below k: k distinct values all below k
// can only be {0, ..., k-1}.
func allSystematic(ids []uint16, k int) bool {
	for _, id := range ids {
		if int(id) >= k {
			return false
		}
	}
	return true
}

func emitSystematicShortcut(f format.PacketFormat, recv []byte, packetLen int, out []byte, selected []int, ids []uint16) error {
	for i, id := range ids {
		src := recv[selected[i]*packetLen : (selected[i]+1)*packetLen]
		dst := out[int(id)*packetLen : (int(id)+1)*packetLen]
		copy(dst, src)
	}
	return nil
}

// buildVandermonde returns the k*k matrix (row-major) whose row r is the
// generator row Encode used for the chosen packet ids[r]: the unit row
// selecting systematic packet ids[r] when ids[r] < k (Encode copies those
// verbatim), and V[r][c] = alpha^(ids[r]*c) for an FEC id.
func buildVandermonde(ids []uint16, k int) []gf16.Element {
	v := make([]gf16.Element, k*k)
	for r := 0; r < k; r++ {
		if int(ids[r]) < k {
			v[r*k+int(ids[r])] = gf16.One
			continue
		}
		base := gf16.Pow(gf16.Alpha, uint32(ids[r]))
		coeff := gf16.One
		for c := 0; c < k; c++ {
			v[r*k+c] = coeff
			coeff = gf16.Mul(coeff, base)
		}
	}
	return v
}

// eliminate runs Gauss-Jordan elimination on v (k*k, row-major) to the
// identity, applying every row swap, scale and subtract to the payload
// bytes of the recv packet rows[r] currently represents. On return (if err
// is nil), rows[r] names the recv packet whose payload now holds
// systematic packet r's payload.
func eliminate(f format.PacketFormat, recv []byte, packetLen int, v []gf16.Element, rows []int, k int) error {
	for p := 0; p < k; p++ {
		pivot := -1
		for r := p; r < k; r++ {
			if v[r*k+p] != gf16.Zero {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return ErrSingularMatrix
		}
		if pivot != p {
			swapMatrixRows(v, k, p, pivot)
			rows[p], rows[pivot] = rows[pivot], rows[p]
		}

		inv := gf16.Inverse(v[p*k+p])
		if inv != gf16.One {
			scaleMatrixRow(v, k, p, inv)
			scalePayloadRow(f, recv, packetLen, rows[p], inv)
		}

		for r := 0; r < k; r++ {
			if r == p {
				continue
			}
			factor := v[r*k+p]
			if factor == gf16.Zero {
				continue
			}
			subtractScaledMatrixRow(v, k, r, p, factor)
			subtractScaledPayloadRow(f, recv, packetLen, rows[r], rows[p], factor)
		}
	}
	return nil
}

func swapMatrixRows(v []gf16.Element, k, a, b int) {
	for c := 0; c < k; c++ {
		v[a*k+c], v[b*k+c] = v[b*k+c], v[a*k+c]
	}
}

func scaleMatrixRow(v []gf16.Element, k, r int, scalar gf16.Element) {
	for c := 0; c < k; c++ {
		v[r*k+c] = gf16.Mul(v[r*k+c], scalar)
	}
}

// subtractScaledMatrixRow computes row[target] ^= scalar * row[source]. XOR
// is both addition and subtraction in GF(2^16).
func subtractScaledMatrixRow(v []gf16.Element, k, target, source int, scalar gf16.Element) {
	for c := 0; c < k; c++ {
		v[target*k+c] = gf16.Add(v[target*k+c], gf16.Mul(scalar, v[source*k+c]))
	}
}

func scalePayloadRow(f format.PacketFormat, recv []byte, packetLen, packetIdx int, scalar gf16.Element) {
	packet := recv[packetIdx*packetLen : (packetIdx+1)*packetLen]
	n := format.PayloadSymbols(f)
	for j := 0; j < n; j++ {
		v := gf16.Element(format.ReadSymbol(f, packet, j))
		format.WriteSymbol(f, packet, j, uint16(gf16.Mul(v, scalar)))
	}
}

func subtractScaledPayloadRow(f format.PacketFormat, recv []byte, packetLen, targetIdx, sourceIdx int, scalar gf16.Element) {
	target := recv[targetIdx*packetLen : (targetIdx+1)*packetLen]
	source := recv[sourceIdx*packetLen : (sourceIdx+1)*packetLen]
	n := format.PayloadSymbols(f)
	for j := 0; j < n; j++ {
		tv := gf16.Element(format.ReadSymbol(f, target, j))
		sv := gf16.Element(format.ReadSymbol(f, source, j))
		format.WriteSymbol(f, target, j, uint16(gf16.Add(tv, gf16.Mul(scalar, sv))))
	}
}

// emitFromRows assembles out from the eliminated rows: row r's recv packet
// now holds systematic packet r's payload and (since it was an untouched
// received packet of the same image) its correct image-scope bytes too.
func emitFromRows(f format.PacketFormat, recv []byte, packetLen int, out []byte, rows []int, k int) error {
	for r := 0; r < k; r++ {
		src := recv[rows[r]*packetLen : (rows[r]+1)*packetLen]
		dst := out[r*packetLen : (r+1)*packetLen]
		copy(dst, src)
		format.WriteID(f, dst, uint16(r))
		format.WriteCRC(f, dst, f.ComputeCRC(dst))
	}
	return nil
}
