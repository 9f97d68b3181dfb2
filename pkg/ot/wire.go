package ot

import (
	"fmt"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/codec"
)

func encodeMatrix(m bits.Matrix) ([]byte, error) {
	raw := make([][]byte, len(m))
	for i, row := range m {
		raw[i] = row.Bytes()
	}
	return codec.Encode(raw)
}

func decodeMatrix(data []byte, rows int) (bits.Matrix, error) {
	var raw [][]byte
	if err := codec.Decode(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) != rows {
		return nil, fmt.Errorf("ot: expected %d rows, got %d", rows, len(raw))
	}
	out := make(bits.Matrix, rows)
	for i, b := range raw {
		out[i] = bits.FromBytes(b)
	}
	return out, nil
}

func encodeVector(v bits.Vector) ([]byte, error) {
	return codec.Encode(v.Bytes())
}

func decodeVector(data []byte) (bits.Vector, error) {
	var b []byte
	if err := codec.Decode(data, &b); err != nil {
		return bits.Vector{}, err
	}
	return bits.FromBytes(b), nil
}

// toSquare reinterprets a Kappa-row Matrix as a SquareMatrix for use with
// ExpandTranspose. Panics if m does not have exactly Kappa rows, which would
// indicate a base-OT output of the wrong shape.
func toSquare(m bits.Matrix) bits.SquareMatrix {
	if len(m) != bits.Kappa {
		panic(fmt.Sprintf("ot: expected %d base rows, got %d", bits.Kappa, len(m)))
	}
	var out bits.SquareMatrix
	copy(out[:], m)
	return out
}

// ChoiceRow packs m single-bit choices into a byte slice, LSB-first within
// each byte, as used for the fresh per-row choice bits of correlated OT
// extension and the MtA choice indices.
type ChoiceRow []byte

func newChoiceRow(m int) ChoiceRow {
	return make(ChoiceRow, (m+7)/8)
}

func (c ChoiceRow) Bit(i int) byte {
	return (c[i/8] >> uint(i%8)) & 1
}

func (c ChoiceRow) Set(i int, b byte) {
	mask := byte(1) << uint(i%8)
	if b&1 == 1 {
		c[i/8] |= mask
	} else {
		c[i/8] &^= mask
	}
}

// SliceChoice extracts length choice bits from c starting at bit offset
// start, repacking them into an independent ChoiceRow. Used to split one
// random-OT receiver output into independent batches for separate MtA
// calls (spec.md §4.10 "split into two halves").
func SliceChoice(c ChoiceRow, start, length int) ChoiceRow {
	out := newChoiceRow(length)
	for i := 0; i < length; i++ {
		out.Set(i, c.Bit(start+i))
	}
	return out
}
