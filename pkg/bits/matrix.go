package bits

import (
	"encoding/binary"

	"github.com/caitsith-go/caitsith/pkg/hash"
)

// Matrix is a variable-height matrix of Kappa-bit rows.
type Matrix []Vector

// NewMatrix allocates a zeroed Matrix with rows rows.
func NewMatrix(rows int) Matrix {
	return make(Matrix, rows)
}

// Xor returns the row-wise XOR of m and n, which must share a row count.
func (m Matrix) Xor(n Matrix) Matrix {
	out := make(Matrix, len(m))
	for i := range m {
		out[i] = m[i].Xor(n[i])
	}
	return out
}

// And returns the row-wise AND of m and n.
func (m Matrix) And(n Matrix) Matrix {
	out := make(Matrix, len(m))
	for i := range m {
		out[i] = m[i].And(n[i])
	}
	return out
}

// SquareMatrix is a Matrix with exactly Kappa rows: the shape of the base
// random-OT output (spec.md §3 "BitMatrix / SquareBitMatrix").
type SquareMatrix [Kappa]Vector

// ExpandTranspose treats each row of m as a PRG seed, expands it to m_bits
// bits using a sponge keyed by sid, then transposes so that column j of
// the expanded grid becomes row j of the output. This is the
// seed-expansion step shared by correlated and random OT extension
// (spec.md §4.5/§4.7): it turns Kappa base-OT outputs into an
// (m_bits)-by-Kappa matrix without a second round of communication.
func (m SquareMatrix) ExpandTranspose(sid []byte, mBits int) Matrix {
	mBytes := (mBits + 7) / 8
	expanded := make([][]byte, Kappa)
	for row := 0; row < Kappa; row++ {
		expanded[row] = expandSeed(sid, row, m[row], mBytes)
	}

	out := make(Matrix, mBits)
	for col := 0; col < mBits; col++ {
		var v Vector
		for row := 0; row < Kappa; row++ {
			byteIdx := col / 8
			bitIdx := uint(col % 8)
			bit := (expanded[row][byteIdx] >> bitIdx) & 1
			v = v.SetBit(row, bit)
		}
		out[col] = v
	}
	return out
}

func expandSeed(sid []byte, row int, seed Vector, outBytes int) []byte {
	s := hash.New([]byte("caitsith/ot-expand/v1"))
	s.Ad(sid, nil)
	var rowIdx [4]byte
	binary.LittleEndian.PutUint32(rowIdx[:], uint32(row))
	s.Ad(rowIdx[:], seed.Bytes())
	out := make([]byte, outBytes)
	s.Prf(out, nil)
	return out
}
