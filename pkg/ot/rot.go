package ot

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

var errShortCheck = fmt.Errorf("ot: malformed consistency-check message")

// doubleWide is the unreduced double-width GF(2^kappa) product shape
// returned by bits.GFMul, used only inside the consistency check of
// spec.md §4.8.
type doubleWide [2 * bits.Kappa / 8]byte

func (d doubleWide) xor(e doubleWide) doubleWide {
	var out doubleWide
	for i := range out {
		out[i] = d[i] ^ e[i]
	}
	return out
}

// RandomSenderOutput is the extension-sender's ROT output: one row-pair
// per extended OT, each side mapped into the scalar field.
type RandomSenderOutput struct {
	V0, V1 []curve.Scalar
}

// RandomReceiverOutput is the extension-receiver's ROT output: its choice
// bit and the corresponding scalar, per row.
type RandomReceiverOutput struct {
	Choice ChoiceRow
	V      []curve.Scalar
}

// paddedSize rounds size up to a multiple of Kappa, then adds 2*Kappa rows
// to absorb the consistency-check overhead (spec.md §4.8).
func paddedSize(size int) int {
	rem := size % bits.Kappa
	padded := size
	if rem != 0 {
		padded += bits.Kappa - rem
	}
	return padded + 2*bits.Kappa
}

// RandomOTSender runs the extension-sender side (the party holding delta
// and K from the base-OT receiver role) of spec.md §4.8, producing size
// random OT row-pairs.
func RandomOTSender(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, group curve.Curve, sid []byte, size int, base *BaseReceiverOutput) (*RandomSenderOutput, error) {
	padded := paddedSize(size)
	cot, err := CorrelatedOTSender(ctx, ch, peer, sid, padded, base)
	if err != nil {
		return nil, err
	}

	seed := bits.RandomBytes(32)
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, seed)

	mu := padded / bits.Kappa
	chi := deriveChi(sid, seed, mu)

	qHat := make([]doubleWide, bits.Kappa)
	for j := 0; j < bits.Kappa; j++ {
		for i := 0; i < mu; i++ {
			var col bits.Vector
			for r := 0; r < bits.Kappa; r++ {
				col = col.SetBit(r, cot.Q[i*bits.Kappa+r].Bit(j))
			}
			qHat[j] = qHat[j].xor(bits.GFMul(col, chi[i]))
		}
	}

	checkData := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	xHat, tHat, err := decodeCheck(checkData)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	for j := 0; j < bits.Kappa; j++ {
		rhs := tHat[j]
		if base.Delta.Bit(j) == 1 {
			rhs = rhs.xor(xHat)
		}
		if qHat[j] != rhs {
			return nil, runtime.NewAssertionFailed("ot: random OT extension consistency check failed at column %d", j)
		}
	}

	v0 := make([]curve.Scalar, size)
	v1 := make([]curve.Scalar, size)
	for i := 0; i < size; i++ {
		v0[i] = deriveScalar(group, sid, "rot/v0", i, cot.Q[i].Bytes())
		masked := cot.Q[i].Xor(base.Delta)
		v1[i] = deriveScalar(group, sid, "rot/v1", i, masked.Bytes())
	}
	return &RandomSenderOutput{V0: v0, V1: v1}, nil
}

// RandomOTReceiver runs the extension-receiver side (the party holding
// (K0, K1) from the base-OT sender role) of spec.md §4.8.
func RandomOTReceiver(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, group curve.Curve, sid []byte, size int, base *BaseSenderOutput) (*RandomReceiverOutput, error) {
	padded := paddedSize(size)
	cot, err := CorrelatedOTReceiver(ctx, ch, peer, sid, padded, base)
	if err != nil {
		return nil, err
	}

	seed := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	mu := padded / bits.Kappa
	chi := deriveChi(sid, seed, mu)

	var xHat doubleWide
	for i := 0; i < mu; i++ {
		chunk := packChunk(cot.Choice, i*bits.Kappa, bits.Kappa)
		xHat = xHat.xor(bits.GFMul(chunk, chi[i]))
	}

	tHat := make([]doubleWide, bits.Kappa)
	for j := 0; j < bits.Kappa; j++ {
		for i := 0; i < mu; i++ {
			var col bits.Vector
			for r := 0; r < bits.Kappa; r++ {
				col = col.SetBit(r, cot.T0[i*bits.Kappa+r].Bit(j))
			}
			tHat[j] = tHat[j].xor(bits.GFMul(col, chi[i]))
		}
	}

	encoded, err := encodeCheck(xHat, tHat)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, encoded)

	v := make([]curve.Scalar, size)
	choice := newChoiceRow(size)
	for i := 0; i < size; i++ {
		b := cot.Choice.Bit(i)
		choice.Set(i, b)
		label := "rot/v0"
		if b == 1 {
			label = "rot/v1"
		}
		v[i] = deriveScalar(group, sid, label, i, cot.T0[i].Bytes())
	}
	return &RandomReceiverOutput{Choice: choice, V: v}, nil
}

// deriveChi expands seed into mu independent Kappa-bit weights, domain
// separated by sid, via HKDF-SHA256: the consistency-check weights are an
// ordinary key-expansion problem (fixed input, arbitrary-length uniform
// output), unlike the per-message Fiat-Shamir absorbs elsewhere in this
// module which need the sponge's transcript-forking behavior.
func deriveChi(sid, seed []byte, mu int) []bits.Vector {
	kdf := hkdf.New(sha256.New, seed, sid, []byte("caitsith/ot/chi/v1"))
	buf := make([]byte, mu*bits.Kappa/8)
	if _, err := io.ReadFull(kdf, buf); err != nil {
		panic("ot: hkdf expansion failed: " + err.Error())
	}
	out := make([]bits.Vector, mu)
	rowBytes := bits.Kappa / 8
	for i := 0; i < mu; i++ {
		out[i] = bits.FromBytes(buf[i*rowBytes : (i+1)*rowBytes])
	}
	return out
}

// packChunk reads width bits from row start of c and returns them as a
// Vector, treating the chunk as a Kappa-bit GF(2^kappa) element.
func packChunk(c ChoiceRow, start, width int) bits.Vector {
	var v bits.Vector
	for i := 0; i < width; i++ {
		row := start + i
		byteIdx := row / 8
		if byteIdx >= len(c) {
			break
		}
		v = v.SetBit(i, c.Bit(row))
	}
	return v
}

func deriveScalar(group curve.Curve, sid []byte, label string, index int, more []byte) curve.Scalar {
	s := hash.New([]byte("caitsith/ot/scalar/v1"))
	s.Ad(sid, []byte(label))
	var idx [4]byte
	idx[0] = byte(index)
	idx[1] = byte(index >> 8)
	idx[2] = byte(index >> 16)
	s.Ad(idx[:], more)
	buf := make([]byte, 40)
	s.Prf(buf, nil)
	return group.SampleScalarConstantTime(bytes.NewReader(buf))
}

func encodeCheck(xHat doubleWide, tHat []doubleWide) ([]byte, error) {
	raw := make([][]byte, 0, len(tHat)+1)
	raw = append(raw, xHat[:])
	for _, t := range tHat {
		raw = append(raw, t[:])
	}
	return codec.Encode(raw)
}

func decodeCheck(data []byte) (doubleWide, []doubleWide, error) {
	var raw [][]byte
	if err := codec.Decode(data, &raw); err != nil {
		return doubleWide{}, nil, err
	}
	if len(raw) != bits.Kappa+1 {
		return doubleWide{}, nil, errShortCheck
	}
	var xHat doubleWide
	copy(xHat[:], raw[0])
	tHat := make([]doubleWide, bits.Kappa)
	for i := 0; i < bits.Kappa; i++ {
		copy(tHat[i][:], raw[i+1])
	}
	return xHat, tHat, nil
}
