// Package ot implements the oblivious-transfer pipeline of spec.md
// §4.6-§4.9: a batch of kappa base random OTs from one elliptic-curve
// key exchange, extended first into correlated OTs and then into random
// OTs with a consistency check, and finally converted into additive MtA
// shares. Grounded on the base-OT message flow in
// other_examples/03c4e2de_getamis-alice__crypto-ot-ot_sender.go.go and the
// IKNP-style batch extension in
// markkurossi-ephemelier/crypto/spdz/triplegen_ot.go.
package ot

import (
	"crypto/rand"
	"fmt"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

// BaseSenderOutput is the sender's view of a batch of kappa base OTs:
// two kappa-row bit matrices, row i holding K0_i and K1_i respectively.
type BaseSenderOutput struct {
	K0, K1 bits.Matrix
}

// BaseReceiverOutput is the receiver's view: its choice bits and the row
// it learned for each.
type BaseReceiverOutput struct {
	Delta  bits.Vector
	KDelta bits.Matrix
}

// BaseOTSender runs the sender side of spec.md §4.6 against peer over ch.
func BaseOTSender(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, group curve.Curve, sid []byte) (*BaseSenderOutput, error) {
	y := group.SampleScalarConstantTime(rand.Reader)
	bigY := y.ActOnBase()
	yBytes, err := bigY.MarshalBinary()
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, yBytes)

	data := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	xs, err := decodePoints(group, data, bits.Kappa)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}

	ySq := y.Mul(y)
	ySqG := ySq.ActOnBase()

	k0 := bits.NewMatrix(bits.Kappa)
	k1 := bits.NewMatrix(bits.Kappa)
	for i := 0; i < bits.Kappa; i++ {
		xi := xs[i]
		yxi := y.Act(xi)
		k0[i] = deriveOTKey(sid, i, xi, bigY, yxi)
		alt := yxi.Add(ySqG.Negate())
		k1[i] = deriveOTKey(sid, i, xi, bigY, alt)
	}
	return &BaseSenderOutput{K0: k0, K1: k1}, nil
}

// BaseOTReceiver runs the receiver side of spec.md §4.6 against peer over
// ch, using choice bits delta (one bit per base OT index).
func BaseOTReceiver(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, group curve.Curve, sid []byte, delta bits.Vector) (*BaseReceiverOutput, error) {
	data := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	bigY := group.NewPoint()
	if err := bigY.UnmarshalBinary(data); err != nil {
		return nil, runtime.WrapOther(fmt.Errorf("ot: decoding sender point: %w", err))
	}

	xs := make([]curve.Point, bits.Kappa)
	kDelta := bits.NewMatrix(bits.Kappa)
	for i := 0; i < bits.Kappa; i++ {
		xi := group.SampleScalarConstantTime(rand.Reader)
		bigXi := xi.ActOnBase()
		if delta.Bit(i) == 1 {
			bigXi = bigXi.Add(bigY)
		}
		xs[i] = bigXi
		// Free key material: x_i * Y. When delta_i == 0 this equals the
		// sender's y*X_i directly; when delta_i == 1 it equals the
		// sender's y*X_i - y^2*G, so both sides land on the same value
		// without the receiver ever learning y.
		free := xi.Act(bigY)
		kDelta[i] = deriveOTKey(sid, i, bigXi, bigY, free)
	}

	encoded, err := encodePoints(xs)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, encoded)

	return &BaseReceiverOutput{Delta: delta, KDelta: kDelta}, nil
}

func deriveOTKey(sid []byte, index int, xi, y, z curve.Point) bits.Vector {
	s := hash.New([]byte("caitsith/ot/base/v1"))
	s.Ad(sid, nil)
	xiBytes, _ := xi.MarshalBinary()
	yBytes, _ := y.MarshalBinary()
	zBytes, _ := z.MarshalBinary()
	var idxBuf [4]byte
	idxBuf[0] = byte(index)
	idxBuf[1] = byte(index >> 8)
	s.Ad(idxBuf[:], xiBytes)
	s.Ad(yBytes, zBytes)
	var out bits.Vector
	s.Prf(out[:], nil)
	return out
}

func encodePoints(pts []curve.Point) ([]byte, error) {
	raw := make([][]byte, len(pts))
	for i, p := range pts {
		b, err := p.MarshalBinary()
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return codec.Encode(raw)
}

func decodePoints(group curve.Curve, data []byte, want int) ([]curve.Point, error) {
	var raw [][]byte
	if err := codec.Decode(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, fmt.Errorf("ot: expected %d points, got %d", want, len(raw))
	}
	out := make([]curve.Point, want)
	for i, b := range raw {
		p := group.NewPoint()
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
