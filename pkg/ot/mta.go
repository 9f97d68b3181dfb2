package ot

import (
	"crypto/rand"

	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

// MtASender runs the masking side of the multiplicative-to-additive
// conversion of spec.md §4.9, given the scalar a to convert and the
// row-pair output of a prior random-OT batch of length L (chosen by the
// caller as kappa(curve) + kappa(security), per spec.md §4.9).
func MtASender(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, group curve.Curve, sid []byte, a curve.Scalar, rot *RandomSenderOutput) (curve.Scalar, error) {
	l := len(rot.V0)
	deltas := make([]curve.Scalar, l)
	c0 := make([]curve.Scalar, l)
	c1 := make([]curve.Scalar, l)
	for i := 0; i < l; i++ {
		deltas[i] = group.SampleScalarConstantTime(rand.Reader)
		c0[i] = rot.V0[i].Add(deltas[i]).Add(a)
		c1[i] = rot.V1[i].Add(deltas[i]).Add(a.Negate())
	}

	payload, err := encodeScalarPairs(c0, c1)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, payload)

	data := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	chi0, seed, err := decodeChiMessage(group, data)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	rest := deriveChiScalars(group, sid, seed, "mta/chi", l-1)
	chi := make([]curve.Scalar, l)
	chi[0] = chi0
	copy(chi[1:], rest)

	alpha := group.NewScalar()
	for i := 0; i < l; i++ {
		alpha = alpha.Sub(deltas[i].Mul(chi[i]))
	}
	return alpha, nil
}

// MtAReceiver runs the weighting side of spec.md §4.9, given the scalar b
// to convert and the receiver output of the same random-OT batch used by
// the peer's MtASender call.
func MtAReceiver(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, group curve.Curve, sid []byte, b curve.Scalar, rot *RandomReceiverOutput) (curve.Scalar, error) {
	l := len(rot.V)
	data := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	c0, c1, err := decodeScalarPairs(group, data)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	if len(c0) != l || len(c1) != l {
		return nil, runtime.NewAssertionFailed("ot: mta row count mismatch")
	}

	m := make([]curve.Scalar, l)
	for i := 0; i < l; i++ {
		if rot.Choice.Bit(i) == 0 {
			m[i] = c0[i].Sub(rot.V[i])
		} else {
			m[i] = c1[i].Sub(rot.V[i])
		}
	}

	seed := randomSeed()
	rest := deriveChiScalars(group, sid, seed, "mta/chi", l-1)

	negRest := group.NewScalar()
	for i := 1; i < l; i++ {
		term := rest[i-1]
		if rot.Choice.Bit(i) == 1 {
			term = term.Negate()
		}
		negRest = negRest.Add(term)
	}
	chi0 := b.Sub(negRest)
	if rot.Choice.Bit(0) == 1 {
		chi0 = chi0.Negate()
	}

	chi := make([]curve.Scalar, l)
	chi[0] = chi0
	copy(chi[1:], rest)

	beta := group.NewScalar()
	for i := 0; i < l; i++ {
		beta = beta.Add(chi[i].Mul(m[i]))
	}

	payload, err := encodeChiMessage(chi0, seed)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, payload)

	return beta, nil
}
