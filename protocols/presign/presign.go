// Package presign implements spec.md §4.13: the presignature round that
// consumes two Beaver triples and a key share to produce everything a
// later signature needs except the message itself. Grounded on the
// single lagrange-weighted-broadcast-then-sum shape of
// protocols/lss/sign/round1.go-round3.go, adapted from that package's
// nonce-commitment flow to the triple-consuming cait-sith construction
// spec.md §4.13 specifies; the two broadcasts spec.md describes
// sequentially (kd_i, then (ka_i, xb_i)) are bundled into a single
// round here since neither depends on data received in the other.
package presign

import (
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/keyshare"
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// Presignature is everything sign needs besides the message hash: the
// nonce point R, this party's raw (unweighted) triple0 share k_i = a_0,
// and its signature-share component σ_i (spec.md §3 "Presign output").
type Presignature struct {
	R     curve.Point
	K     curve.Scalar
	Sigma curve.Scalar
}

type broadcastPayload struct {
	KD []byte
	KA []byte
	XB []byte
}

func marshalScalar(s curve.Scalar) ([]byte, error) { return s.MarshalBinary() }

func unmarshalScalar(group curve.Curve, b []byte) (curve.Scalar, error) {
	s := group.NewScalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return s, nil
}

// Generate runs spec.md §4.13 against others, given two independently
// generated triples and a key share, all for the same committee and
// threshold as this presign instance.
func Generate(
	ctx *runtime.TaskCtx,
	others party.IDSlice,
	group curve.Curve,
	threshold int,
	triple0 *triple.Share, triple0Pub *triple.Public,
	triple1 *triple.Share, triple1Pub *triple.Public,
	key *keyshare.Share,
	id uint64,
) (*Presignature, error) {
	self := ctx.Self()
	all := party.NewIDSlice(append([]party.ID{self}, others...))

	if triple0Pub.Threshold != threshold || triple1Pub.Threshold != threshold || key.Threshold != threshold {
		return nil, runtime.NewBadParameters("presign: threshold mismatch across triples/key share")
	}

	lam := all.Lagrange(group, self)

	kPrime := lam.Mul(triple0.A)
	kdLocal := lam.Mul(triple0.C)
	aPrime := lam.Mul(triple1.A)
	bPrime := lam.Mul(triple1.B)
	xPrime := lam.Mul(key.Private)

	kaLocal := kPrime.Add(aPrime)
	xbLocal := xPrime.Add(bPrime)

	kdBytes, err := marshalScalar(kdLocal)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	kaBytes, err := marshalScalar(kaLocal)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	xbBytes, err := marshalScalar(xbLocal)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}

	ch := ctx.Shared().Child(id)
	encoded, err := encodeAny(&broadcastPayload{KD: kdBytes, KA: kaBytes, XB: xbBytes})
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	wp := ch.NextWaitpoint()
	ctx.SendMany(ch, wp, encoded)

	received := ctx.RecvAll(ch, wp, others)
	kdSum, kaSum, xbSum := kdLocal, kaLocal, xbLocal
	for _, data := range received {
		var p broadcastPayload
		if err := decodeInto(data, &p); err != nil {
			return nil, runtime.WrapOther(err)
		}
		kdj, err := unmarshalScalar(group, p.KD)
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		kaj, err := unmarshalScalar(group, p.KA)
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		xbj, err := unmarshalScalar(group, p.XB)
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		kdSum = kdSum.Add(kdj)
		kaSum = kaSum.Add(kaj)
		xbSum = xbSum.Add(xbj)
	}

	if !kdSum.ActOnBase().Equal(triple0Pub.C) {
		return nil, runtime.NewAssertionFailed("presign: kd*G != KD")
	}
	if !kaSum.ActOnBase().Equal(triple0Pub.A.Add(triple1Pub.A)) {
		return nil, runtime.NewAssertionFailed("presign: ka*G != A+A'")
	}
	if !xbSum.ActOnBase().Equal(key.Public.Add(triple1Pub.B)) {
		return nil, runtime.NewAssertionFailed("presign: xb*G != X+B'")
	}

	kdInv, err := kdSum.Invert()
	if err != nil {
		return nil, runtime.NewAssertionFailed("presign: kd is not invertible")
	}
	r := kdInv.Act(triple0Pub.B)

	sigma := kaSum.Mul(key.Private).Sub(xbSum.Mul(triple1.A)).Add(triple1.C)

	return &Presignature{R: r, K: triple0.A, Sigma: sigma}, nil
}
