// Package sign implements spec.md §4.14: the final online round that
// turns a presignature and a message hash into a signature, plus the
// local ECDSA verification the Open Question in DESIGN.md keeps as a
// cheap defense against a corrupted presignature.
//
// Round shape grounded on protocols/lss/sign/round1.go-round3.go's
// single lagrange-weighted broadcast-then-sum, adapted from that
// package's nonce-commitment construction to presign's already-agreed
// nonce R.
package sign

import (
	"github.com/cronokirby/saferith"

	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/presign"
)

// HashMessage reduces an arbitrary message into the scalar field, the
// "m" spec.md §4.14 expects every signer to already agree on. Every
// party must call this with the identical msg bytes before calling
// Generate.
func HashMessage(group curve.Curve, msg []byte) curve.Scalar {
	tr := hash.NewTranscript(group.Name(), "caitsith/sign/message")
	tr.Message("msg", msg)
	stream := tr.Challenge("m")
	buf := make([]byte, 40)
	_, _ = stream.Read(buf)
	nat := new(saferith.Nat).SetBytes(buf)
	return group.NewScalar().SetNat(nat)
}

// Signature is a standard ECDSA signature over secp256k1's scalar field:
// r is the x-coordinate of the presignature's R reduced into the field,
// s is normalized to the field's lower half.
type Signature struct {
	R curve.Point
	S curve.Scalar
}

type sharePayload struct {
	S []byte
}

func encodeAny(v interface{}) ([]byte, error) { return codec.Encode(v) }

func decodeInto(data []byte, v interface{}) error { return codec.Decode(data, v) }

// Generate runs spec.md §4.14 against others: given the public key the
// presignature was produced under and its message hash m (already
// reduced into the curve's scalar field via HashMessage), every party
// broadcasts its signature share and the sum is checked against the
// standard ECDSA verification equation before being returned.
func Generate(
	ctx *runtime.TaskCtx,
	others party.IDSlice,
	group curve.Curve,
	threshold int,
	publicKey curve.Point,
	pre *presign.Presignature,
	m curve.Scalar,
	id uint64,
) (*Signature, error) {
	self := ctx.Self()
	all := party.NewIDSlice(append([]party.ID{self}, others...))
	if all.Len() != threshold {
		return nil, runtime.NewBadParameters("sign: %d signers given, threshold is %d", all.Len(), threshold)
	}

	r, err := pre.R.XScalar()
	if err != nil {
		return nil, runtime.WrapOther(err)
	}

	lam := all.Lagrange(group, self)
	si := m.Mul(lam).Mul(pre.K).Add(r.Mul(lam).Mul(pre.Sigma))

	siBytes, err := si.MarshalBinary()
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ch := ctx.Shared().Child(id)
	encoded, err := encodeAny(&sharePayload{S: siBytes})
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	wp := ch.NextWaitpoint()
	ctx.SendMany(ch, wp, encoded)

	received := ctx.RecvAll(ch, wp, others)
	sSum := si
	for _, data := range received {
		var p sharePayload
		if err := decodeInto(data, &p); err != nil {
			return nil, runtime.WrapOther(err)
		}
		sj := group.NewScalar()
		if err := sj.UnmarshalBinary(p.S); err != nil {
			return nil, runtime.WrapOther(err)
		}
		sSum = sSum.Add(sj)
	}

	sNorm := normalizeLowS(group, sSum)

	ok, err := verifyECDSA(group, publicKey, m, r, sNorm)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	if !ok {
		return nil, runtime.NewAssertionFailed("sign: aggregated signature failed ECDSA verification")
	}

	return &Signature{R: pre.R, S: sNorm}, nil
}

// verifyECDSA checks x_coord(m*s⁻¹*G + r*s⁻¹*PK) == r, the x-coordinate
// form of the textbook ECDSA equation s*R == m*G + r*PK. Unlike the
// point form, this is invariant under s -> -s (both terms on the left
// flip sign together, leaving the x-coordinate unchanged), so it can be
// run after normalizeLowS has possibly negated s without rejecting a
// perfectly valid signature.
func verifyECDSA(group curve.Curve, publicKey curve.Point, m, rScalar, s curve.Scalar) (bool, error) {
	sInv, err := s.Invert()
	if err != nil {
		return false, err
	}
	reproduced := m.Mul(sInv).ActOnBase().Add(rScalar.Mul(sInv).Act(publicKey))
	reproducedR, err := reproduced.XScalar()
	if err != nil {
		return false, err
	}
	return reproducedR.Equal(rScalar), nil
}

// normalizeLowS reproduces spec.md §8 property 16: s is replaced with
// its negation whenever it falls in the upper half of the scalar field,
// so a single signature always verifies both ways a lenient verifier
// might otherwise accept (ECDSA malleability).
func normalizeLowS(group curve.Curve, s curve.Scalar) curve.Scalar {
	if s.IsOverHalfOrder() {
		return s.Negate()
	}
	return s
}
