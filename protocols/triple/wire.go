package triple

import (
	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/commitment"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/polynomial"
	"github.com/caitsith-go/caitsith/pkg/zk"
)

// polyCommitPayload is the value committed to in round 1: the group
// polynomials E·G, F·G, L·G, encoded coefficient-by-coefficient so the
// same bytes can be rebuilt from the round 2 opening for Commitment.Check.
type polyCommitPayload struct {
	E, F, L [][]byte
}

type dlogProofWire struct {
	K []byte
	S []byte
}

type dlogEqProofWire struct {
	K0 []byte
	K1 []byte
	S  []byte
}

// round2Payload bundles the confirmation hash (spec.md §4.11 round 2) with
// the opened polynomial commitments, their randomizer, and dlog proofs of
// E(0) and F(0).
type round2Payload struct {
	Confirmation [commitment.Size]byte
	E, F, L      [][]byte
	Randomizer   [commitment.Size]byte
	ProofE       dlogProofWire
	ProofF       dlogProofWire
}

type round3Payload struct {
	C     []byte
	Proof dlogEqProofWire
}

type round4Payload struct {
	CHat  []byte
	Proof dlogProofWire
}

type sharePayload struct {
	E []byte
	F []byte
}

func marshalGroupPoly(p *polynomial.GroupPolynomial) ([][]byte, error) {
	out := make([][]byte, p.Len())
	for i := 0; i < p.Len(); i++ {
		b, err := p.Coefficient(i).MarshalBinary()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func unmarshalGroupPoly(group curve.Curve, raw [][]byte) (*polynomial.GroupPolynomial, error) {
	coeffs := make([]curve.Point, len(raw))
	for i, b := range raw {
		p := group.NewPoint()
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		coeffs[i] = p
	}
	return polynomial.NewGroupPolynomial(group, coeffs), nil
}

func marshalPoint(p curve.Point) ([]byte, error) { return p.MarshalBinary() }

func unmarshalPoint(group curve.Curve, b []byte) (curve.Point, error) {
	p := group.NewPoint()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return p, nil
}

func marshalScalar(s curve.Scalar) ([]byte, error) { return s.MarshalBinary() }

func unmarshalScalar(group curve.Curve, b []byte) (curve.Scalar, error) {
	s := group.NewScalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return s, nil
}

func marshalDlog(p *zk.DlogProof) (dlogProofWire, error) {
	k, err := p.K.MarshalBinary()
	if err != nil {
		return dlogProofWire{}, err
	}
	s, err := p.S.MarshalBinary()
	if err != nil {
		return dlogProofWire{}, err
	}
	return dlogProofWire{K: k, S: s}, nil
}

func unmarshalDlog(group curve.Curve, w dlogProofWire) (*zk.DlogProof, error) {
	k, err := unmarshalPoint(group, w.K)
	if err != nil {
		return nil, err
	}
	s, err := unmarshalScalar(group, w.S)
	if err != nil {
		return nil, err
	}
	return &zk.DlogProof{K: k, S: s}, nil
}

func marshalDlogEq(p *zk.DlogEqProof) (dlogEqProofWire, error) {
	k0, err := p.K0.MarshalBinary()
	if err != nil {
		return dlogEqProofWire{}, err
	}
	k1, err := p.K1.MarshalBinary()
	if err != nil {
		return dlogEqProofWire{}, err
	}
	s, err := p.S.MarshalBinary()
	if err != nil {
		return dlogEqProofWire{}, err
	}
	return dlogEqProofWire{K0: k0, K1: k1, S: s}, nil
}

func unmarshalDlogEq(group curve.Curve, w dlogEqProofWire) (*zk.DlogEqProof, error) {
	k0, err := unmarshalPoint(group, w.K0)
	if err != nil {
		return nil, err
	}
	k1, err := unmarshalPoint(group, w.K1)
	if err != nil {
		return nil, err
	}
	s, err := unmarshalScalar(group, w.S)
	if err != nil {
		return nil, err
	}
	return &zk.DlogEqProof{K0: k0, K1: k1, S: s}, nil
}

func encodeAny(v interface{}) ([]byte, error) { return codec.Encode(v) }

func decodeInto(data []byte, v interface{}) error { return codec.Decode(data, v) }
