package keyshare

import (
	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/commitment"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/polynomial"
	"github.com/caitsith-go/caitsith/pkg/zk"
)

// fCommitPayload is the value committed to in round 1: the group
// polynomial F·G, coefficient by coefficient.
type fCommitPayload struct {
	F [][]byte
}

type dlogProofWire struct {
	K []byte
	S []byte
}

// openPayload bundles the round-1 opening with the dlog proof of F(0).
type openPayload struct {
	F          [][]byte
	Randomizer [commitment.Size]byte
	Proof      dlogProofWire
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

func encodeAny(v interface{}) ([]byte, error) { return codec.Encode(v) }

func decodeInto(data []byte, v interface{}) error { return codec.Decode(data, v) }
