package ot

import (
	"fmt"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/curve"
)

func randomSeed() []byte {
	return bits.RandomBytes(32)
}

// deriveChiScalars expands seed into count independent scalars, domain
// separated by sid and label. Both MtA parties call this identically to
// agree on every weight but the one sent explicitly (spec.md §4.9 step 3).
func deriveChiScalars(group curve.Curve, sid, seed []byte, label string, count int) []curve.Scalar {
	out := make([]curve.Scalar, count)
	for i := 0; i < count; i++ {
		out[i] = deriveScalar(group, sid, label, i, seed)
	}
	return out
}

func marshalScalars(s []curve.Scalar) ([][]byte, error) {
	raw := make([][]byte, len(s))
	for i, v := range s {
		b, err := v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return raw, nil
}

func unmarshalScalars(group curve.Curve, raw [][]byte) ([]curve.Scalar, error) {
	out := make([]curve.Scalar, len(raw))
	for i, b := range raw {
		sc := group.NewScalar()
		if err := sc.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		out[i] = sc
	}
	return out, nil
}

func encodeScalarPairs(c0, c1 []curve.Scalar) ([]byte, error) {
	r0, err := marshalScalars(c0)
	if err != nil {
		return nil, err
	}
	r1, err := marshalScalars(c1)
	if err != nil {
		return nil, err
	}
	return codec.Encode([2][][]byte{r0, r1})
}

func decodeScalarPairs(group curve.Curve, data []byte) ([]curve.Scalar, []curve.Scalar, error) {
	var pair [2][][]byte
	if err := codec.Decode(data, &pair); err != nil {
		return nil, nil, err
	}
	c0, err := unmarshalScalars(group, pair[0])
	if err != nil {
		return nil, nil, err
	}
	c1, err := unmarshalScalars(group, pair[1])
	if err != nil {
		return nil, nil, err
	}
	return c0, c1, nil
}

func encodeChiMessage(chi0 curve.Scalar, seed []byte) ([]byte, error) {
	b, err := chi0.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return codec.Encode([2][]byte{b, seed})
}

func decodeChiMessage(group curve.Curve, data []byte) (curve.Scalar, []byte, error) {
	var pair [2][]byte
	if err := codec.Decode(data, &pair); err != nil {
		return nil, nil, err
	}
	if len(pair[0]) == 0 {
		return nil, nil, fmt.Errorf("ot: malformed chi message")
	}
	chi0 := group.NewScalar()
	if err := chi0.UnmarshalBinary(pair[0]); err != nil {
		return nil, nil, err
	}
	return chi0, pair[1], nil
}
