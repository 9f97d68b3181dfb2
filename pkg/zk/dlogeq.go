package zk

import (
	"crypto/rand"

	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
)

// DlogEqProof proves knowledge of x such that Y0 = x*G and Y1 = x*H for a
// shared witness x across two different bases.
type DlogEqProof struct {
	K0 curve.Point
	K1 curve.Point
	S  curve.Scalar
}

// ProveDlogEq proves knowledge of x for (Y0 = x*G, Y1 = x*H).
func ProveDlogEq(group curve.Curve, transcript *hash.Transcript, prover party.ID, x curve.Scalar, h curve.Point, y0, y1 curve.Point) (*DlogEqProof, error) {
	fork := forkFor(transcript, "dlogeq", prover)

	k := group.SampleScalarConstantTime(rand.Reader)
	k0 := k.ActOnBase()
	k1 := k.Act(h)

	e, err := dlogEqChallenge(group, fork, h, y0, y1, k0, k1)
	if err != nil {
		return nil, err
	}

	s := k.Add(e.Mul(x))
	return &DlogEqProof{K0: k0, K1: k1, S: s}, nil
}

// VerifyDlogEq checks a DlogEqProof for the joint statement (Y0, H, Y1).
func VerifyDlogEq(group curve.Curve, transcript *hash.Transcript, prover party.ID, h curve.Point, y0, y1 curve.Point, proof *DlogEqProof) bool {
	fork := forkFor(transcript, "dlogeq", prover)
	e, err := dlogEqChallenge(group, fork, h, y0, y1, proof.K0, proof.K1)
	if err != nil {
		return false
	}

	sG := proof.S.ActOnBase()
	eY0 := e.Act(y0)
	recomputedK0 := sG.Add(eY0.Negate())
	if !recomputedK0.Equal(proof.K0) {
		return false
	}

	sH := proof.S.Act(h)
	eY1 := e.Act(y1)
	recomputedK1 := sH.Add(eY1.Negate())
	return recomputedK1.Equal(proof.K1)
}

func dlogEqChallenge(group curve.Curve, transcript *hash.Transcript, h, y0, y1, k0, k1 curve.Point) (curve.Scalar, error) {
	labelled := []struct {
		label string
		pt    curve.Point
	}{
		{"dlogeq-h", h}, {"dlogeq-y0", y0}, {"dlogeq-y1", y1}, {"dlogeq-k0", k0}, {"dlogeq-k1", k1},
	}
	for _, lp := range labelled {
		b, err := lp.pt.MarshalBinary()
		if err != nil {
			return nil, err
		}
		transcript.Message(lp.label, b)
	}
	stream := transcript.Challenge("dlogeq-challenge")
	return group.SampleScalarConstantTime(stream), nil
}
