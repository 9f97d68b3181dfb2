// Package zk implements the non-interactive sigma proofs of spec.md §4.4:
// Schnorr discrete-log and discrete-log-equality, both in the Fiat-Shamir
// challenge space of the curve's scalar field and both bound to a
// per-prover fork of the caller's transcript so that proofs from different
// provers can never be mixed.
package zk

import (
	"crypto/rand"

	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
)

// DlogProof proves knowledge of x such that Y = x*G.
type DlogProof struct {
	K curve.Point
	S curve.Scalar
}

// ProveDlog proves knowledge of x for Y = x*G. transcript is forked under
// label "dlog" and the prover's id, so that two provers proving the same
// statement in the same round derive independent challenges.
func ProveDlog(group curve.Curve, transcript *hash.Transcript, prover party.ID, x curve.Scalar, y curve.Point) (*DlogProof, error) {
	fork := forkFor(transcript, "dlog", prover)

	k := group.SampleScalarConstantTime(rand.Reader)
	bigK := k.ActOnBase()

	e, err := dlogChallenge(group, fork, y, bigK)
	if err != nil {
		return nil, err
	}

	s := k.Add(e.Mul(x))
	return &DlogProof{K: bigK, S: s}, nil
}

// VerifyDlog checks a DlogProof for the statement Y = x*G.
func VerifyDlog(group curve.Curve, transcript *hash.Transcript, prover party.ID, y curve.Point, proof *DlogProof) bool {
	fork := forkFor(transcript, "dlog", prover)
	e, err := dlogChallenge(group, fork, y, proof.K)
	if err != nil {
		return false
	}
	// Recompute K' = s*G - e*Y and check it matches the committed K.
	sG := proof.S.ActOnBase()
	eY := e.Act(y)
	recomputedK := sG.Add(eY.Negate())
	return recomputedK.Equal(proof.K)
}

func dlogChallenge(group curve.Curve, transcript *hash.Transcript, y, k curve.Point) (curve.Scalar, error) {
	yBytes, err := y.MarshalBinary()
	if err != nil {
		return nil, err
	}
	kBytes, err := k.MarshalBinary()
	if err != nil {
		return nil, err
	}
	transcript.Message("dlog-statement", yBytes)
	transcript.Message("dlog-commitment", kBytes)
	stream := transcript.Challenge("dlog-challenge")
	return group.SampleScalarConstantTime(stream), nil
}

func forkFor(transcript *hash.Transcript, label string, prover party.ID) *hash.Transcript {
	tag := make([]byte, 4)
	v := uint32(prover)
	tag[0] = byte(v >> 24)
	tag[1] = byte(v >> 16)
	tag[2] = byte(v >> 8)
	tag[3] = byte(v)
	return transcript.Forked(label, tag)
}
