// Package keyshare implements the generic key-share core of spec.md §4.12:
// a two-round commit/open/verify/sum protocol, parameterized by each
// party's input scalar and an optional expected public key, reused as-is
// by Keygen, Reshare, and Refresh. Grounded on
// protocols/lss/keygen/round1.go-round3.go's commit → open+exchange →
// verify+sum shape, generalized from fixed fresh-random input to an
// arbitrary caller-supplied constant term.
package keyshare

import (
	"crypto/rand"

	"github.com/caitsith-go/caitsith/pkg/commitment"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/polynomial"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/pkg/zk"
)

// Share is one party's output of the key-share core: a private scalar
// share and the reconstructed public key, together with the participant
// list and threshold it was generated against. PublicShares records
// every participant's public commitment point (F(id)*G), needed by
// caitsith.Config to persist a long-term record that can reconstruct
// the public key without any private share (caitsith.go).
type Share struct {
	Private      curve.Scalar
	Public       curve.Point
	PublicShares map[party.ID]curve.Point
	Participants party.IDSlice
	Threshold    int
}

// Generate runs spec.md §4.12 against others: sample F with F(0) = si,
// commit/open, exchange shares, verify, and sum. If expected is non-nil,
// the reconstructed public key must equal it or the instance aborts.
func Generate(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, threshold int, si curve.Scalar, expected curve.Point, id uint64) (*Share, error) {
	self := ctx.Self()
	all := party.NewIDSlice(append([]party.ID{self}, others...))
	selfScalar := self.Scalar(group)
	ch := ctx.Shared().Child(id)

	fPoly := polynomial.ExtendRandom(group, rand.Reader, si, threshold)

	fBytes, err := marshalGroupPoly(fPoly.Commit())
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	commit, randomizer, err := commitment.Commit(&fCommitPayload{F: fBytes})
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	wp1 := ch.NextWaitpoint()
	ctx.SendMany(ch, wp1, commit[:])

	received1 := ctx.RecvAll(ch, wp1, others)
	commitments := make(map[party.ID][commitment.Size]byte, len(all))
	commitments[self] = commit
	for peer, data := range received1 {
		var c [commitment.Size]byte
		copy(c[:], data)
		commitments[peer] = c
	}

	tr := hash.NewTranscript(group.Name(), "caitsith/keyshare")
	si0 := fPoly.EvaluateZero()
	siG := si0.ActOnBase()
	proof, err := zk.ProveDlog(group, tr, self, si0, siG)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	wireProof, err := marshalDlog(proof)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}

	encoded, err := encodeAny(&openPayload{F: fBytes, Randomizer: randomizer, Proof: wireProof})
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	wp2 := ch.NextWaitpoint()
	ctx.SendMany(ch, wp2, encoded)

	shareCh := make(map[party.ID]runtime.Channel, len(others))
	for _, peer := range others {
		shareCh[peer] = ctx.Private(peer).Child(id)
	}
	receivedShares := make(map[party.ID]curve.Scalar, len(all))
	receivedShares[self] = fPoly.Evaluate(selfScalar)
	for _, peer := range others {
		peerScalar := peer.Scalar(group)
		mine, err := fPoly.Evaluate(peerScalar).MarshalBinary()
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		data := exchange(ctx, shareCh[peer], self, peer, mine)
		s, err := unmarshalScalar(group, data)
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		receivedShares[peer] = s
	}

	received2 := ctx.RecvAll(ch, wp2, others)
	bigF := fPoly.Commit()
	for peer, data := range received2 {
		var p openPayload
		if err := decodeInto(data, &p); err != nil {
			return nil, runtime.WrapOther(err)
		}
		if len(p.F) != threshold {
			return nil, runtime.NewAssertionFailed("keyshare: wrong commitment length from %d", peer)
		}
		c := commitment.Commitment(commitments[peer])
		if !c.Check(&fCommitPayload{F: p.F}, commitment.Randomizer(p.Randomizer)) {
			return nil, runtime.NewAssertionFailed("keyshare: commitment failed to open from %d", peer)
		}
		peerFG, err := unmarshalPoint(group, p.F[0])
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		dProof, err := unmarshalDlog(group, p.Proof)
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		if !zk.VerifyDlog(group, tr, peer, peerFG, dProof) {
			return nil, runtime.NewAssertionFailed("keyshare: dlog proof of F(0) failed from %d", peer)
		}
		fGroup, err := unmarshalGroupPoly(group, p.F)
		if err != nil {
			return nil, runtime.WrapOther(err)
		}
		bigF = bigF.Add(fGroup)
	}

	xi := group.NewScalar()
	for _, p := range all {
		xi = xi.Add(receivedShares[p])
	}
	if !bigF.Evaluate(selfScalar).Equal(xi.ActOnBase()) {
		return nil, runtime.NewAssertionFailed("keyshare: F(me)*G mismatch")
	}

	publicKey := bigF.EvaluateZero()
	if expected != nil && !publicKey.Equal(expected) {
		return nil, runtime.NewAssertionFailed("keyshare: reconstructed public key does not match expected key")
	}

	publicShares := make(map[party.ID]curve.Point, len(all))
	for _, p := range all {
		publicShares[p] = bigF.Evaluate(p.Scalar(group))
	}

	return &Share{Private: xi, Public: publicKey, PublicShares: publicShares, Participants: all, Threshold: threshold}, nil
}

// exchange runs a single bidirectional private message swap on a fresh
// per-peer channel: both ends obtain the same waitpoint (their first call
// on this channel) and use it for both their send and their receive, the
// lower-ID party sending first (same discipline as protocols/triple).
func exchange(ctx *runtime.TaskCtx, ch runtime.Channel, self, peer party.ID, mine []byte) []byte {
	wp := ch.NextWaitpoint()
	if self < peer {
		ctx.SendPrivate(ch, wp, peer, mine)
		return ctx.RecvFrom(ch, wp, peer)
	}
	data := ctx.RecvFrom(ch, wp, peer)
	ctx.SendPrivate(ch, wp, peer, mine)
	return data
}

// Keygen runs a fresh distributed key generation: every party samples a
// uniformly random input and there is no expected public key.
func Keygen(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, threshold int, id uint64) (*Share, error) {
	si := group.SampleScalarConstantTime(rand.Reader)
	return Generate(ctx, others, group, threshold, si, nil, id)
}

// Refresh re-randomizes an existing share without changing the
// participant set, threshold, or public key: spec.md §4.12 "reshare with
// identical participant lists and thresholds".
func Refresh(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, threshold int, old *Share, id uint64) (*Share, error) {
	return Reshare(ctx, others, group, old.Participants, threshold, old, old.Public, threshold, id)
}

// Reshare moves an existing threshold share from oldParticipants/oldThreshold
// to the committee this instance is started against (self ∪ others), with
// new threshold newThreshold, checked against the known oldPublicKey
// (spec.md §4.12 "S is supplied (old public key)" — every party in the new
// committee, old or freshly joining, must learn and check it). A party in
// the old set passes lagrange(me, oldParticipants) * old.Private; a party
// new to the committee (old == nil) passes the zero scalar.
func Reshare(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, oldParticipants party.IDSlice, oldThreshold int, old *Share, oldPublicKey curve.Point, newThreshold int, id uint64) (*Share, error) {
	self := ctx.Self()
	newSet := party.NewIDSlice(append([]party.ID{self}, others...))

	if oldParticipants.Intersect(newSet).Len() < oldThreshold {
		return nil, runtime.NewBadParameters("reshare: old/new participant overlap %d below old threshold %d", oldParticipants.Intersect(newSet).Len(), oldThreshold)
	}

	si := group.NewScalar()
	if old != nil && oldParticipants.Contains(self) {
		lam := oldParticipants.Lagrange(group, self)
		si = lam.Mul(old.Private)
	}

	return Generate(ctx, others, group, newThreshold, si, oldPublicKey, id)
}
