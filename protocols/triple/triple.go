// Package triple implements committed Beaver triple generation, spec.md
// §4.11 — the most complex protocol in the suite. Each participant
// contributes a random pair of secret-shared polynomials E, F (and an
// initially-zero L), proves in zero knowledge that its opened share of the
// eventual product is consistent with a two-party oblivious multiplication
// run against every peer, then Shamir-shares the product itself through L.
//
// Round structure is grounded on the commit → open+exchange → verify+sum
// shape of protocols/lss/keygen/round1.go-round3.go, extended with the
// dlog/dlogeq consistency proofs and the OT-based multiplication of
// pkg/mult in place of the keygen round's plain share verification.
package triple

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/caitsith-go/caitsith/pkg/commitment"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/mult"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/polynomial"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/pkg/zk"
)

// Share is this party's additive share of a committed Beaver triple
// (spec.md §3 "Triple share"): a threshold subset Lagrange-reconstructs
// (a, b, c) with a*b = c.
type Share struct {
	A, B, C curve.Scalar
}

// Public is the triple's public commitment (A, B, C) = (aG, bG, cG),
// together with the participant list and threshold it was generated for.
type Public struct {
	A, B, C      curve.Point
	Participants party.IDSlice
	Threshold    int
}

// exchange runs a single bidirectional private message swap over ch: both
// ends obtain the same waitpoint (their first call on this fresh per-peer
// channel) and use it for both their send and their receive, the lower-ID
// party sending first (spec.md §4.1 "the n-th next_waitpoint() call...
// yields value n", regardless of which side is sending or receiving at
// that position).
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

// pairChannel derives the private channel this triple instance uses for
// its round-2 (sub=0) or round-4 (sub=1) exchange with peer, kept distinct
// from any channel pkg/mult derives against the same pair so the two
// never contend for the same waitpoint sequence.
func pairChannel(ctx *runtime.TaskCtx, peer party.ID, id uint64, sub uint64) runtime.Channel {
	return ctx.Private(peer).Child(id*4 + sub)
}

func idBytes(id uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], id)
	return b[:]
}

// Generate runs one instance of spec.md §4.11 against others (every other
// member of the committee generating this triple), returning this party's
// share and the triple's public commitment. id distinguishes concurrent
// Generate calls sharing the same runtime.Instance (e.g. from
// GenerateMany) so their broadcast and pairwise channels never collide.
func Generate(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, threshold int, id uint64) (*Share, *Public, error) {
	self := ctx.Self()
	all := party.NewIDSlice(append([]party.ID{self}, others...))
	selfScalar := self.Scalar(group)
	ch := ctx.Shared().Child(id)

	// Round 1: sample E, F, L (L(0) := 0 placeholder), commit, broadcast.
	ePoly := polynomial.NewRandom(group, rand.Reader, threshold-1)
	fPoly := polynomial.NewRandom(group, rand.Reader, threshold-1)
	lPoly := polynomial.NewRandom(group, rand.Reader, threshold-1)
	lPoly.SetConstant(group.NewScalar())

	eBytes, err := marshalGroupPoly(ePoly.Commit())
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	fBytes, err := marshalGroupPoly(fPoly.Commit())
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	lBytes, err := marshalGroupPoly(lPoly.Commit())
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}

	commit, randomizer, err := commitment.Commit(&polyCommitPayload{E: eBytes, F: fBytes, L: lBytes})
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
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

	// Confirmation: hash of the sorted set of commitments, used both to
	// cross-check every party saw the same round-1 broadcasts and as the
	// session id for the OT pipeline behind this triple's multiplication.
	confList := make([][commitment.Size]byte, len(all))
	for i, p := range all {
		confList[i] = commitments[p]
	}
	confirmation, err := commitment.Hash(confList)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}

	tr := hash.NewTranscript(group.Name(), "caitsith/triple")
	tr.Message("id", idBytes(id))
	tr.Message("confirmation", confirmation[:])

	ei0 := ePoly.EvaluateZero()
	fi0 := fPoly.EvaluateZero()
	eiG := ei0.ActOnBase()
	fiG := fi0.ActOnBase()

	proofE, err := zk.ProveDlog(group, tr, self, ei0, eiG)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	proofF, err := zk.ProveDlog(group, tr, self, fi0, fiG)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wireProofE, err := marshalDlog(proofE)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wireProofF, err := marshalDlog(proofF)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}

	// Round 2: broadcast confirmation + opening; in parallel, schedule the
	// pairwise OT-based multiplication of E(0)*F(0), keyed by confirmation
	// so concurrently-running triple generations never share an OT pipeline.
	multFut := ctx.Spawn(func(ctx *runtime.TaskCtx) (interface{}, error) {
		return mult.NPartyMultiply(ctx, others, group, confirmation[:], ei0, fi0)
	})

	round2Out := &round2Payload{
		Confirmation: confirmation,
		E:            eBytes, F: fBytes, L: lBytes,
		Randomizer: randomizer,
		ProofE:     wireProofE,
		ProofF:     wireProofF,
	}
	encoded2, err := encodeAny(round2Out)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wp2 := ch.NextWaitpoint()
	ctx.SendMany(ch, wp2, encoded2)

	// Privately send (E(peer), F(peer)) to each peer.
	shareCh := make(map[party.ID]runtime.Channel, len(others))
	for _, peer := range others {
		shareCh[peer] = pairChannel(ctx, peer, id, 0)
	}
	receivedShares := make(map[party.ID]*sharePayload, len(all))
	receivedShares[self] = &sharePayload{}
	if s, err := marshalScalar(ePoly.Evaluate(selfScalar)); err == nil {
		receivedShares[self].E = s
	}
	if s, err := marshalScalar(fPoly.Evaluate(selfScalar)); err == nil {
		receivedShares[self].F = s
	}
	for _, peer := range others {
		peerScalar := peer.Scalar(group)
		eShare, err := marshalScalar(ePoly.Evaluate(peerScalar))
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		fShare, err := marshalScalar(fPoly.Evaluate(peerScalar))
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		mine, err := encodeAny(&sharePayload{E: eShare, F: fShare})
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		data := exchange(ctx, shareCh[peer], self, peer, mine)
		var sp sharePayload
		if err := decodeInto(data, &sp); err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		receivedShares[peer] = &sp
	}

	received2 := ctx.RecvAll(ch, wp2, others)
	peerPayloads := make(map[party.ID]*round2Payload, len(others))
	for peer, data := range received2 {
		var p round2Payload
		if err := decodeInto(data, &p); err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		if p.Confirmation != confirmation {
			return nil, nil, runtime.NewAssertionFailed("triple: confirmation mismatch from %d", peer)
		}
		if len(p.E) != threshold || len(p.F) != threshold || len(p.L) != threshold {
			return nil, nil, runtime.NewAssertionFailed("triple: wrong commitment length from %d", peer)
		}
		lPub, err := unmarshalGroupPoly(group, p.L)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		if !lPub.EvaluateZero().IsIdentity() {
			return nil, nil, runtime.NewAssertionFailed("triple: L(0) != identity from %d", peer)
		}
		c := commitment.Commitment(commitments[peer])
		if !c.Check(&polyCommitPayload{E: p.E, F: p.F, L: p.L}, commitment.Randomizer(p.Randomizer)) {
			return nil, nil, runtime.NewAssertionFailed("triple: commitment failed to open from %d", peer)
		}
		peEG, err := unmarshalPoint(group, p.E[0])
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		peFG, err := unmarshalPoint(group, p.F[0])
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		dProofE, err := unmarshalDlog(group, p.ProofE)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		dProofF, err := unmarshalDlog(group, p.ProofF)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		if !zk.VerifyDlog(group, tr, peer, peEG, dProofE) {
			return nil, nil, runtime.NewAssertionFailed("triple: dlog proof of E(0) failed from %d", peer)
		}
		if !zk.VerifyDlog(group, tr, peer, peFG, dProofF) {
			return nil, nil, runtime.NewAssertionFailed("triple: dlog proof of F(0) failed from %d", peer)
		}
		peerPayloads[peer] = &p
	}

	// Sum the group polynomials.
	bigE := ePoly.Commit()
	bigF := fPoly.Commit()
	bigL := lPoly.Commit()
	for _, peer := range others {
		p := peerPayloads[peer]
		eGroup, err := unmarshalGroupPoly(group, p.E)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		fGroup, err := unmarshalGroupPoly(group, p.F)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		lGroup, err := unmarshalGroupPoly(group, p.L)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		bigE = bigE.Add(eGroup)
		bigF = bigF.Add(fGroup)
		bigL = bigL.Add(lGroup)
	}

	// Sum received shares into (a_i, b_i) and cross-check against bigE/bigF.
	aShare := group.NewScalar()
	bShare := group.NewScalar()
	for _, p := range all {
		sp := receivedShares[p]
		es, err := unmarshalScalar(group, sp.E)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		fs, err := unmarshalScalar(group, sp.F)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		aShare = aShare.Add(es)
		bShare = bShare.Add(fs)
	}
	if !bigE.Evaluate(selfScalar).Equal(aShare.ActOnBase()) {
		return nil, nil, runtime.NewAssertionFailed("triple: E(me)*G mismatch")
	}
	if !bigF.Evaluate(selfScalar).Equal(bShare.ActOnBase()) {
		return nil, nil, runtime.NewAssertionFailed("triple: F(me)*G mismatch")
	}

	// Round 3: C_i = E_i(0) * B, with a dlogeq proof tying it to our
	// already-opened commitment to E_i(0).
	bPub := bigF.EvaluateZero()
	ci := ei0.Act(bPub)
	proofCi, err := zk.ProveDlogEq(group, tr, self, ei0, bPub, eiG, ci)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	ciBytes, err := marshalPoint(ci)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wireProofCi, err := marshalDlogEq(proofCi)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	encoded3, err := encodeAny(&round3Payload{C: ciBytes, Proof: wireProofCi})
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wp3 := ch.NextWaitpoint()
	ctx.SendMany(ch, wp3, encoded3)

	received3 := ctx.RecvAll(ch, wp3, others)
	bigC := ci
	for peer, data := range received3 {
		var p round3Payload
		if err := decodeInto(data, &p); err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		cj, err := unmarshalPoint(group, p.C)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		proof, err := unmarshalDlogEq(group, p.Proof)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		peerEG, err := unmarshalPoint(group, peerPayloads[peer].E[0])
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		if !zk.VerifyDlogEq(group, tr, peer, bPub, peerEG, cj, proof) {
			return nil, nil, runtime.NewAssertionFailed("triple: dlogeq proof of C_i failed from %d", peer)
		}
		bigC = bigC.Add(cj)
	}

	// Round 4: await the multiplication share, set L(0) := l0_i, prove and
	// broadcast Chat_i = l0_i*G, privately distribute L(peer).
	l0Raw, err := multFut.Await()
	if err != nil {
		return nil, nil, err
	}
	l0i := l0Raw.(curve.Scalar)
	lPoly.SetConstant(l0i)
	chatI := l0i.ActOnBase()
	proofChat, err := zk.ProveDlog(group, tr, self, l0i, chatI)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	chatBytes, err := marshalPoint(chatI)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wireProofChat, err := marshalDlog(proofChat)
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	encoded4, err := encodeAny(&round4Payload{CHat: chatBytes, Proof: wireProofChat})
	if err != nil {
		return nil, nil, runtime.WrapOther(err)
	}
	wp4 := ch.NextWaitpoint()
	ctx.SendMany(ch, wp4, encoded4)

	lShareCh := make(map[party.ID]runtime.Channel, len(others))
	for _, peer := range others {
		lShareCh[peer] = pairChannel(ctx, peer, id, 1)
	}
	receivedL := make(map[party.ID]curve.Scalar, len(all))
	receivedL[self] = lPoly.Evaluate(selfScalar)
	for _, peer := range others {
		peerScalar := peer.Scalar(group)
		mine, err := marshalScalar(lPoly.Evaluate(peerScalar))
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		data := exchange(ctx, lShareCh[peer], self, peer, mine)
		s, err := unmarshalScalar(group, data)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		receivedL[peer] = s
	}

	received4 := ctx.RecvAll(ch, wp4, others)
	bigCHat := chatI
	for peer, data := range received4 {
		var p round4Payload
		if err := decodeInto(data, &p); err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		chatJ, err := unmarshalPoint(group, p.CHat)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		proof, err := unmarshalDlog(group, p.Proof)
		if err != nil {
			return nil, nil, runtime.WrapOther(err)
		}
		if !zk.VerifyDlog(group, tr, peer, chatJ, proof) {
			return nil, nil, runtime.NewAssertionFailed("triple: dlog proof of Chat_i failed from %d", peer)
		}
		bigCHat = bigCHat.Add(chatJ)
	}

	bigL.SetConstant(bigCHat)
	if !bigL.EvaluateZero().Equal(bigC) {
		return nil, nil, runtime.NewAssertionFailed("triple: L*G(0) != C")
	}

	cShare := group.NewScalar()
	for _, p := range all {
		cShare = cShare.Add(receivedL[p])
	}
	if !bigL.Evaluate(selfScalar).Equal(cShare.ActOnBase()) {
		return nil, nil, runtime.NewAssertionFailed("triple: L(me)*G mismatch")
	}

	share := &Share{A: aShare, B: bShare, C: cShare}
	pub := &Public{A: bigE.EvaluateZero(), B: bigF.EvaluateZero(), C: bigC, Participants: all, Threshold: threshold}
	return share, pub, nil
}

// GenerateMany runs n independent Generate instances concurrently, each on
// its own per-index channel and OT pipeline (spec.md §4.11
// "internally per-index channels for the pairwise multiplications"),
// returning one (Share, Public) pair per instance in order.
func GenerateMany(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, threshold int, n int, base uint64) ([]*Share, []*Public, error) {
	futures := make([]*runtime.Future, n)
	for i := 0; i < n; i++ {
		idx := base + uint64(i)
		futures[i] = ctx.Spawn(func(ctx *runtime.TaskCtx) (interface{}, error) {
			share, pub, err := Generate(ctx, others, group, threshold, idx)
			if err != nil {
				return nil, err
			}
			return [2]interface{}{share, pub}, nil
		})
	}
	results, err := runtime.JoinAll(futures)
	if err != nil {
		return nil, nil, err
	}
	shares := make([]*Share, n)
	pubs := make([]*Public, n)
	for i, r := range results {
		pair := r.([2]interface{})
		shares[i] = pair[0].(*Share)
		pubs[i] = pair[1].(*Public)
	}
	return shares, pubs, nil
}
