// Package mult implements the two-party and N-party multiplication
// protocols of spec.md §4.10, built on a fresh base random OT extended
// into MtA conversions (pkg/ot). Grounded on the per-peer fan-out and
// fresh-randomness-per-pairing pattern of protocols/lss/jvss/jvss.go,
// adapted from its polynomial-share exchange to the OT-based Gilboa
// construction this spec calls for, and on errgroup-based fan-out for the
// N-party reduction.
package mult

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/sync/errgroup"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/ot"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

// sidChannel derives the pairwise channel this multiplication runs on from
// the (self, peer) private root, further childed by sid. Two unrelated
// multiplications between the same pair (e.g. two triple generations
// running concurrently) pass distinct sid values and so land on disjoint
// waitpoint namespaces, per spec.md §5 "distinct child channels whenever
// independent parallelism is desired" — ctx.Private(peer) alone is not
// enough, since every call against the same pair would otherwise use the
// same tag with its own counter starting from zero, so their waitpoints
// would collide.
func sidChannel(ctx *runtime.TaskCtx, peer party.ID, sid []byte) runtime.Channel {
	s := hash.New([]byte("caitsith/mult/child/v1"))
	var out [8]byte
	s.Prf(out[:], sid)
	return ctx.Private(peer).Child(binary.LittleEndian.Uint64(out[:]))
}

// rowBatchLength is L = kappa(curve) + kappa(security) of spec.md §4.9,
// the number of random-OT rows consumed by a single MtA conversion.
func rowBatchLength(group curve.Curve) int {
	return group.Bits() + bits.Kappa
}

// TwoPartyMultiply runs spec.md §4.10 for one pair (me, peer): a fresh
// base random OT (me plays OT receiver iff me > peer, fixing roles by
// participant order), extended to 2L random OTs and split into two
// halves, each consumed by one MtA conversion. It returns this party's
// additive share of a_me*b_peer + b_me*a_peer.
func TwoPartyMultiply(ctx *runtime.TaskCtx, peer party.ID, group curve.Curve, sid []byte, aMe, bMe curve.Scalar) (curve.Scalar, error) {
	ch := sidChannel(ctx, peer, sid)
	self := ctx.Self()
	l := rowBatchLength(group)

	if self > peer {
		delta := bits.Random(rand.Reader)
		base, err := ot.BaseOTReceiver(ctx, ch, peer, group, sid, delta)
		if err != nil {
			return nil, err
		}
		rot, err := ot.RandomOTSender(ctx, ch, peer, group, sid, 2*l, base)
		if err != nil {
			return nil, err
		}
		rot1 := &ot.RandomSenderOutput{V0: rot.V0[:l], V1: rot.V1[:l]}
		rot2 := &ot.RandomSenderOutput{V0: rot.V0[l:], V1: rot.V1[l:]}

		alpha1, err := ot.MtASender(ctx, ch, peer, group, sid, aMe, rot1)
		if err != nil {
			return nil, err
		}
		alpha2, err := ot.MtASender(ctx, ch, peer, group, sid, bMe, rot2)
		if err != nil {
			return nil, err
		}
		return alpha1.Add(alpha2), nil
	}

	base, err := ot.BaseOTSender(ctx, ch, peer, group, sid)
	if err != nil {
		return nil, err
	}
	rot, err := ot.RandomOTReceiver(ctx, ch, peer, group, sid, 2*l, base)
	if err != nil {
		return nil, err
	}
	rot1 := &ot.RandomReceiverOutput{Choice: ot.SliceChoice(rot.Choice, 0, l), V: rot.V[:l]}
	rot2 := &ot.RandomReceiverOutput{Choice: ot.SliceChoice(rot.Choice, l, l), V: rot.V[l:]}

	beta1, err := ot.MtAReceiver(ctx, ch, peer, group, sid, bMe, rot1)
	if err != nil {
		return nil, err
	}
	beta2, err := ot.MtAReceiver(ctx, ch, peer, group, sid, aMe, rot2)
	if err != nil {
		return nil, err
	}
	return beta1.Add(beta2), nil
}

// NPartyMultiply reduces (a_i, b_i) per participant into an additive share
// c_i with Σc_i = (Σa_i)(Σb_i), by running TwoPartyMultiply against every
// other participant concurrently and adding the local diagonal term
// (spec.md §4.10).
func NPartyMultiply(ctx *runtime.TaskCtx, others party.IDSlice, group curve.Curve, sid []byte, aMe, bMe curve.Scalar) (curve.Scalar, error) {
	shares := make([]curve.Scalar, len(others))
	var g errgroup.Group
	for idx, peer := range others {
		idx, peer := idx, peer
		g.Go(func() error {
			share, err := TwoPartyMultiply(ctx, peer, group, sid, aMe, bMe)
			if err != nil {
				return err
			}
			shares[idx] = share
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := aMe.Mul(bMe)
	for _, share := range shares {
		c = c.Add(share)
	}
	return c, nil
}
