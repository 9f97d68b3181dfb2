package ot_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/ot"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

const (
	alice = party.ID(0)
	bob   = party.ID(1)
)

func TestBaseOT(t *testing.T) {
	group := curve.Secp256k1{}
	sid := []byte("test-base-ot")
	delta := bits.Random(rand.Reader)

	senderInst := runtime.Start(sid, alice, party.IDSlice{bob}, func(ctx *runtime.TaskCtx) (interface{}, error) {
		return ot.BaseOTSender(ctx, ctx.Private(bob), bob, group, sid)
	})
	receiverInst := runtime.Start(sid, bob, party.IDSlice{alice}, func(ctx *runtime.TaskCtx) (interface{}, error) {
		return ot.BaseOTReceiver(ctx, ctx.Private(alice), alice, group, sid, delta)
	})

	results, err := runtime.Pump(map[party.ID]*runtime.Instance{alice: senderInst, bob: receiverInst})
	require.NoError(t, err)

	sOut := results[alice].(*ot.BaseSenderOutput)
	rOut := results[bob].(*ot.BaseReceiverOutput)

	for i := 0; i < bits.Kappa; i++ {
		if delta.Bit(i) == 0 {
			assert.Equal(t, sOut.K0[i], rOut.KDelta[i], "row %d", i)
		} else {
			assert.Equal(t, sOut.K1[i], rOut.KDelta[i], "row %d", i)
		}
	}
}

func runBaseOT(t *testing.T, sid []byte, group curve.Curve, delta bits.Vector) (*ot.BaseSenderOutput, *ot.BaseReceiverOutput) {
	t.Helper()
	senderInst := runtime.Start(sid, alice, party.IDSlice{bob}, func(ctx *runtime.TaskCtx) (interface{}, error) {
		return ot.BaseOTSender(ctx, ctx.Private(bob), bob, group, sid)
	})
	receiverInst := runtime.Start(sid, bob, party.IDSlice{alice}, func(ctx *runtime.TaskCtx) (interface{}, error) {
		return ot.BaseOTReceiver(ctx, ctx.Private(alice), alice, group, sid, delta)
	})
	results, err := runtime.Pump(map[party.ID]*runtime.Instance{alice: senderInst, bob: receiverInst})
	require.NoError(t, err)
	return results[alice].(*ot.BaseSenderOutput), results[bob].(*ot.BaseReceiverOutput)
}

func TestRandomOTExtensionAndMtA(t *testing.T) {
	group := curve.Secp256k1{}
	sid := []byte("test-rot-mta")
	delta := bits.Random(rand.Reader)
	baseSender, baseReceiver := runBaseOT(t, sid, group, delta)

	const size = 40
	a := group.SampleScalarConstantTime(rand.Reader)
	b := group.SampleScalarConstantTime(rand.Reader)

	senderInst := runtime.Start(sid, alice, party.IDSlice{bob}, func(ctx *runtime.TaskCtx) (interface{}, error) {
		ch := ctx.Private(bob)
		rot, err := ot.RandomOTSender(ctx, ch, bob, group, sid, size, baseReceiver)
		if err != nil {
			return nil, err
		}
		return ot.MtASender(ctx, ch, bob, group, sid, a, rot)
	})
	receiverInst := runtime.Start(sid, bob, party.IDSlice{alice}, func(ctx *runtime.TaskCtx) (interface{}, error) {
		ch := ctx.Private(alice)
		rot, err := ot.RandomOTReceiver(ctx, ch, alice, group, sid, size, baseSender)
		if err != nil {
			return nil, err
		}
		return ot.MtAReceiver(ctx, ch, alice, group, sid, b, rot)
	})

	results, err := runtime.Pump(map[party.ID]*runtime.Instance{alice: senderInst, bob: receiverInst})
	require.NoError(t, err)

	alpha := results[alice].(curve.Scalar)
	beta := results[bob].(curve.Scalar)
	sum := alpha.Add(beta)
	expected := a.Mul(b)
	assert.True(t, sum.Equal(expected), "alpha+beta should equal a*b")
}
