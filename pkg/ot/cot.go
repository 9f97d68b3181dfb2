package ot

import (
	"crypto/rand"

	"github.com/caitsith-go/caitsith/pkg/bits"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

// CorrelatedSenderOutput is the extension-sender's output of spec.md §4.7:
// the row-packed q matrix, one Kappa-bit row per extended OT.
type CorrelatedSenderOutput struct {
	Q bits.Matrix
}

// CorrelatedReceiverOutput is the extension-receiver's output: the T0
// matrix and the fresh per-row choice bits it picked for this batch.
type CorrelatedReceiverOutput struct {
	T0     bits.Matrix
	Choice ChoiceRow
}

// CorrelatedOTSender runs the party holding (delta, K) from the base OT
// receiver role (spec.md §4.7). It extends K into m correlated OTs bound to
// the same delta.
func CorrelatedOTSender(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, sid []byte, m int, base *BaseReceiverOutput) (*CorrelatedSenderOutput, error) {
	t := toSquare(base.KDelta).ExpandTranspose(sid, m)

	data := ctx.RecvFrom(ch, ch.NextWaitpoint(), peer)
	u, err := decodeMatrix(data, m)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}

	q := make(bits.Matrix, m)
	for i := 0; i < m; i++ {
		q[i] = u[i].And(base.Delta).Xor(t[i])
	}
	return &CorrelatedSenderOutput{Q: q}, nil
}

// CorrelatedOTReceiver runs the party holding (K0, K1) from the base OT
// sender role (spec.md §4.7), picking m fresh choice bits for this batch.
func CorrelatedOTReceiver(ctx *runtime.TaskCtx, ch runtime.Channel, peer party.ID, sid []byte, m int, base *BaseSenderOutput) (*CorrelatedReceiverOutput, error) {
	t0 := toSquare(base.K0).ExpandTranspose(sid, m)
	t1 := toSquare(base.K1).ExpandTranspose(sid, m)

	choice := newChoiceRow(m)
	if _, err := rand.Read(choice); err != nil {
		return nil, runtime.WrapOther(err)
	}

	u := make(bits.Matrix, m)
	for i := 0; i < m; i++ {
		x := bits.All(choice.Bit(i))
		u[i] = t0[i].Xor(t1[i]).Xor(x)
	}

	encoded, err := encodeMatrix(u)
	if err != nil {
		return nil, runtime.WrapOther(err)
	}
	ctx.SendPrivate(ch, ch.NextWaitpoint(), peer, encoded)

	return &CorrelatedReceiverOutput{T0: t0, Choice: choice}, nil
}
