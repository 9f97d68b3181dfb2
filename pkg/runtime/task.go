package runtime

import "github.com/caitsith-go/caitsith/pkg/party"

// TaskCtx is the authoring handle protocol code blocks on. It is cheap to
// pass around: spawned child tasks receive the same instance pointer and
// derive their own channels via Channel.Child, never sharing a mutable
// waitpoint counter with the parent (spec.md §5 "do not share a single
// channel handle between two tasks that both send").
type TaskCtx struct {
	instance *Instance
}

// Shared returns the all-parties root channel for this session.
func (ctx *TaskCtx) Shared() Channel {
	return SharedRoot(ctx.instance.sessionID)
}

// Private returns the root channel private to this party and peer.
func (ctx *TaskCtx) Private(peer party.ID) Channel {
	return PrivateRoot(ctx.instance.sessionID, ctx.instance.self, peer)
}

// Self returns this task's own participant id.
func (ctx *TaskCtx) Self() party.ID { return ctx.instance.self }

// Others returns every other participant, sorted.
func (ctx *TaskCtx) Others() party.IDSlice { return ctx.instance.others }

// SendMany deposits a broadcast message on ch at waitpoint. It blocks
// until the poke loop drains the outgoing mailbox, which is the
// suspension point of spec.md §5(b). waitpoint must be obtained once per
// logical round via ch.NextWaitpoint() and reused for every Recv/RecvAll
// call that round, so that a round's single send lines up with however
// many peer messages it takes to fill it (the original's single `wait0`
// shared between `send_many` and `recv`, original_source/src/sign.rs:67-83).
func (ctx *TaskCtx) SendMany(ch Channel, waitpoint uint64, data []byte) {
	h := Header{Tag: ch.tag, Waitpoint: waitpoint}
	ctx.instance.mailbox.sendMany(append(h.Encode(), data...))
}

// SendPrivate deposits a unicast message to to on ch at waitpoint.
func (ctx *TaskCtx) SendPrivate(ch Channel, waitpoint uint64, to party.ID, data []byte) {
	h := Header{Tag: ch.tag, Waitpoint: waitpoint}
	ctx.instance.mailbox.sendPrivate(to, append(h.Encode(), data...))
}

// Recv blocks until a message arrives at ch's waitpoint, from whichever
// sender reaches it first (used on the shared channel, where the sender
// is part of the payload's meaning, e.g. "whoever's turn it is"). It is
// not sender-filtered, per spec.md §4.1 "Message buffer".
func (ctx *TaskCtx) Recv(ch Channel, waitpoint uint64) (party.ID, []byte) {
	h := Header{Tag: ch.tag, Waitpoint: waitpoint}
	return ctx.instance.buffer.Pop(h)
}

// RecvFrom blocks until a message from exactly from arrives at ch's
// waitpoint; messages from any other sender are discarded, as private
// channels should never see a third party in a correct deployment
// (spec.md §4.1 "Message buffer").
func (ctx *TaskCtx) RecvFrom(ch Channel, waitpoint uint64, from party.ID) []byte {
	h := Header{Tag: ch.tag, Waitpoint: waitpoint}
	return ctx.instance.buffer.PopFrom(h, from)
}

// RecvAll gathers one message per participant in ids on ch at waitpoint,
// keyed by sender. It is the common "wait for everyone" pattern used at
// the end of nearly every protocol round: every peer's broadcast for this
// round was sent at the same waitpoint (the one the caller's own SendMany
// used), so every Recv in this loop must query that same waitpoint rather
// than advancing to a fresh one per peer.
func (ctx *TaskCtx) RecvAll(ch Channel, waitpoint uint64, ids party.IDSlice) map[party.ID][]byte {
	out := make(map[party.ID][]byte, len(ids))
	remaining := make(map[party.ID]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
	}
	for len(remaining) > 0 {
		from, data := ctx.Recv(ch, waitpoint)
		if !remaining[from] {
			// A duplicate/unexpected sender for this waitpoint: spec.md
			// treats the shared channel as not sender-filtered, so every
			// sender's message for the round arrives on this one
			// waitpoint. RecvAll keeps the first message from each sender
			// in ids and drops any message from a sender not in ids or
			// already recorded.
			continue
		}
		out[from] = data
		delete(remaining, from)
	}
	return out
}

// Future is the handle to a spawned child task's eventual result.
type Future struct {
	ch chan result
}

// Spawn starts f concurrently and returns a handle to await its result.
// This is the "spawning child tasks on a cooperative executor" primitive
// of spec.md §4.1 "Authoring model" — e.g. one child per peer for the
// N-party multiplication, or one per bit index for batch random OT.
func (ctx *TaskCtx) Spawn(f func(*TaskCtx) (interface{}, error)) *Future {
	fut := &Future{ch: make(chan result, 1)}
	go func() {
		val, err := f(ctx)
		fut.ch <- result{val: val, err: err}
	}()
	return fut
}

// Await blocks until the spawned task completes.
func (fu *Future) Await() (interface{}, error) {
	r := <-fu.ch
	return r.val, r.err
}

// JoinAll awaits every future in order, returning the first error
// encountered (spec.md §4.1 "stream-join over many child tasks").
func JoinAll(futures []*Future) ([]interface{}, error) {
	out := make([]interface{}, len(futures))
	for i, fu := range futures {
		val, err := fu.Await()
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}
