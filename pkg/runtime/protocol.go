package runtime

import (
	"sync"

	"github.com/caitsith-go/caitsith/pkg/party"
)

// Protocol is the host-facing trait of spec.md §4.1: poke progresses the
// internal state machine until it cannot proceed without fresh input, and
// message delivers an externally received one. After Return or a fatal
// error the instance is idempotently terminal.
type Protocol interface {
	Poke() (Action, error)
	Message(from party.ID, data []byte) error
}

// RootFunc is the body of a protocol, written as a single Go function that
// blocks on TaskCtx.Recv/RecvFrom and deposits outgoing messages through
// TaskCtx.SendMany/SendPrivate. It may spawn child goroutines via
// TaskCtx.Spawn for independent parallelism (e.g. one per peer, or one per
// OT row index), exactly as spec.md §4.1 "Authoring model" requires.
type RootFunc func(ctx *TaskCtx) (interface{}, error)

// Instance runs one RootFunc against a single-threaded poke/message
// interface. Internally it is a set of goroutines (spec.md §9 Design
// Notes option (b)); poke never blocks, since Go channels let us peek the
// mailbox and the completion signal non-blockingly.
type Instance struct {
	sessionID []byte
	self      party.ID
	others    party.IDSlice

	buffer  *MessageBuffer
	mailbox *mailbox
	done    chan result

	mu       sync.Mutex
	terminal bool
	finalErr error
	finalVal interface{}
}

type result struct {
	val interface{}
	err error
}

// Start spawns root as the instance's root task and returns immediately;
// root runs concurrently on its own goroutine (and any goroutines it
// spawns) until it needs input that has not arrived yet.
func Start(sessionID []byte, self party.ID, others party.IDSlice, root RootFunc) *Instance {
	in := &Instance{
		sessionID: sessionID,
		self:      self,
		others:    others,
		buffer:    NewMessageBuffer(),
		mailbox:   newMailbox(),
		done:      make(chan result, 1),
	}
	ctx := &TaskCtx{instance: in}
	go func() {
		val, err := root(ctx)
		in.done <- result{val: val, err: WrapOther(err)}
	}()
	return in
}

// Poke implements Protocol. Priority, per spec.md §4.1: (1) flush one
// outgoing message, (2) if the root task is complete return its value,
// (3) otherwise return Wait. This ordering prevents deadlock caused by
// withholding an already-prepared message behind further local work.
func (in *Instance) Poke() (Action, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.terminal {
		if in.finalErr != nil {
			return Action{}, in.finalErr
		}
		return Action{Kind: ActionReturn, Output: in.finalVal}, nil
	}

	if o, ok := in.mailbox.tryDrain(); ok {
		if o.private {
			return Action{Kind: ActionSendPrivate, To: o.to, Data: o.data}, nil
		}
		return Action{Kind: ActionSendMany, Data: o.data}, nil
	}

	select {
	case r := <-in.done:
		in.terminal = true
		if r.err != nil {
			in.finalErr = r.err
			return Action{}, r.err
		}
		in.finalVal = r.val
		return Action{Kind: ActionReturn, Output: r.val}, nil
	default:
	}

	return Action{Kind: ActionWait}, nil
}

// Message implements Protocol: it decodes the header off the front of
// data and pushes the remaining payload into the message buffer keyed by
// that header, waking any goroutine blocked in Recv/RecvFrom.
func (in *Instance) Message(from party.ID, data []byte) error {
	h, payload, err := DecodeHeader(data)
	if err != nil {
		return WrapOther(err)
	}
	in.buffer.Push(h, from, payload)
	return nil
}

// Self returns this instance's own participant id.
func (in *Instance) Self() party.ID { return in.self }

// Others returns every other participant, sorted.
func (in *Instance) Others() party.IDSlice { return in.others }

// SessionID returns the session id this instance was started with.
func (in *Instance) SessionID() []byte { return in.sessionID }
