package runtime

import "github.com/caitsith-go/caitsith/pkg/party"

// ActionKind is a closed tagged union discriminator, per spec.md §9 Design
// Notes ("tagged variants vs polymorphism... not extension points").
type ActionKind int

const (
	// ActionWait means nothing further can happen until a new message
	// arrives.
	ActionWait ActionKind = iota
	// ActionSendMany means Data must be broadcast to every other
	// participant.
	ActionSendMany
	// ActionSendPrivate means Data must be unicast to To.
	ActionSendPrivate
	// ActionReturn means the protocol has completed; Output holds the
	// final value.
	ActionReturn
)

// Action is the result of one Poke call.
type Action struct {
	Kind   ActionKind
	Data   []byte
	To     party.ID
	Output interface{}
}

// outgoing is what a task goroutine deposits into the single-slot mailbox;
// it is translated into an Action by the instance's Poke loop.
type outgoing struct {
	private bool
	to      party.ID
	data    []byte
}

// mailbox is the single-slot rendezvous channel from protocol tasks to the
// poke loop described in spec.md §4.1. Depositing blocks until poke drains
// the previous message, which is what guarantees a task never races ahead
// of what the host has actually been told to send.
type mailbox struct {
	ch chan outgoing
}

func newMailbox() *mailbox {
	return &mailbox{ch: make(chan outgoing)}
}

func (m *mailbox) sendMany(data []byte) {
	m.ch <- outgoing{private: false, data: data}
}

func (m *mailbox) sendPrivate(to party.ID, data []byte) {
	m.ch <- outgoing{private: true, to: to, data: data}
}

// tryDrain returns the next queued outgoing message, if any, without
// blocking.
func (m *mailbox) tryDrain() (outgoing, bool) {
	select {
	case o := <-m.ch:
		return o, true
	default:
		return outgoing{}, false
	}
}
