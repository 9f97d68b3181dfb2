package runtime

import (
	"sync"

	"github.com/caitsith-go/caitsith/pkg/party"
)

// envelope is one buffered, already-demultiplexed message.
type envelope struct {
	from party.ID
	data []byte
}

// MessageBuffer is the concurrent mapping from (channel, waitpoint) header
// to a queue of (sender, payload) pairs described in spec.md §4.1. It is
// the only place incoming wire bytes are demultiplexed; recv is not
// sender-filtered here — shared channels hand back whichever (from, data)
// arrived first, private channels loop in the caller until the expected
// sender is seen.
type MessageBuffer struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue map[Header][]envelope
}

// NewMessageBuffer creates an empty buffer.
func NewMessageBuffer() *MessageBuffer {
	b := &MessageBuffer{queue: make(map[Header][]envelope)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Push appends a message for header and wakes any goroutine blocked in Pop.
func (b *MessageBuffer) Push(h Header, from party.ID, payload []byte) {
	b.mu.Lock()
	b.queue[h] = append(b.queue[h], envelope{from: from, data: payload})
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Pop blocks until a message for header h is available, then returns it.
// It never returns an error; callers that need cancellation close over a
// higher-level context and simply never call Pop again (spec.md §5
// "Cancellation... a host that wishes to abort a protocol instance simply
// drops it").
func (b *MessageBuffer) Pop(h Header) (party.ID, []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue[h]) == 0 {
		b.cond.Wait()
	}
	e := b.queue[h][0]
	b.queue[h] = b.queue[h][1:]
	return e.from, e.data
}

// PopFrom blocks until a message for header h sent specifically by want is
// available. Messages from any other sender are discarded: private
// channels are by construction only ever used by the two participants
// that derived the shared private root, so a message claiming to be on
// that channel from a third party indicates either a misbehaving host or
// an attempted impersonation, and is simply never a valid continuation.
func (b *MessageBuffer) PopFrom(h Header, want party.ID) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		for len(b.queue[h]) > 0 {
			e := b.queue[h][0]
			b.queue[h] = b.queue[h][1:]
			if e.from == want {
				return e.data
			}
		}
		b.cond.Wait()
	}
}
