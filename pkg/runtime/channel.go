// Package runtime implements the waitpoint/channel-driven protocol engine
// of spec.md §4.1: it converts sequential cryptographic logic (authored as
// Go goroutines, per spec.md §9 Design Notes option (b), since Go has no
// native async/await) into the poke/message state machine the host drives.
//
// Adapted from pkg/protocol/handler.go's round-number Message/mutex
// plumbing, generalized from "one handler per round number" to "one
// deterministically-named channel per concurrently running sub-protocol",
// which is the piece spec.md §4.1 identifies as the critical invariant.
package runtime

import (
	"encoding/binary"
	"sort"
	"sync/atomic"

	"github.com/caitsith-go/caitsith/pkg/hash"
	"github.com/caitsith-go/caitsith/pkg/party"
)

// tagLen is the byte length of a channel tag. At 256 bits it is well above
// spec.md's "at least 160 bits" floor, making accidental collisions
// between independently-derived channels negligible.
const tagLen = 32

// Tag identifies a channel: either a root (shared or private-pair) or a
// child of another channel.
type Tag [tagLen]byte

// Channel is a handle into one namespace of waitpoints. The counter below
// is a pointer, so copies of the same Channel value (Channel values are
// plain structs, copied by value) share one waitpoint sequence. Two
// goroutines that need independent sequences derive separate channels via
// Child, each of which has its own tag and its own counter starting at
// zero (spec.md §5 "Shared-resource policy").
type Channel struct {
	tag     Tag
	counter *uint64
}

// TagBytes returns the channel's tag.
func (c Channel) TagBytes() Tag { return c.tag }

// NextWaitpoint returns the next value in this channel's monotonically
// increasing waitpoint sequence: the n-th call returns n (0-indexed),
// regardless of which goroutine calls it or in what order, since the
// underlying counter is advanced atomically (spec.md §8 property 11).
func (c Channel) NextWaitpoint() uint64 {
	return atomic.AddUint64(c.counter, 1) - 1
}

// Child derives an independent child channel indexed by a 64-bit integer.
// Child identifiers are derived deterministically from (parent tag, index)
// so both ends of the wire compute the same tag without negotiation
// (spec.md §4.1 "Channel naming").
func (c Channel) Child(index uint64) Channel {
	s := hash.New([]byte("caitsith/runtime/child/v1"))
	var idxBuf [8]byte
	binary.LittleEndian.PutUint64(idxBuf[:], index)
	s.Ad(c.tag[:], idxBuf[:])
	var out Tag
	s.Prf(out[:], nil)
	var zero uint64
	return Channel{tag: out, counter: &zero}
}

// sharedRootTag is the fixed domain-separation tag for the all-parties
// root channel, mixed with the session id so different protocol
// invocations never share a namespace.
func sharedRootTag(sessionID []byte) Tag {
	s := hash.New([]byte("caitsith/runtime/shared-root/v1"))
	var out Tag
	s.Prf(out[:], sessionID)
	return out
}

// privateRootTag hashes the sorted pair of participant ids with a fixed
// tag, so both members of the pair independently compute the same private
// root without any negotiation (spec.md §4.1).
func privateRootTag(sessionID []byte, a, b party.ID) Tag {
	if a > b {
		a, b = b, a
	}
	s := hash.New([]byte("caitsith/runtime/private-root/v1"))
	var idBuf [8]byte
	binary.LittleEndian.PutUint32(idBuf[0:4], uint32(a))
	binary.LittleEndian.PutUint32(idBuf[4:8], uint32(b))
	s.Ad(sessionID, idBuf[:])
	var out Tag
	s.Prf(out[:], nil)
	return out
}

// SharedRoot returns the single root channel shared by every participant.
func SharedRoot(sessionID []byte) Channel {
	var zero uint64
	return Channel{tag: sharedRootTag(sessionID), counter: &zero}
}

// PrivateRoot returns the root channel private to the unordered pair
// (a, b).
func PrivateRoot(sessionID []byte, a, b party.ID) Channel {
	var zero uint64
	return Channel{tag: privateRootTag(sessionID, a, b), counter: &zero}
}

// sortedPair is a small helper used by callers that want a canonical,
// order-independent label for a pair of participants (e.g. for logging or
// for keying maps), kept next to privateRootTag since both encode the same
// "unordered pair" idea.
func sortedPair(a, b party.ID) (party.ID, party.ID) {
	ids := []party.ID{a, b}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], ids[1]
}
