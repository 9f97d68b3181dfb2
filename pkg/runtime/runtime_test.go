package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caitsith-go/caitsith/pkg/party"
)

// TestWaitpointMonotonic checks spec.md §8 property 11: next_waitpoint
// called n times produces values 0..n regardless of interleaving.
func TestWaitpointMonotonic(t *testing.T) {
	ch := SharedRoot([]byte("session"))
	const n = 200
	results := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ch.NextWaitpoint()
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	for _, r := range results {
		assert.False(t, seen[r], "waitpoint %d produced twice", r)
		seen[r] = true
	}
	for i := uint64(0); i < n; i++ {
		assert.True(t, seen[i], "waitpoint %d never produced", i)
	}
}

// TestChannelNoCollision checks spec.md §8 property 12.
func TestChannelNoCollision(t *testing.T) {
	root := SharedRoot([]byte("session"))
	cij := root.Child(1).Child(2)
	cji := root.Child(2).Child(1)
	assert.NotEqual(t, cij.tag, cji.tag)

	combined := root.Child(1<<32 + 2)
	assert.NotEqual(t, cij.tag, combined.tag)
}

// TestPingPong drives two Instances through a minimal broadcast round
// trip, exercising Poke's priority order and Message's demultiplexing.
func TestPingPong(t *testing.T) {
	sessionID := []byte("ping-pong")
	alice := party.ID(0)
	bob := party.ID(1)
	all := party.NewIDSlice([]party.ID{alice, bob})

	root := func(self party.ID, others party.IDSlice) RootFunc {
		return func(ctx *TaskCtx) (interface{}, error) {
			ch := ctx.Shared()
			wp := ch.NextWaitpoint()
			ctx.SendMany(ch, wp, []byte{byte(self)})
			msgs := ctx.RecvAll(ch, wp, others)
			sum := byte(self)
			for _, m := range msgs {
				sum += m[0]
			}
			return sum, nil
		}
	}

	aliceInst := Start(sessionID, alice, all.Other(alice), root(alice, all.Other(alice)))
	bobInst := Start(sessionID, bob, all.Other(bob), root(bob, all.Other(bob)))

	pump(t, aliceInst, bobInst, alice, bob)

	aliceOut, err := drainResult(t, aliceInst)
	require.NoError(t, err)
	bobOut, err := drainResult(t, bobInst)
	require.NoError(t, err)

	assert.EqualValues(t, byte(alice)+byte(bob), aliceOut)
	assert.EqualValues(t, byte(alice)+byte(bob), bobOut)
}

// pump alternates poking both instances and delivering any produced
// messages to the other, until both are terminal.
func pump(t *testing.T, a, b *Instance, aID, bID party.ID) {
	t.Helper()
	instances := map[party.ID]*Instance{aID: a, bID: b}
	done := map[party.ID]bool{}
	for len(done) < 2 {
		for id, inst := range instances {
			if done[id] {
				continue
			}
			action, err := inst.Poke()
			require.NoError(t, err)
			switch action.Kind {
			case ActionSendMany:
				for otherID, other := range instances {
					if otherID == id {
						continue
					}
					require.NoError(t, other.Message(id, action.Data))
				}
			case ActionReturn:
				done[id] = true
			case ActionWait:
				// nothing to do this tick
			}
		}
	}
}

func drainResult(t *testing.T, inst *Instance) (interface{}, error) {
	t.Helper()
	action, err := inst.Poke()
	require.Equal(t, ActionReturn, action.Kind)
	return action.Output, err
}
