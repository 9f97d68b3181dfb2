package keyshare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caitsith-go/caitsith/internal/test"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/keyshare"
)

func runKeygen(t *testing.T, group curve.Curve, ids party.IDSlice, threshold int, sid []byte) map[party.ID]*keyshare.Share {
	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			return keyshare.Keygen(ctx, others, group, threshold, 0)
		})
	}
	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	shares := make(map[party.ID]*keyshare.Share, len(ids))
	for _, id := range ids {
		shares[id] = results[id].(*keyshare.Share)
	}
	return shares
}

// TestKeygen reproduces spec.md §8 property 1: for any threshold subset
// after keygen, Lagrange reconstruction of private shares yields a scalar
// whose group image equals the public key.
func TestKeygen(t *testing.T) {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(3)
	shares := runKeygen(t, group, ids, 3, []byte("test-keygen"))

	lagrange := ids.AllLagrange(group)
	x := group.NewScalar()
	for _, id := range ids {
		x = x.Add(lagrange[id].Mul(shares[id].Private))
	}

	for _, id := range ids {
		assert.True(t, shares[id].Public.Equal(shares[ids[0]].Public), "every party should agree on the public key")
	}
	assert.True(t, x.ActOnBase().Equal(shares[ids[0]].Public), "reconstructed private key should match public key")
}

// TestRefresh reproduces spec.md §8's n=3,t=3 refresh scenario: the public
// key is unchanged and the refreshed shares still reconstruct it.
func TestRefresh(t *testing.T) {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(3)
	shares := runKeygen(t, group, ids, 3, []byte("test-refresh-keygen"))
	publicKey := shares[ids[0]].Public

	sid := []byte("test-refresh")
	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		old := shares[id]
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			return keyshare.Refresh(ctx, others, group, 3, old, 0)
		})
	}
	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	lagrange := ids.AllLagrange(group)
	x := group.NewScalar()
	for _, id := range ids {
		refreshed := results[id].(*keyshare.Share)
		assert.True(t, refreshed.Public.Equal(publicKey), "refresh must not change the public key")
		x = x.Add(lagrange[id].Mul(refreshed.Private))
	}
	assert.True(t, x.ActOnBase().Equal(publicKey), "reconstructed refreshed private key should still match public key")
}

// TestReshare reproduces spec.md §8's n=4 reshare scenario: moving from
// t=3 over {0,1,2} to t=4 over {0,1,2,3} preserves the public key, and any
// 4-subset (here, the whole new committee) reconstructs it.
func TestReshare(t *testing.T) {
	group := curve.Secp256k1{}
	oldIDs := test.PartyIDs(3)
	shares := runKeygen(t, group, oldIDs, 3, []byte("test-reshare-keygen"))
	publicKey := shares[oldIDs[0]].Public

	newIDs := party.NewIDSlice([]party.ID{0, 1, 2, 3})
	sid := []byte("test-reshare")
	instances := make(map[party.ID]*runtime.Instance, len(newIDs))
	for _, id := range newIDs {
		id := id
		others := newIDs.Other(id)
		var old *keyshare.Share
		if s, ok := shares[id]; ok {
			old = s
		}
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			return keyshare.Reshare(ctx, others, group, oldIDs, 3, old, publicKey, 4, 0)
		})
	}
	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	lagrange := newIDs.AllLagrange(group)
	x := group.NewScalar()
	for _, id := range newIDs {
		newShare := results[id].(*keyshare.Share)
		assert.True(t, newShare.Public.Equal(publicKey), "reshare must not change the public key")
		x = x.Add(lagrange[id].Mul(newShare.Private))
	}
	assert.True(t, x.ActOnBase().Equal(publicKey), "reconstructed reshared private key should still match public key")
}
