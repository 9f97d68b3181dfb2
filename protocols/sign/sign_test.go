package sign_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caitsith-go/caitsith/internal/test"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/keyshare"
	"github.com/caitsith-go/caitsith/protocols/presign"
	"github.com/caitsith-go/caitsith/protocols/sign"
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// TestSignHelloWorld reproduces spec.md §8's n=3, t=3 keygen-then-sign
// scenario: the committee signs the ASCII message "hello world" and the
// result verifies under the textbook ECDSA equation.
func TestSignHelloWorld(t *testing.T) {
	group := curve.Secp256k1{}
	sid := []byte("test-sign-hello-world")
	ids := test.PartyIDs(3)
	threshold := 3
	m := sign.HashMessage(group, []byte("hello world"))

	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			key, err := keyshare.Keygen(ctx, others, group, threshold, 0)
			if err != nil {
				return nil, err
			}
			triple0, pub0, err := triple.Generate(ctx, others, group, threshold, 1)
			if err != nil {
				return nil, err
			}
			triple1, pub1, err := triple.Generate(ctx, others, group, threshold, 2)
			if err != nil {
				return nil, err
			}
			pre, err := presign.Generate(ctx, others, group, threshold, triple0, pub0, triple1, pub1, key, 3)
			if err != nil {
				return nil, err
			}
			sig, err := sign.Generate(ctx, others, group, threshold, key.Public, pre, m, 4)
			if err != nil {
				return nil, err
			}
			return [2]interface{}{sig, key.Public}, nil
		})
	}

	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	var publicKey curve.Point
	var sig *sign.Signature
	for _, id := range ids {
		pair := results[id].([2]interface{})
		s := pair[0].(*sign.Signature)
		if sig == nil {
			sig = s
			publicKey = pair[1].(curve.Point)
		}
		assert.True(t, s.R.Equal(sig.R), "every party should produce the same R")
		assert.True(t, s.S.Equal(sig.S), "every party should produce the same s")
	}

	r, err := sig.R.XScalar()
	require.NoError(t, err)
	sInv, err := sig.S.Invert()
	require.NoError(t, err)
	reproduced := m.Mul(sInv).ActOnBase().Add(r.Mul(sInv).Act(publicKey))
	reproducedR, err := reproduced.XScalar()
	require.NoError(t, err)
	assert.True(t, reproducedR.Equal(r), "signature should satisfy x_coord(m*s^-1*G + r*s^-1*PK) == r")
	assert.False(t, sig.S.IsOverHalfOrder(), "signature s should be normalized to the low half")
}

// TestSignAfterRefresh reproduces spec.md §8's refresh-then-sign scenario:
// the public key survives a refresh and a signature produced against the
// refreshed shares still verifies under it.
func TestSignAfterRefresh(t *testing.T) {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(3)
	threshold := 3

	keygenInstances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		keygenInstances[id] = runtime.Start([]byte("test-refresh-sign-keygen"), id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			return keyshare.Keygen(ctx, others, group, threshold, 0)
		})
	}
	keygenResults, err := runtime.Pump(keygenInstances)
	require.NoError(t, err)

	m := sign.HashMessage(group, []byte("hello world"))
	sid := []byte("test-refresh-sign")
	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		old := keygenResults[id].(*keyshare.Share)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			key, err := keyshare.Refresh(ctx, others, group, threshold, old, 0)
			if err != nil {
				return nil, err
			}
			triple0, pub0, err := triple.Generate(ctx, others, group, threshold, 1)
			if err != nil {
				return nil, err
			}
			triple1, pub1, err := triple.Generate(ctx, others, group, threshold, 2)
			if err != nil {
				return nil, err
			}
			pre, err := presign.Generate(ctx, others, group, threshold, triple0, pub0, triple1, pub1, key, 3)
			if err != nil {
				return nil, err
			}
			return sign.Generate(ctx, others, group, threshold, key.Public, pre, m, 4)
		})
	}
	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	publicKey := keygenResults[ids[0]].(*keyshare.Share).Public
	sig := results[ids[0]].(*sign.Signature)
	r, err := sig.R.XScalar()
	require.NoError(t, err)
	sInv, err := sig.S.Invert()
	require.NoError(t, err)
	reproduced := m.Mul(sInv).ActOnBase().Add(r.Mul(sInv).Act(publicKey))
	reproducedR, err := reproduced.XScalar()
	require.NoError(t, err)
	assert.True(t, reproducedR.Equal(r), "signature after refresh should still verify under the original public key")
}
