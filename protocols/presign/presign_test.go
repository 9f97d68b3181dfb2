package presign_test

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
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// TestGenerate reproduces spec.md §8 property 4's setup half: after a
// keygen and two independent triples, presign produces an (R, k, σ) that
// every party agrees on the nonce point for, and whose ka/xb/kd checks
// this implies already held internally.
func TestGenerate(t *testing.T) {
	group := curve.Secp256k1{}
	sid := []byte("test-presign-generate")
	ids := test.PartyIDs(3)
	threshold := 3

	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			triple0, pub0, err := triple.Generate(ctx, others, group, threshold, 0)
			if err != nil {
				return nil, err
			}
			triple1, pub1, err := triple.Generate(ctx, others, group, threshold, 1)
			if err != nil {
				return nil, err
			}
			key, err := keyshare.Keygen(ctx, others, group, threshold, 2)
			if err != nil {
				return nil, err
			}
			pre, err := presign.Generate(ctx, others, group, threshold, triple0, pub0, triple1, pub1, key, 3)
			if err != nil {
				return nil, err
			}
			return [2]interface{}{pre, key}, nil
		})
	}

	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	var r curve.Point
	for _, id := range ids {
		pair := results[id].([2]interface{})
		pre := pair[0].(*presign.Presignature)
		if r == nil {
			r = pre.R
		}
		assert.True(t, pre.R.Equal(r), "every party should agree on R")
	}

	assert.False(t, r.IsIdentity(), "R should not be the identity")
}

// TestGenerateThresholdMismatch reproduces spec.md §8 property 14:
// presign with thresholds that disagree between the two triples and the
// key share yields BadParameters.
func TestGenerateThresholdMismatch(t *testing.T) {
	group := curve.Secp256k1{}
	sid := []byte("test-presign-threshold-mismatch")
	ids := test.PartyIDs(3)

	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			triple0, pub0, err := triple.Generate(ctx, others, group, 3, 0)
			if err != nil {
				return nil, err
			}
			triple1, pub1, err := triple.Generate(ctx, others, group, 3, 1)
			if err != nil {
				return nil, err
			}
			key, err := keyshare.Keygen(ctx, others, group, 3, 2)
			if err != nil {
				return nil, err
			}
			// Ask presign to run at threshold 2, disagreeing with every
			// input's recorded threshold of 3.
			return presign.Generate(ctx, others, group, 2, triple0, pub0, triple1, pub1, key, 3)
		})
	}

	_, err := runtime.Pump(instances)
	require.Error(t, err)
}
