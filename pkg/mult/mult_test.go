package mult_test

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/mult"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
)

// TestNPartyMultiply reproduces the scenario of spec.md §8: three parties
// with a = [1,2,3], b = [10,20,30] should additively reduce to 360.
func TestNPartyMultiply(t *testing.T) {
	group := curve.Secp256k1{}
	sid := []byte("test-n-party-multiply")
	ids := []party.ID{0, 1, 2}
	all := party.NewIDSlice(ids)

	aVals := []int64{1, 2, 3}
	bVals := []int64{10, 20, 30}
	scalarOf := func(v int64) curve.Scalar {
		s := group.NewScalar()
		nat := new(saferith.Nat).SetUint64(uint64(v))
		return s.SetNat(nat)
	}

	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for i, id := range ids {
		id := id
		aMe := scalarOf(aVals[i])
		bMe := scalarOf(bVals[i])
		others := all.Other(id)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			return mult.NPartyMultiply(ctx, others, group, sid, aMe, bMe)
		})
	}

	results, err := runtime.Pump(instances)
	require.NoError(t, err)

	total := group.NewScalar()
	for _, id := range ids {
		total = total.Add(results[id].(curve.Scalar))
	}
	expected := scalarOf(360)
	assert.True(t, total.Equal(expected), "sum of shares should equal (sum a)(sum b) = 360")
}
