package triple_test

import (
	"testing/quick"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/caitsith-go/caitsith/internal/test"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// runTriple drives a full n-of-n Generate over every id in ids and returns
// each party's share alongside the (identical) public commitment.
func runTriple(group curve.Curve, ids party.IDSlice, threshold int) (map[party.ID]*triple.Share, *triple.Public) {
	sid := []byte("triple-property-test")
	instances := make(map[party.ID]*runtime.Instance, len(ids))
	for _, id := range ids {
		id := id
		others := ids.Other(id)
		instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
			share, pub, err := triple.Generate(ctx, others, group, threshold, 0)
			if err != nil {
				return nil, err
			}
			return [2]interface{}{share, pub}, nil
		})
	}

	results, err := runtime.Pump(instances)
	Expect(err).NotTo(HaveOccurred())

	shares := make(map[party.ID]*triple.Share, len(ids))
	var pub *triple.Public
	for _, id := range ids {
		pair := results[id].([2]interface{})
		shares[id] = pair[0].(*triple.Share)
		if pub == nil {
			pub = pair[1].(*triple.Public)
		}
	}
	return shares, pub
}

// Describes spec.md §8 universal invariant property 3: for any threshold
// subset after triple generation, Lagrange reconstruction yields (a, b, c)
// with a*b = c and group images matching the public commitment.
var _ = Describe("Triple generation", func() {
	It("satisfies property 3 across varying committee sizes", func() {
		group := curve.Secp256k1{}

		property := func(nRaw uint8) bool {
			n := int(nRaw%3) + 3 // n in [3, 5]; full committee acts as its own threshold subset
			ids := test.PartyIDs(n)

			shares, pub := runTriple(group, ids, n)

			lagrange := ids.AllLagrange(group)
			a := group.NewScalar()
			b := group.NewScalar()
			c := group.NewScalar()
			for _, id := range ids {
				lam := lagrange[id]
				share := shares[id]
				a = a.Add(lam.Mul(share.A))
				b = b.Add(lam.Mul(share.B))
				c = c.Add(lam.Mul(share.C))
			}

			return a.Mul(b).Equal(c) &&
				a.ActOnBase().Equal(pub.A) &&
				b.ActOnBase().Equal(pub.B) &&
				c.ActOnBase().Equal(pub.C)
		}

		Expect(quick.Check(property, &quick.Config{MaxCount: 5})).To(Succeed())
	})
})
