package keyshare_test

import (
	"testing/quick"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/caitsith-go/caitsith/internal/test"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/keyshare"
)

// Describes spec.md §8 universal invariant property 1: for any threshold
// subset after keygen, Lagrange reconstruction of private shares yields a
// scalar whose group image equals the public key.
var _ = Describe("Keygen", func() {
	It("satisfies property 1 across varying committee sizes", func() {
		group := curve.Secp256k1{}

		property := func(nRaw uint8) bool {
			n := int(nRaw%3) + 3 // n in [3, 5]
			ids := test.PartyIDs(n)
			sid := []byte("keyshare-property-test")

			instances := make(map[party.ID]*runtime.Instance, len(ids))
			for _, id := range ids {
				id := id
				others := ids.Other(id)
				instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
					return keyshare.Keygen(ctx, others, group, n, 0)
				})
			}
			results, err := runtime.Pump(instances)
			if err != nil {
				return false
			}

			lagrange := ids.AllLagrange(group)
			x := group.NewScalar()
			var publicKey curve.Point
			for _, id := range ids {
				share := results[id].(*keyshare.Share)
				if publicKey == nil {
					publicKey = share.Public
				} else if !publicKey.Equal(share.Public) {
					return false
				}
				x = x.Add(lagrange[id].Mul(share.Private))
			}
			return x.ActOnBase().Equal(publicKey)
		}

		Expect(quick.Check(property, &quick.Config{MaxCount: 5})).To(Succeed())
	})
})
