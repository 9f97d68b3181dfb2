package presign_test

import (
	"testing/quick"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/caitsith-go/caitsith/internal/test"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/keyshare"
	"github.com/caitsith-go/caitsith/protocols/presign"
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// Describes spec.md §8 property 4's setup half across varying committee
// sizes: every party in a presign instance agrees on the same nonce R.
var _ = Describe("Presign", func() {
	It("yields an R every party agrees on, across varying committee sizes", func() {
		group := curve.Secp256k1{}

		property := func(nRaw uint8) bool {
			n := int(nRaw%3) + 3 // n in [3, 5]
			ids := test.PartyIDs(n)
			sid := []byte("presign-property-test")

			instances := make(map[party.ID]*runtime.Instance, len(ids))
			for _, id := range ids {
				id := id
				others := ids.Other(id)
				instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
					triple0, pub0, err := triple.Generate(ctx, others, group, n, 0)
					if err != nil {
						return nil, err
					}
					triple1, pub1, err := triple.Generate(ctx, others, group, n, 1)
					if err != nil {
						return nil, err
					}
					key, err := keyshare.Keygen(ctx, others, group, n, 2)
					if err != nil {
						return nil, err
					}
					return presign.Generate(ctx, others, group, n, triple0, pub0, triple1, pub1, key, 3)
				})
			}
			results, err := runtime.Pump(instances)
			if err != nil {
				return false
			}

			var r curve.Point
			for _, id := range ids {
				pre := results[id].(*presign.Presignature)
				if r == nil {
					r = pre.R
				} else if !r.Equal(pre.R) {
					return false
				}
			}
			return !r.IsIdentity()
		}

		Expect(quick.Check(property, &quick.Config{MaxCount: 5})).To(Succeed())
	})
})
