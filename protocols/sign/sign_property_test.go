package sign_test

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
	"github.com/caitsith-go/caitsith/protocols/sign"
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// Describes spec.md §8 property 4: for any message and varying committee
// size, a full keygen+presign+sign run yields a signature verifying under
// the standard ECDSA equation, normalized to its low-s form.
var _ = Describe("Sign", func() {
	It("produces a verifying, low-s signature across varying committee sizes and messages", func() {
		group := curve.Secp256k1{}

		property := func(nRaw uint8, msg []byte) bool {
			if len(msg) == 0 {
				msg = []byte("empty")
			}
			n := int(nRaw%3) + 3 // n in [3, 5]
			ids := test.PartyIDs(n)
			sid := []byte("sign-property-test")
			m := sign.HashMessage(group, msg)

			instances := make(map[party.ID]*runtime.Instance, len(ids))
			for _, id := range ids {
				id := id
				others := ids.Other(id)
				instances[id] = runtime.Start(sid, id, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
					key, err := keyshare.Keygen(ctx, others, group, n, 0)
					if err != nil {
						return nil, err
					}
					triple0, pub0, err := triple.Generate(ctx, others, group, n, 1)
					if err != nil {
						return nil, err
					}
					triple1, pub1, err := triple.Generate(ctx, others, group, n, 2)
					if err != nil {
						return nil, err
					}
					pre, err := presign.Generate(ctx, others, group, n, triple0, pub0, triple1, pub1, key, 3)
					if err != nil {
						return nil, err
					}
					sig, err := sign.Generate(ctx, others, group, n, key.Public, pre, m, 4)
					if err != nil {
						return nil, err
					}
					return [2]interface{}{sig, key.Public}, nil
				})
			}
			results, err := runtime.Pump(instances)
			if err != nil {
				return false
			}

			pair := results[ids[0]].([2]interface{})
			sig := pair[0].(*sign.Signature)
			publicKey := pair[1].(curve.Point)

			r, err := sig.R.XScalar()
			if err != nil {
				return false
			}
			sInv, err := sig.S.Invert()
			if err != nil {
				return false
			}
			reproduced := m.Mul(sInv).ActOnBase().Add(r.Mul(sInv).Act(publicKey))
			reproducedR, err := reproduced.XScalar()
			if err != nil {
				return false
			}
			return reproducedR.Equal(r) && !sig.S.IsOverHalfOrder()
		}

		Expect(quick.Check(property, &quick.Config{MaxCount: 5})).To(Succeed())
	})
})
