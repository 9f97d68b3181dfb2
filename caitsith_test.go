package caitsith_test

import (
	"testing"

	"github.com/caitsith-go/caitsith"
	"github.com/caitsith-go/caitsith/internal/test"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/sign"
)

// TestKeygenThenSign exercises the top-level API end to end: a full
// interactive Keygen, persisted through MarshalBinary/UnmarshalBinary,
// then a full interactive Sign whose signature verifies under the
// standard ECDSA equation.
func TestKeygenThenSign(t *testing.T) {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(3)
	n := ids.Len()

	instances := make(map[party.ID]*runtime.Instance, n)
	for _, id := range ids {
		inst, err := caitsith.Keygen([]byte("keygen-session"), group, id, ids, n)
		if err != nil {
			t.Fatalf("Keygen(%d): %v", id, err)
		}
		instances[id] = inst
	}
	results, err := runtime.Pump(instances)
	if err != nil {
		t.Fatalf("keygen pump: %v", err)
	}

	configs := make(map[party.ID]*caitsith.Config, n)
	var publicKey curve.Point
	for _, id := range ids {
		cfg := results[id].(*caitsith.Config)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("config %d invalid: %v", id, err)
		}
		if publicKey == nil {
			publicKey = cfg.PublicKey
		} else if !cfg.PublicKey.Equal(publicKey) {
			t.Fatalf("party %d disagrees on public key", id)
		}
		configs[id] = cfg
	}

	roundTripped := make(map[party.ID]*caitsith.Config, n)
	for _, id := range ids {
		data, err := configs[id].MarshalBinary()
		if err != nil {
			t.Fatalf("marshal config %d: %v", id, err)
		}
		out := caitsith.EmptyConfig(group)
		if err := out.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal config %d: %v", id, err)
		}
		if !out.PublicKey.Equal(publicKey) {
			t.Fatalf("round-tripped config %d lost the public key", id)
		}
		if !caitsith.IsCompatibleForSigning(configs[id], out) {
			t.Fatalf("round-tripped config %d is not compatible with its original", id)
		}
		roundTripped[id] = out
	}

	m := sign.HashMessage(group, []byte("hello world"))
	signInstances := make(map[party.ID]*runtime.Instance, n)
	for _, id := range ids {
		inst, err := caitsith.Sign([]byte("sign-session"), roundTripped[id], m)
		if err != nil {
			t.Fatalf("Sign(%d): %v", id, err)
		}
		signInstances[id] = inst
	}
	signResults, err := runtime.Pump(signInstances)
	if err != nil {
		t.Fatalf("sign pump: %v", err)
	}

	sig := signResults[ids[0]].(*sign.Signature)
	r, err := sig.R.XScalar()
	if err != nil {
		t.Fatalf("XScalar: %v", err)
	}
	sInv, err := sig.S.Invert()
	if err != nil {
		t.Fatalf("Invert: %v", err)
	}
	reproduced := m.Mul(sInv).ActOnBase().Add(r.Mul(sInv).Act(publicKey))
	reproducedR, err := reproduced.XScalar()
	if err != nil {
		t.Fatalf("XScalar: %v", err)
	}
	if !reproducedR.Equal(r) {
		t.Fatalf("signature failed ECDSA verification")
	}
	if sig.S.IsOverHalfOrder() {
		t.Fatalf("signature not normalized to low-s")
	}
}

// TestDealKeysAndTriples exercises the trusted-dealer test helpers: the
// dealt key shares reconstruct the same public key via Lagrange
// interpolation over any threshold-sized subset, and the dealt triples
// satisfy a*b = c under reconstruction.
func TestDealKeysAndTriples(t *testing.T) {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(4)
	threshold := 3

	configs, err := caitsith.DealKeys(group, ids, threshold)
	if err != nil {
		t.Fatalf("DealKeys: %v", err)
	}
	var publicKey curve.Point
	for _, id := range ids {
		cfg := configs[id]
		if err := cfg.Validate(); err != nil {
			t.Fatalf("dealt config %d invalid: %v", id, err)
		}
		if publicKey == nil {
			publicKey = cfg.PublicKey
		} else if !cfg.PublicKey.Equal(publicKey) {
			t.Fatalf("dealt config %d disagrees on public key", id)
		}
	}

	subset := party.NewIDSlice(ids[:threshold])
	lagrange := subset.AllLagrange(group)
	sum := group.NewScalar()
	for _, id := range subset {
		sum = sum.Add(lagrange[id].Mul(configs[id].Private))
	}
	if !sum.ActOnBase().Equal(publicKey) {
		t.Fatalf("reconstructed private key does not match dealt public key")
	}

	shares, pubs, err := caitsith.DealTriples(group, ids, threshold, 2)
	if err != nil {
		t.Fatalf("DealTriples: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected 2 triples, got %d", len(pubs))
	}
	for i, pub := range pubs {
		a := group.NewScalar()
		b := group.NewScalar()
		c := group.NewScalar()
		for _, id := range subset {
			lam := lagrange[id]
			a = a.Add(lam.Mul(shares[id][i].A))
			b = b.Add(lam.Mul(shares[id][i].B))
			c = c.Add(lam.Mul(shares[id][i].C))
		}
		if !a.Mul(b).Equal(c) {
			t.Fatalf("triple %d: a*b != c after reconstruction", i)
		}
		if !a.ActOnBase().Equal(pub.A) || !b.ActOnBase().Equal(pub.B) || !c.ActOnBase().Equal(pub.C) {
			t.Fatalf("triple %d: reconstructed values don't match public commitment", i)
		}
	}
}

// TestIsCompatibleForSigningRejectsMismatch checks spec.md's
// compatibility gate refuses two unrelated configs.
func TestIsCompatibleForSigningRejectsMismatch(t *testing.T) {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(3)
	c1, err := caitsith.DealKeys(group, ids, 3)
	if err != nil {
		t.Fatalf("DealKeys: %v", err)
	}
	c2, err := caitsith.DealKeys(group, ids, 3)
	if err != nil {
		t.Fatalf("DealKeys: %v", err)
	}
	if caitsith.IsCompatibleForSigning(c1[ids[0]], c2[ids[0]]) {
		t.Fatalf("two independently dealt keys should not be compatible")
	}
}
