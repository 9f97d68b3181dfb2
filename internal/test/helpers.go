// Package test carries the small helpers every protocol package's tests
// import: a canonical participant list and a deterministic source of
// randomness for reproducible property tests. Referenced the same way
// pkg/math/polynomial/lagrange_test.go imports internal/test.
package test

import (
	"math/rand"

	"github.com/caitsith-go/caitsith/pkg/party"
)

// PartyIDs returns the canonical n-party id set {0, ..., n-1}.
func PartyIDs(n int) party.IDSlice {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(i)
	}
	return party.NewIDSlice(ids)
}

// DeterministicRand returns a math/rand source seeded by seed, used where a
// test needs reproducible "randomness" (e.g. picking which parties drop out
// of a threshold set) without weakening any cryptographic sampling, which
// always goes through crypto/rand via curve.Curve.SampleScalarConstantTime.
func DeterministicRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
