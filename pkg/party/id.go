// Package party implements the participant data model of spec.md §3:
// a totally ordered participant identifier, a sorted/deduplicated
// participant list with Lagrange coefficients, and the fixed-size maps and
// counters used to track per-participant protocol progress.
package party

import (
	"github.com/cronokirby/saferith"

	"github.com/caitsith-go/caitsith/pkg/curve"
)

// ID is a 32-bit participant identifier, totally ordered.
type ID uint32

// Scalar converts the participant id into its nonzero scalar id+1, as
// spec.md §3 "Participant" requires (id 0 would otherwise evaluate a
// polynomial at the origin, which is reserved for the shared secret).
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	s := group.NewScalar()
	nat := new(saferith.Nat).SetUint64(uint64(id) + 1)
	return s.SetNat(nat)
}
