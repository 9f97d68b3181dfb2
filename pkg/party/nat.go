package party

import "github.com/cronokirby/saferith"

func unitNat() *saferith.Nat {
	return new(saferith.Nat).SetUint64(1)
}
