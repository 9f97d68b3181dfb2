package party

import (
	"sort"

	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/hash"
)

// IDSlice is a deduplicated, sorted sequence of participants. It is
// constructed once per protocol invocation and never mutated afterwards
// (spec.md §3 Lifecycle).
type IDSlice []ID

// NewIDSlice sorts and deduplicates ids into an IDSlice.
func NewIDSlice(ids []ID) IDSlice {
	cp := make(IDSlice, len(ids))
	copy(cp, ids)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	out := cp[:0]
	var last ID
	first := true
	for _, id := range cp {
		if first || id != last {
			out = append(out, id)
		}
		last = id
		first = false
	}
	return out
}

// Len, Less, Swap make IDSlice sortable directly if needed by callers.
func (s IDSlice) Len() int           { return len(s) }
func (s IDSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s IDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Contains reports whether id is a member of the list.
func (s IDSlice) Contains(id ID) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// Index returns the position of id within the sorted list, or -1.
func (s IDSlice) Index(id ID) int {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	if i < len(s) && s[i] == id {
		return i
	}
	return -1
}

// Other returns every participant except self, in sorted order.
func (s IDSlice) Other(self ID) IDSlice {
	out := make(IDSlice, 0, len(s))
	for _, id := range s {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

// Intersect returns the sorted intersection of s and other.
func (s IDSlice) Intersect(other IDSlice) IDSlice {
	out := make(IDSlice, 0)
	for _, id := range s {
		if other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// Hash absorbs the sorted list into the transcript so that every party
// derives the same domain separator regardless of message ordering
// (spec.md §3 "Participant list").
func (s IDSlice) Hash(t *hash.Transcript) {
	buf := make([]byte, 4*len(s))
	for i, id := range s {
		v := uint32(id)
		buf[4*i+0] = byte(v >> 24)
		buf[4*i+1] = byte(v >> 16)
		buf[4*i+2] = byte(v >> 8)
		buf[4*i+3] = byte(v)
	}
	t.Message("participants", buf)
}

// Lagrange returns this list's Lagrange coefficient at 0 for the
// participant id, relative to every member of the list.
func (s IDSlice) Lagrange(group curve.Curve, id ID) curve.Scalar {
	num := group.NewScalar()
	one := group.NewScalar()
	oneNat := unitNat()
	num = num.SetNat(oneNat)
	one = one.SetNat(oneNat)
	den := group.NewScalar().SetNat(oneNat)

	xi := id.Scalar(group)
	for _, j := range s {
		if j == id {
			continue
		}
		xj := j.Scalar(group)
		// num *= (0 - x_j) = -x_j
		num = num.Mul(xj.Negate())
		// den *= (x_i - x_j)
		den = den.Mul(xi.Sub(xj))
	}
	denInv, err := den.Invert()
	if err != nil {
		// Only possible if the list contains a duplicate participant,
		// which NewIDSlice already prevents.
		panic("party: degenerate Lagrange denominator")
	}
	return num.Mul(denInv)
}

// AllLagrange returns the Lagrange coefficient at 0 for every participant
// in the list, keyed by participant id.
func (s IDSlice) AllLagrange(group curve.Curve) map[ID]curve.Scalar {
	out := make(map[ID]curve.Scalar, len(s))
	for _, id := range s {
		out[id] = s.Lagrange(group, id)
	}
	return out
}
