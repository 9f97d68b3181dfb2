// Package commitment implements the hiding+binding commitment of spec.md
// §4.3: commit/open over any CBOR-encodable value, plus an unrandomized
// plain-hash variant used to confirm everyone saw the same set of earlier
// commitments (spec.md §4.11 round 2 "confirmation").
package commitment

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/hash"
)

const (
	// Size is the length in bytes of a commitment digest and of its
	// opening randomizer.
	Size = 32
)

// Commitment is a 32-byte hiding+binding commitment over an encoded value.
type Commitment [Size]byte

// Randomizer is the 32-byte opening randomizer returned alongside a
// Commitment.
type Randomizer [Size]byte

// Commit encodes val, samples a fresh randomizer, and returns the
// commitment together with the randomizer needed to open it.
func Commit(val interface{}) (Commitment, Randomizer, error) {
	var r Randomizer
	if _, err := io.ReadFull(rand.Reader, r[:]); err != nil {
		return Commitment{}, Randomizer{}, err
	}
	c, err := commitWith(val, r)
	return c, r, err
}

func commitWith(val interface{}, r Randomizer) (Commitment, error) {
	encoded, err := codec.Encode(val)
	if err != nil {
		return Commitment{}, err
	}
	s := hash.New([]byte("caitsith/commitment/v1"))
	s.Ad(r[:], encoded)
	var out Commitment
	s.Prf(out[:], nil)
	return out, nil
}

// Check recomputes the commitment over val with randomizer r and compares
// in constant time against c.
func (c Commitment) Check(val interface{}, r Randomizer) bool {
	recomputed, err := commitWith(val, r)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(c[:], recomputed[:]) == 1
}

// Hash returns the unrandomized 32-byte digest of val, used when hiding is
// not required (e.g. confirming a set of already-opened commitments
// matches across parties).
func Hash(val interface{}) (Commitment, error) {
	encoded, err := codec.Encode(val)
	if err != nil {
		return Commitment{}, err
	}
	s := hash.New([]byte("caitsith/commitment-hash/v1"))
	var out Commitment
	s.Prf(out[:], encoded)
	return out, nil
}

// Equal compares two commitments in constant time.
func (c Commitment) Equal(other Commitment) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}
