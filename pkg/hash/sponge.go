// Package hash provides the labelled duplex-sponge primitive (spec.md §6)
// that every Fiat-Shamir transcript, commitment, and PRG expansion in this
// module is built on, plus the Transcript abstraction of spec.md §4.2.
package hash

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
)

// Sponge is a duplex construction over blake3's extendable-output function.
// It is not a general streaming sponge: every absorb appends length-framed
// bytes to one running blake3 hasher, and Prf reads output from a digest
// of the bytes absorbed so far without changing that state, which keeps
// the implementation simple and is sufficient since this module only ever
// needs "absorb everything, then squeeze" usage (no interleaved
// absorb/squeeze within one proof).
type Sponge struct {
	h *blake3.Hasher
}

// New creates a sponge domain-separated by domain.
func New(domain []byte) *Sponge {
	h := blake3.New()
	writeFramed(h, domain)
	return &Sponge{h: h}
}

// Ad absorbs bytes as associated data. If more is non-nil it is absorbed
// immediately after, as a convenience for "label then value" callers.
func (s *Sponge) Ad(data []byte, more []byte) {
	writeFramed(s.h, data)
	if more != nil {
		writeFramed(s.h, more)
	}
}

// MetaAd absorbs a label together with an optional value, tagged
// distinctly from Ad so that metadata (e.g. a transcript label) can never
// collide with absorbed message bytes of the same length.
func (s *Sponge) MetaAd(label string, more []byte) {
	s.h.Write([]byte{0xFF})
	writeFramed(s.h, []byte(label))
	if more != nil {
		writeFramed(s.h, more)
	}
}

// Prf squeezes len(out) bytes of output. If more is non-nil it is absorbed
// first, as a convenience for "absorb then squeeze" callers.
func (s *Sponge) Prf(out []byte, more []byte) {
	if more != nil {
		writeFramed(s.h, more)
	}
	digest := s.h.Digest()
	if _, err := io.ReadFull(digest, out); err != nil {
		panic("hash: blake3 digest read failed: " + err.Error())
	}
}

// Clone returns an independent copy of the sponge's current state.
func (s *Sponge) Clone() *Sponge {
	return &Sponge{h: s.h.Clone()}
}

// writeFramed absorbs a length prefix followed by data, so that
// Ad([]byte("ab"), []byte("c")) cannot be confused with
// Ad([]byte("a"), []byte("bc")).
func writeFramed(h *blake3.Hasher, data []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	h.Write(lenBuf[:])
	h.Write(data)
}
