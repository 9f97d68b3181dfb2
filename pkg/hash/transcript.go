package hash

// Transcript is the labelled Fiat-Shamir object described in spec.md §2/§4.2:
// Message absorbs a label and payload, Challenge squeezes a deterministic
// stream seeded by everything absorbed so far, and Forked clones the state
// so that per-prover challenges can be derived without perturbing the
// shared transcript (used by the sigma proofs in pkg/zk to prevent mixing
// proofs from different provers, spec.md §4.4).
type Transcript struct {
	sponge *Sponge
}

// NewTranscript starts a transcript domain-separated by the curve name
// (spec.md §6 NAME) and a protocol label.
func NewTranscript(curveName string, protocolLabel string) *Transcript {
	s := New([]byte("caitsith/transcript/v1"))
	s.MetaAd("curve", []byte(curveName))
	s.MetaAd("protocol", []byte(protocolLabel))
	return &Transcript{sponge: s}
}

// Message absorbs label then data as associated data.
func (t *Transcript) Message(label string, data []byte) {
	t.sponge.MetaAd(label, data)
}

// Challenge absorbs the label then returns a deterministic byte stream
// seeded by the full transcript state so far. Successive reads from the
// returned stream are independent of later Message/Challenge calls.
func (t *Transcript) Challenge(label string) *ChallengeStream {
	t.sponge.MetaAd(label, nil)
	seed := make([]byte, 64)
	// Squeezing a challenge must not make the transcript's future state
	// depend on how many bytes the caller reads from it, so we derive a
	// fixed-size seed here and stream from a rekeyed sponge rather than
	// reading directly off the live transcript digest.
	digestSponge := t.sponge.Clone()
	digestSponge.Prf(seed, nil)
	return &ChallengeStream{s: New([]byte("caitsith/challenge-stream/v1")), seed: seed}
}

// ChallengeStream is a deterministic RNG derived from a transcript
// challenge. Read never errors and never blocks.
type ChallengeStream struct {
	s      *Sponge
	seed   []byte
	offset uint64
}

func (c *ChallengeStream) Read(p []byte) (int, error) {
	var ctr [8]byte
	for i := range ctr {
		ctr[i] = byte(c.offset >> (8 * uint(i)))
	}
	c.offset++
	block := make([]byte, len(p))
	s := c.s.Clone()
	s.Ad(c.seed, ctr[:])
	s.Prf(block, nil)
	copy(p, block)
	return len(p), nil
}

// Forked returns an independent transcript clone bound to label and tag,
// used to derive per-identity (e.g. per-prover) challenges without
// altering the main transcript's state.
func (t *Transcript) Forked(label string, tag []byte) *Transcript {
	clone := t.sponge.Clone()
	clone.MetaAd(label, tag)
	return &Transcript{sponge: clone}
}
