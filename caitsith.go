// Package caitsith is the top-level API of this module (spec.md §4.15
// C19): thin, validating constructors wiring protocols/keyshare,
// protocols/triple, protocols/presign, and protocols/sign into a
// runtime.Instance, plus the long-term Config record spec.md §3
// "Lifecycle" requires a party's private share to persist across many
// signatures.
//
// Wiring style grounded on protocols/lss/lss.go's thin Keygen/Refresh/
// Reshare/Sign constructors and IsCompatibleForSigning; Config grounded
// on protocols/lss/config/config.go, adapted from a per-party public-key
// map keyed by arbitrary metadata into the flat group/threshold/public
// key model spec.md's data model actually describes.
package caitsith

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/caitsith-go/caitsith/pkg/codec"
	"github.com/caitsith-go/caitsith/pkg/curve"
	"github.com/caitsith-go/caitsith/pkg/party"
	"github.com/caitsith-go/caitsith/pkg/polynomial"
	"github.com/caitsith-go/caitsith/pkg/runtime"
	"github.com/caitsith-go/caitsith/protocols/keyshare"
	"github.com/caitsith-go/caitsith/protocols/presign"
	"github.com/caitsith-go/caitsith/protocols/sign"
	"github.com/caitsith-go/caitsith/protocols/triple"
)

// PublicShare is one participant's public key-share point, kept so a
// Config can reconstruct the group public key via Lagrange interpolation
// without anyone's private share.
type PublicShare struct {
	Point curve.Point
}

// Config is the long-term, cbor round-trippable record of a party's
// share of a threshold key: who it is, the group and threshold it was
// generated under, its own private share, and every participant's
// public share.
type Config struct {
	ID           party.ID
	Group        curve.Curve
	Threshold    int
	Private      curve.Scalar
	PublicKey    curve.Point
	PublicShares map[party.ID]*PublicShare
}

// EmptyConfig returns a Config with only Group set, ready to receive the
// result of UnmarshalBinary.
func EmptyConfig(group curve.Curve) *Config {
	return &Config{Group: group, PublicShares: make(map[party.ID]*PublicShare)}
}

func newConfig(group curve.Curve, self party.ID, threshold int, share *keyshare.Share) *Config {
	shares := make(map[party.ID]*PublicShare, len(share.PublicShares))
	for id, p := range share.PublicShares {
		shares[id] = &PublicShare{Point: p}
	}
	return &Config{
		ID:           self,
		Group:        group,
		Threshold:    threshold,
		Private:      share.Private,
		PublicKey:    share.Public,
		PublicShares: shares,
	}
}

// PartyIDs returns the sorted participant list this config was
// generated against.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.PublicShares))
	for id := range c.PublicShares {
		ids = append(ids, id)
	}
	return party.NewIDSlice(ids)
}

// ReconstructPublicKey recomputes the group public key from any
// threshold-sized subset of PublicShares via Lagrange interpolation,
// independent of the cached PublicKey field.
func (c *Config) ReconstructPublicKey() (curve.Point, error) {
	ids := c.PartyIDs()
	if ids.Len() < c.Threshold {
		return nil, fmt.Errorf("caitsith: config has %d public shares, threshold is %d", ids.Len(), c.Threshold)
	}
	subset := party.NewIDSlice(ids[:c.Threshold])
	lagrange := subset.AllLagrange(c.Group)
	sum := c.Group.Identity()
	for _, id := range subset {
		sum = sum.Add(lagrange[id].Act(c.PublicShares[id].Point))
	}
	return sum, nil
}

// Validate checks that a Config is well-formed: every field required to
// sign with it is present and self-consistent.
func (c *Config) Validate() error {
	if c.Group == nil {
		return fmt.Errorf("caitsith: config missing group")
	}
	if c.Threshold < 1 {
		return fmt.Errorf("caitsith: config has invalid threshold %d", c.Threshold)
	}
	if c.Private == nil {
		return fmt.Errorf("caitsith: config missing private share")
	}
	if c.PublicKey == nil {
		return fmt.Errorf("caitsith: config missing public key")
	}
	if len(c.PublicShares) < c.Threshold {
		return fmt.Errorf("caitsith: config has %d public shares, threshold is %d", len(c.PublicShares), c.Threshold)
	}
	mine, ok := c.PublicShares[c.ID]
	if !ok {
		return fmt.Errorf("caitsith: config missing own public share")
	}
	if !mine.Point.Equal(c.Private.ActOnBase()) {
		return fmt.Errorf("caitsith: own public share does not match private share")
	}
	return nil
}

type configWire struct {
	ID           uint32
	GroupName    string
	Threshold    int
	Private      []byte
	PublicShares map[uint32][]byte
}

// MarshalBinary encodes the config as canonical cbor, per spec.md §6's
// codec (pkg/codec), the same wire encoding every protocol message uses.
func (c *Config) MarshalBinary() ([]byte, error) {
	w := configWire{
		ID:           uint32(c.ID),
		GroupName:    c.Group.Name(),
		Threshold:    c.Threshold,
		PublicShares: make(map[uint32][]byte, len(c.PublicShares)),
	}
	priv, err := c.Private.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w.Private = priv
	for id, p := range c.PublicShares {
		b, err := p.Point.MarshalBinary()
		if err != nil {
			return nil, err
		}
		w.PublicShares[uint32(id)] = b
	}
	return codec.Encode(&w)
}

// UnmarshalBinary decodes a Config previously written by MarshalBinary.
// c.Group must already be set (e.g. via EmptyConfig) and must match the
// encoded group name.
func (c *Config) UnmarshalBinary(data []byte) error {
	if c.Group == nil {
		return fmt.Errorf("caitsith: UnmarshalBinary requires Group to already be set")
	}
	var w configWire
	if err := codec.Decode(data, &w); err != nil {
		return err
	}
	if w.GroupName != c.Group.Name() {
		return fmt.Errorf("caitsith: config encodes group %q, expected %q", w.GroupName, c.Group.Name())
	}
	c.ID = party.ID(w.ID)
	c.Threshold = w.Threshold
	priv := c.Group.NewScalar()
	if err := priv.UnmarshalBinary(w.Private); err != nil {
		return err
	}
	c.Private = priv
	c.PublicShares = make(map[party.ID]*PublicShare, len(w.PublicShares))
	for id, b := range w.PublicShares {
		p := c.Group.NewPoint()
		if err := p.UnmarshalBinary(b); err != nil {
			return err
		}
		c.PublicShares[party.ID(id)] = &PublicShare{Point: p}
	}
	pub, err := c.ReconstructPublicKey()
	if err != nil {
		return err
	}
	c.PublicKey = pub
	return nil
}

// IsCompatibleForSigning reports whether two configs describe shares of
// the same threshold key: same group, same threshold, same public key.
// Simplified from protocols/lss/lss.go's version (which also compared a
// "generation" counter): spec.md's data model has no resharing
// generation, only a group/threshold/public-key triple.
func IsCompatibleForSigning(c1, c2 *Config) bool {
	if c1.Group.Name() != c2.Group.Name() {
		return false
	}
	if c1.Threshold != c2.Threshold {
		return false
	}
	return c1.PublicKey.Equal(c2.PublicKey)
}

// Keygen starts a fresh distributed key generation (spec.md §4.12
// Keygen), returning a *Config once the instance completes.
func Keygen(sessionID []byte, group curve.Curve, self party.ID, participants party.IDSlice, threshold int) (*runtime.Instance, error) {
	if threshold < 1 || threshold > participants.Len() {
		return nil, runtime.NewBadParameters("caitsith: invalid threshold %d for %d parties", threshold, participants.Len())
	}
	if !participants.Contains(self) {
		return nil, runtime.NewBadParameters("caitsith: self %d not in participant list", self)
	}
	others := participants.Other(self)
	return runtime.Start(sessionID, self, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
		share, err := keyshare.Keygen(ctx, others, group, threshold, 0)
		if err != nil {
			return nil, err
		}
		return newConfig(group, self, threshold, share), nil
	}), nil
}

// Refresh re-randomizes c's share into a new Config, leaving c unchanged,
// without changing the public key, participant set, or threshold
// (spec.md §4.12 Refresh).
func Refresh(sessionID []byte, c *Config) (*runtime.Instance, error) {
	if err := c.Validate(); err != nil {
		return nil, runtime.NewBadParameters("caitsith: %v", err)
	}
	old := &keyshare.Share{Private: c.Private, Public: c.PublicKey, Participants: c.PartyIDs(), Threshold: c.Threshold}
	others := old.Participants.Other(c.ID)
	group := c.Group
	return runtime.Start(sessionID, c.ID, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
		share, err := keyshare.Refresh(ctx, others, group, c.Threshold, old, 0)
		if err != nil {
			return nil, err
		}
		return newConfig(group, c.ID, c.Threshold, share), nil
	}), nil
}

// Reshare moves c's share to a new participant set and/or threshold
// (spec.md §4.12 Reshare). A party joining the new committee with no
// prior share passes a nil Config and self/group/oldParticipants/
// oldThreshold/oldPublicKey explicitly.
func Reshare(sessionID []byte, group curve.Curve, self party.ID, c *Config, oldParticipants party.IDSlice, oldThreshold int, oldPublicKey curve.Point, newParticipants party.IDSlice, newThreshold int) (*runtime.Instance, error) {
	if newThreshold < 1 || newThreshold > newParticipants.Len() {
		return nil, runtime.NewBadParameters("caitsith: invalid new threshold %d for %d parties", newThreshold, newParticipants.Len())
	}
	if !newParticipants.Contains(self) {
		return nil, runtime.NewBadParameters("caitsith: self %d not in new participant list", self)
	}
	var old *keyshare.Share
	if c != nil {
		if err := c.Validate(); err != nil {
			return nil, runtime.NewBadParameters("caitsith: %v", err)
		}
		old = &keyshare.Share{Private: c.Private, Public: c.PublicKey, Participants: c.PartyIDs(), Threshold: c.Threshold}
	}
	others := newParticipants.Other(self)
	return runtime.Start(sessionID, self, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
		share, err := keyshare.Reshare(ctx, others, group, oldParticipants, oldThreshold, old, oldPublicKey, newThreshold, 0)
		if err != nil {
			return nil, err
		}
		return newConfig(group, self, newThreshold, share), nil
	}), nil
}

// Sign produces a signature over m (already reduced into the scalar
// field via protocols/sign.HashMessage) using c's share, generating a
// fresh one-shot triple pair and presignature internally (spec.md §4.13
// "Presign is one-shot" forbids reusing a presignature, so Sign never
// exposes one to the caller).
func Sign(sessionID []byte, c *Config, m curve.Scalar) (*runtime.Instance, error) {
	if err := c.Validate(); err != nil {
		return nil, runtime.NewBadParameters("caitsith: %v", err)
	}
	group := c.Group
	threshold := c.Threshold
	share := &keyshare.Share{Private: c.Private, Public: c.PublicKey, Participants: c.PartyIDs(), Threshold: threshold}
	others := share.Participants.Other(c.ID)
	return runtime.Start(sessionID, c.ID, others, func(ctx *runtime.TaskCtx) (interface{}, error) {
		triple0, pub0, err := triple.Generate(ctx, others, group, threshold, 0)
		if err != nil {
			return nil, err
		}
		triple1, pub1, err := triple.Generate(ctx, others, group, threshold, 1)
		if err != nil {
			return nil, err
		}
		pre, err := presign.Generate(ctx, others, group, threshold, triple0, pub0, triple1, pub1, share, 2)
		if err != nil {
			return nil, err
		}
		return sign.Generate(ctx, others, group, threshold, c.PublicKey, pre, m, 3)
	}), nil
}

// DealKeys is a trusted-dealer test helper (spec.md §8 "the trusted deal
// helper"): it centrally samples one threshold polynomial and hands out
// already-split Configs, skipping the interactive keyshare protocol
// entirely. Grounded on protocols/lss/dealer's dealer role, adapted from
// a live re-sharing network participant into a synchronous, math-only
// test fixture generator; x/sync/errgroup is unnecessary here since a
// single polynomial sample is already cheaper than spawning goroutines
// per party, so it is reserved for DealTriples below where dealing runs
// n independent instances.
func DealKeys(group curve.Curve, ids party.IDSlice, threshold int) (map[party.ID]*Config, error) {
	if threshold < 1 || threshold > ids.Len() {
		return nil, runtime.NewBadParameters("caitsith: invalid threshold %d for %d parties", threshold, ids.Len())
	}
	f := polynomial.NewRandom(group, rand.Reader, threshold-1)
	fG := f.Commit()
	publicKey := fG.EvaluateZero()

	shares := make(map[party.ID]*PublicShare, ids.Len())
	for _, id := range ids {
		shares[id] = &PublicShare{Point: fG.Evaluate(id.Scalar(group))}
	}

	configs := make(map[party.ID]*Config, ids.Len())
	for _, id := range ids {
		configs[id] = &Config{
			ID:           id,
			Group:        group,
			Threshold:    threshold,
			Private:      f.Evaluate(id.Scalar(group)),
			PublicKey:    publicKey,
			PublicShares: shares,
		}
	}
	return configs, nil
}

// DealTriples is a trusted-dealer test helper producing n independently
// dealt Beaver triples (spec.md §4.11's data model) per party, again
// skipping the interactive committed-triple protocol. Each of the n
// triples is dealt concurrently via errgroup, grounded on
// protocols/lss/dealer's per-generation concurrent share computation and
// spec.md §4.11's batch variant (generate_triple_many<N>).
func DealTriples(group curve.Curve, ids party.IDSlice, threshold int, n int) (map[party.ID][]*triple.Share, []*triple.Public, error) {
	if threshold < 1 || threshold > ids.Len() {
		return nil, nil, runtime.NewBadParameters("caitsith: invalid threshold %d for %d parties", threshold, ids.Len())
	}

	shares := make(map[party.ID][]*triple.Share, ids.Len())
	for _, id := range ids {
		shares[id] = make([]*triple.Share, n)
	}
	pubs := make([]*triple.Public, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			a0 := group.SampleScalarConstantTime(rand.Reader)
			b0 := group.SampleScalarConstantTime(rand.Reader)
			c0 := a0.Mul(b0)
			aPoly := polynomial.ExtendRandom(group, rand.Reader, a0, threshold)
			bPoly := polynomial.ExtendRandom(group, rand.Reader, b0, threshold)
			cPoly := polynomial.ExtendRandom(group, rand.Reader, c0, threshold)

			pubs[i] = &triple.Public{
				A: a0.ActOnBase(), B: b0.ActOnBase(), C: c0.ActOnBase(),
				Participants: ids, Threshold: threshold,
			}
			for _, id := range ids {
				x := id.Scalar(group)
				shares[id][i] = &triple.Share{A: aPoly.Evaluate(x), B: bPoly.Evaluate(x), C: cPoly.Evaluate(x)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return shares, pubs, nil
}
