package curve

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Secp256k1 is the curve used by Bitcoin/Ethereum-family ECDSA and is the
// reference curve for the concrete scenarios in spec.md §8.
type Secp256k1 struct{}

func (Secp256k1) Name() string { return "secp256k1" }
func (Secp256k1) Bits() int    { return 256 }

func (Secp256k1) NewScalar() Scalar {
	return &secp256k1Scalar{}
}

func (Secp256k1) NewPoint() Point {
	var p secp256k1.JacobianPoint
	p.X.SetInt(0)
	p.Y.SetInt(0)
	p.Z.SetInt(0)
	return &secp256k1Point{p: p}
}

func (c Secp256k1) Generator() Point {
	var p secp256k1.JacobianPoint
	var one secp256k1.ModNScalar
	one.SetInt(1)
	secp256k1.ScalarBaseMultNonConst(&one, &p)
	p.ToAffine()
	return &secp256k1Point{p: p}
}

func (c Secp256k1) Identity() Point {
	return c.NewPoint()
}

func (Secp256k1) ScalarBytes() int { return 32 }

// SampleScalarConstantTime draws exactly 40 bytes (256 bits + 64 bits of
// extra entropy for negligible modular bias) and reduces them into the
// scalar field without any rejection sampling, so the number of bytes
// consumed from rng never depends on secret state.
func (c Secp256k1) SampleScalarConstantTime(rng io.Reader) Scalar {
	buf := make([]byte, 40)
	if _, err := io.ReadFull(rng, buf); err != nil {
		panic(fmt.Sprintf("curve: failed to read randomness: %v", err))
	}
	nat := new(saferith.Nat).SetBytes(buf)
	s := &secp256k1Scalar{}
	s.SetNat(nat)
	return s
}

// secp256k1Scalar wraps decred's constant-time modular scalar type.
type secp256k1Scalar struct {
	s secp256k1.ModNScalar
}

func (s *secp256k1Scalar) Curve() Curve { return Secp256k1{} }

func (s *secp256k1Scalar) Add(other Scalar) Scalar {
	o := other.(*secp256k1Scalar)
	var out secp256k1Scalar
	out.s.Set(&s.s)
	out.s.Add(&o.s)
	return &out
}

func (s *secp256k1Scalar) Sub(other Scalar) Scalar {
	return s.Add(other.Negate())
}

func (s *secp256k1Scalar) Mul(other Scalar) Scalar {
	o := other.(*secp256k1Scalar)
	var out secp256k1Scalar
	out.s.Set(&s.s)
	out.s.Mul(&o.s)
	return &out
}

func (s *secp256k1Scalar) Negate() Scalar {
	var out secp256k1Scalar
	out.s.Set(&s.s)
	out.s.Negate()
	return &out
}

func (s *secp256k1Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrIdentity
	}
	var out secp256k1Scalar
	out.s.Set(&s.s)
	out.s.InverseNonConst()
	return &out, nil
}

func (s *secp256k1Scalar) Equal(other Scalar) bool {
	o, ok := other.(*secp256k1Scalar)
	if !ok {
		return false
	}
	return s.s.Equals(&o.s)
}

func (s *secp256k1Scalar) IsZero() bool {
	return s.s.IsZero()
}

func (s *secp256k1Scalar) IsOverHalfOrder() bool {
	return s.s.IsOverHalfOrder()
}

func (s *secp256k1Scalar) Set(other Scalar) Scalar {
	o := other.(*secp256k1Scalar)
	s.s.Set(&o.s)
	return s
}

// SetNat reduces an arbitrary-width natural number modulo the group order.
// The saferith representation keeps the reduction branch-free on the
// natural's announced bit length, satisfying the constant-time sampling
// requirement of spec.md §5/§9.
func (s *secp256k1Scalar) SetNat(n *saferith.Nat) Scalar {
	b := new(saferith.Nat).Mod(n, secp256k1Order).Bytes()
	var buf [32]byte
	copy(buf[32-len(b):], b)
	s.s.SetBytes(&buf)
	return s
}

// secp256k1Order is the group order n as a saferith modulus.
var secp256k1Order = saferith.ModulusFromBytes(secp256k1.Params().N.Bytes())

func (s *secp256k1Scalar) Act(p Point) Point {
	pt := p.(*secp256k1Point)
	var out secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.s, &pt.p, &out)
	out.ToAffine()
	return &secp256k1Point{p: out}
}

func (s *secp256k1Scalar) ActOnBase() Point {
	var out secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s.s, &out)
	out.ToAffine()
	return &secp256k1Point{p: out}
}

func (s *secp256k1Scalar) MarshalBinary() ([]byte, error) {
	b := s.s.Bytes()
	return b[:], nil
}

func (s *secp256k1Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("curve: scalar must be 32 bytes, got %d", len(data))
	}
	var buf [32]byte
	copy(buf[:], data)
	overflow := s.s.SetBytes(&buf)
	if overflow != 0 {
		return fmt.Errorf("curve: scalar encoding out of range")
	}
	return nil
}

// secp256k1Point wraps a decred affine-reduced Jacobian point.
type secp256k1Point struct {
	p secp256k1.JacobianPoint
}

func (p *secp256k1Point) Curve() Curve { return Secp256k1{} }

func (p *secp256k1Point) Add(other Point) Point {
	o := other.(*secp256k1Point)
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.p, &o.p, &out)
	out.ToAffine()
	return &secp256k1Point{p: out}
}

func (p *secp256k1Point) Negate() Point {
	var out secp256k1.JacobianPoint
	out.Set(&p.p)
	out.Y.Negate(1)
	out.Y.Normalize()
	out.ToAffine()
	return &secp256k1Point{p: out}
}

func (p *secp256k1Point) Equal(other Point) bool {
	o, ok := other.(*secp256k1Point)
	if !ok {
		return false
	}
	if p.IsIdentity() && o.IsIdentity() {
		return true
	}
	return p.p.X.Equals(&o.p.X) && p.p.Y.Equals(&o.p.Y) && p.IsIdentity() == o.IsIdentity()
}

func (p *secp256k1Point) IsIdentity() bool {
	return (p.p.X.IsZero() && p.p.Y.IsZero()) || p.p.Z.IsZero()
}

func (p *secp256k1Point) XScalar() (Scalar, error) {
	if p.IsIdentity() {
		return nil, ErrIdentity
	}
	xBytes := p.p.X.Bytes()
	nat := new(saferith.Nat).SetBytes(xBytes[:])
	s := &secp256k1Scalar{}
	s.SetNat(nat)
	return s, nil
}

func (p *secp256k1Point) MarshalBinary() ([]byte, error) {
	if p.IsIdentity() {
		return []byte{0x00}, nil
	}
	x := p.p.X.Bytes()
	y := p.p.Y.Bytes()
	out := make([]byte, 33)
	if y[31]&1 == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	copy(out[1:], x[:])
	return out, nil
}

func (p *secp256k1Point) UnmarshalBinary(data []byte) error {
	if len(data) == 1 && data[0] == 0x00 {
		p.p.X.SetInt(0)
		p.p.Y.SetInt(0)
		p.p.Z.SetInt(0)
		return nil
	}
	if len(data) != 33 {
		return fmt.Errorf("curve: compressed point must be 33 bytes, got %d", len(data))
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("curve: invalid point encoding: %w", err)
	}
	pub.AsJacobian(&p.p)
	return nil
}
