// Package curve abstracts the elliptic curve group and scalar field that the
// rest of the module is built on. Every cryptographic component in this
// repository is written against this interface so that the same protocol
// code can run over any curve that implements it.
package curve

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

// Curve names the group, its order's bit length, and constructs fresh
// scalars/points. NAME is mixed into every transcript as a domain
// separator (spec.md §6); BITS sizes the OT extension pipeline.
type Curve interface {
	Name() string
	Bits() int

	NewScalar() Scalar
	NewPoint() Point
	Generator() Point
	Identity() Point

	// SampleScalarConstantTime draws a uniform scalar consuming a fixed
	// number of bytes from rng, with no secret-dependent branching.
	SampleScalarConstantTime(rng io.Reader) Scalar

	// ScalarBytes is the fixed-width encoding length of a scalar.
	ScalarBytes() int
}

// Scalar is an element of the curve's prime order field.
type Scalar interface {
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Invert() (Scalar, error)
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar

	// IsOverHalfOrder reports whether this scalar is greater than half the
	// group order, used to normalize ECDSA signatures to their low-S form.
	IsOverHalfOrder() bool
	SetNat(*saferith.Nat) Scalar

	// Act returns scalar * point.
	Act(Point) Point
	// ActOnBase returns scalar * G.
	ActOnBase() Point

	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

// Point is an element of the curve's group.
type Point interface {
	Curve() Curve
	Add(Point) Point
	Negate() Point
	Equal(Point) bool
	IsIdentity() bool

	// XScalar returns the x-coordinate of the point reduced into the
	// scalar field, used to derive the ECDSA r value from the nonce point.
	XScalar() (Scalar, error)

	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

// ErrIdentity is returned where an operation requires a non-identity point
// or a non-zero scalar (e.g. computing XScalar of the identity, or
// inverting zero).
var ErrIdentity = fmt.Errorf("curve: operand is identity/zero")
