// Package polynomial implements the scalar and group polynomials of
// spec.md §3 ("Polynomial over scalars", "Group polynomial") used for
// Shamir secret sharing and its Feldman-style public commitment.
package polynomial

import (
	"io"

	"github.com/caitsith-go/caitsith/pkg/curve"
)

// Polynomial is a coefficient vector [a_0, ..., a_{t-1}] over the curve's
// scalar field, representing a degree < t polynomial.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// NewRandom samples a uniformly random polynomial of degree < degree+1
// (i.e. degree+1 coefficients), using constant-time scalar sampling.
func NewRandom(group curve.Curve, rng io.Reader, degree int) *Polynomial {
	coeffs := make([]curve.Scalar, degree+1)
	for i := range coeffs {
		coeffs[i] = group.SampleScalarConstantTime(rng)
	}
	return &Polynomial{group: group, coefficients: coeffs}
}

// ExtendRandom returns a polynomial of degree < degree with f(0) = constant
// and every other coefficient uniform, as spec.md §3 requires for
// secret-sharing a pre-existing value.
func ExtendRandom(group curve.Curve, rng io.Reader, constant curve.Scalar, degree int) *Polynomial {
	p := NewRandom(group, rng, degree-1)
	p.coefficients[0] = constant
	return p
}

// SetConstant overwrites the degree-0 coefficient in place.
func (p *Polynomial) SetConstant(v curve.Scalar) {
	p.coefficients[0] = v
}

// Degree returns the polynomial's degree (len(coefficients) - 1).
func (p *Polynomial) Degree() int { return len(p.coefficients) - 1 }

// EvaluateZero is the fast path for f(0): just the constant term.
func (p *Polynomial) EvaluateZero() curve.Scalar {
	return p.coefficients[0]
}

// Evaluate computes f(x) via Horner's method. Invariant:
// p.Evaluate(zero) == p.EvaluateZero() for the additive identity scalar.
func (p *Polynomial) Evaluate(x curve.Scalar) curve.Scalar {
	if x.IsZero() {
		return p.EvaluateZero()
	}
	acc := p.group.NewScalar().Set(p.coefficients[len(p.coefficients)-1])
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.coefficients[i])
	}
	return acc
}

// Add returns p + q. The degrees may differ: the shorter polynomial is
// treated as having zero coefficients beyond its own.
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	n := len(p.coefficients)
	if len(q.coefficients) > n {
		n = len(q.coefficients)
	}
	out := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		var a, b curve.Scalar
		if i < len(p.coefficients) {
			a = p.coefficients[i]
		} else {
			a = p.group.NewScalar()
		}
		if i < len(q.coefficients) {
			b = q.coefficients[i]
		} else {
			b = p.group.NewScalar()
		}
		out[i] = a.Add(b)
	}
	return &Polynomial{group: p.group, coefficients: out}
}

// Scale returns c * p.
func (p *Polynomial) Scale(c curve.Scalar) *Polynomial {
	out := make([]curve.Scalar, len(p.coefficients))
	for i, a := range p.coefficients {
		out[i] = a.Mul(c)
	}
	return &Polynomial{group: p.group, coefficients: out}
}

// Commit multiplies each coefficient by the curve generator, yielding the
// GroupPolynomial with coefficients [a_0 * G, ..., a_{t-1} * G].
func (p *Polynomial) Commit() *GroupPolynomial {
	out := make([]curve.Point, len(p.coefficients))
	for i, a := range p.coefficients {
		out[i] = a.ActOnBase()
	}
	return &GroupPolynomial{group: p.group, coefficients: out}
}
