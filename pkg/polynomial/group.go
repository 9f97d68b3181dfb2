package polynomial

import "github.com/caitsith-go/caitsith/pkg/curve"

// GroupPolynomial is a coefficient vector of group points, the public
// (Feldman) commitment to a scalar Polynomial (spec.md §3 "Group
// polynomial").
type GroupPolynomial struct {
	group        curve.Curve
	coefficients []curve.Point
}

// NewGroupPolynomial wraps an explicit coefficient vector.
func NewGroupPolynomial(group curve.Curve, coefficients []curve.Point) *GroupPolynomial {
	return &GroupPolynomial{group: group, coefficients: coefficients}
}

// Len returns the number of coefficients (degree + 1).
func (p *GroupPolynomial) Len() int { return len(p.coefficients) }

// Coefficient returns the i-th coefficient point.
func (p *GroupPolynomial) Coefficient(i int) curve.Point { return p.coefficients[i] }

// SetConstant overwrites the degree-0 coefficient in place. Used in triple
// generation (spec.md §4.11 round 5) where the constant term of L·G is not
// known until the multiplication sub-protocol completes.
func (p *GroupPolynomial) SetConstant(v curve.Point) {
	p.coefficients[0] = v
}

// EvaluateZero is the fast path for F(0): just the constant coefficient.
func (p *GroupPolynomial) EvaluateZero() curve.Point {
	return p.coefficients[0]
}

// Evaluate computes F(x) = sum_i coefficients[i] * x^i via Horner's method
// in the group.
func (p *GroupPolynomial) Evaluate(x curve.Scalar) curve.Point {
	if x.IsZero() {
		return p.EvaluateZero()
	}
	acc := p.coefficients[len(p.coefficients)-1]
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		acc = x.Act(acc).Add(p.coefficients[i])
	}
	return acc
}

// Add returns p + q, coefficient-wise. The lengths may differ: the shorter
// polynomial is treated as having identity coefficients beyond its own.
func (p *GroupPolynomial) Add(q *GroupPolynomial) *GroupPolynomial {
	n := len(p.coefficients)
	if len(q.coefficients) > n {
		n = len(q.coefficients)
	}
	out := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		var a, b curve.Point
		if i < len(p.coefficients) {
			a = p.coefficients[i]
		} else {
			a = p.group.Identity()
		}
		if i < len(q.coefficients) {
			b = q.coefficients[i]
		} else {
			b = p.group.Identity()
		}
		out[i] = a.Add(b)
	}
	return &GroupPolynomial{group: p.group, coefficients: out}
}
