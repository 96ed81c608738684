package curves

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrPointNotOnCurve is returned when coordinates do not satisfy the curve
// equation, or when an operation receives a point from another curve.
var ErrPointNotOnCurve = errors.New("curves: point is not on the curve")

// Point represents a point on an elliptic curve, or the point at infinity.
// Points are immutable: every operation returns a new Point.
type Point struct {
	x, y  *big.Int // both nil for the point at infinity
	curve Curve
}

// X returns a copy of the x coordinate, or nil for the point at infinity.
func (p *Point) X() *big.Int {
	if p.x == nil {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the y coordinate, or nil for the point at infinity.
func (p *Point) Y() *big.Int {
	if p.y == nil {
		return nil
	}
	return new(big.Int).Set(p.y)
}

// Curve returns the curve the point belongs to.
func (p *Point) Curve() Curve {
	return p.curve
}

// IsInfinity reports whether p is the identity element.
func (p *Point) IsInfinity() bool {
	return p.x == nil && p.y == nil
}

// Equal reports whether p and q are the same point on the same curve.
// The point at infinity only equals the point at infinity of the same curve.
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.curve == nil || q.curve == nil {
		return false
	}
	if !p.curve.Params().Equal(q.curve.Params()) {
		return false
	}
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

// Neg returns -p.
func (p *Point) Neg() (*Point, error) {
	if p.curve == nil {
		return nil, ErrPointNotOnCurve
	}
	return p.curve.Neg(p)
}

// Add returns p + q.
func (p *Point) Add(q *Point) (*Point, error) {
	if p.curve == nil {
		return nil, ErrPointNotOnCurve
	}
	return p.curve.Add(p, q)
}

// Sub returns p - q.
func (p *Point) Sub(q *Point) (*Point, error) {
	if p.curve == nil {
		return nil, ErrPointNotOnCurve
	}
	return p.curve.Sub(p, q)
}

// ScalarMult returns k * p.
func (p *Point) ScalarMult(k *big.Int) (*Point, error) {
	if p.curve == nil {
		return nil, ErrPointNotOnCurve
	}
	return p.curve.ScalarMult(k, p)
}

func (p *Point) String() string {
	name := "<nil>"
	if p.curve != nil {
		name = p.curve.Params().Name
	}
	if p.IsInfinity() {
		return fmt.Sprintf("Point(At infinity, Curve=%s)", name)
	}
	return fmt.Sprintf("Point(X=%s, Y=%s, Curve=%s)", p.x, p.y, name)
}
