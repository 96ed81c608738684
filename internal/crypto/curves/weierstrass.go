package curves

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/modmath"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// ErrInvariantViolation is returned when the group law hits a zero
// denominator that the case analysis should have excluded.
var ErrInvariantViolation = errors.New("curves: group law invariant violated")

// ShortWeierstrass implements the group law of y^2 = x^3 + a*x + b over F_p
// in affine coordinates. The arithmetic is not constant-time.
type ShortWeierstrass struct {
	params *CurveParams
}

var _ Curve = (*ShortWeierstrass)(nil)

// NewShortWeierstrass validates params and returns the curve they describe.
func NewShortWeierstrass(params *CurveParams) (*ShortWeierstrass, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: nil parameters", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ShortWeierstrass{params: params}, nil
}

func mustShortWeierstrass(params *CurveParams) *ShortWeierstrass {
	c, err := NewShortWeierstrass(params)
	if err != nil {
		panic(fmt.Sprintf("curve %s: %v", params.Name, err))
	}
	return c
}

func (c *ShortWeierstrass) Params() *CurveParams {
	return c.params
}

func (c *ShortWeierstrass) Infinity() *Point {
	return &Point{curve: c}
}

func (c *ShortWeierstrass) Generator() *Point {
	return c.point(c.params.Gx, c.params.Gy)
}

func (c *ShortWeierstrass) NewPoint(x, y *big.Int) (*Point, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("%w: missing coordinate", ErrPointNotOnCurve)
	}
	if !c.inField(x) || !c.inField(y) {
		return nil, fmt.Errorf("%w: coordinate outside [0, p) on %s", ErrPointNotOnCurve, c.params.Name)
	}
	if !satisfies(c.params, x, y) {
		return nil, fmt.Errorf("%w: (%s, %s) on %s", ErrPointNotOnCurve, x, y, c.params.Name)
	}
	return c.point(x, y), nil
}

func (c *ShortWeierstrass) inField(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(c.params.P) < 0
}

// point builds a point without checking the curve equation. Only used for
// values produced by the group law itself.
func (c *ShortWeierstrass) point(x, y *big.Int) *Point {
	return &Point{
		x:     new(big.Int).Set(x),
		y:     new(big.Int).Set(y),
		curve: c,
	}
}

// satisfies checks y^2 ≡ x^3 + a*x + b (mod p).
func satisfies(params *CurveParams, x, y *big.Int) bool {
	left := new(big.Int).Mul(y, y)
	right := new(big.Int).Mul(x, x)
	right.Mul(right, x)
	ax := new(big.Int).Mul(params.A, x)
	right.Add(right, ax)
	right.Add(right, params.B)
	left.Sub(left, right)
	return left.Mod(left, params.P).Sign() == 0
}

func (c *ShortWeierstrass) IsOnCurve(p *Point) bool {
	if p == nil || p.curve == nil {
		return false
	}
	if !p.curve.Params().Equal(c.params) {
		return false
	}
	if p.IsInfinity() {
		return true
	}
	if p.x == nil || p.y == nil {
		return false
	}
	return satisfies(c.params, p.x, p.y)
}

func (c *ShortWeierstrass) check(points ...*Point) error {
	for _, p := range points {
		if !c.IsOnCurve(p) {
			return fmt.Errorf("%w: %v", ErrPointNotOnCurve, p)
		}
	}
	return nil
}

func (c *ShortWeierstrass) Neg(p *Point) (*Point, error) {
	if err := c.check(p); err != nil {
		return nil, err
	}
	return c.neg(p), nil
}

func (c *ShortWeierstrass) neg(p *Point) *Point {
	if p.IsInfinity() {
		return c.Infinity()
	}
	y := new(big.Int).Neg(p.y)
	return c.point(p.x, y.Mod(y, c.params.P))
}

func (c *ShortWeierstrass) Add(p, q *Point) (*Point, error) {
	if err := c.check(p, q); err != nil {
		return nil, err
	}
	return c.add(p, q)
}

func (c *ShortWeierstrass) add(p, q *Point) (*Point, error) {
	if p.IsInfinity() {
		return q, nil
	}
	if q.IsInfinity() {
		return p, nil
	}
	if p.Equal(q) {
		return c.double(p)
	}
	if p.Equal(c.neg(q)) {
		return c.Infinity(), nil
	}

	// s = (yP - yQ) / (xP - xQ)
	dx := new(big.Int).Sub(p.x, q.x)
	inv, err := modmath.ModInverse(dx, c.params.P)
	if err != nil {
		return nil, fmt.Errorf("%w: chord slope: %w", ErrInvariantViolation, err)
	}
	s := new(big.Int).Sub(p.y, q.y)
	s.Mul(s, inv)
	s.Mod(s, c.params.P)

	// xR = s^2 - xP - xQ
	xr := new(big.Int).Mul(s, s)
	xr.Sub(xr, p.x)
	xr.Sub(xr, q.x)
	xr.Mod(xr, c.params.P)

	return c.reflect(p, s, xr), nil
}

func (c *ShortWeierstrass) Double(p *Point) (*Point, error) {
	if err := c.check(p); err != nil {
		return nil, err
	}
	return c.double(p)
}

func (c *ShortWeierstrass) double(p *Point) (*Point, error) {
	if p.IsInfinity() {
		return c.Infinity(), nil
	}
	// vertical tangent: p has order 2
	if p.y.Sign() == 0 {
		return c.Infinity(), nil
	}

	// s = (3 * xP^2 + a) / (2 * yP)
	den := new(big.Int).Mul(two, p.y)
	inv, err := modmath.ModInverse(den, c.params.P)
	if err != nil {
		return nil, fmt.Errorf("%w: tangent slope: %w", ErrInvariantViolation, err)
	}
	s := new(big.Int).Mul(p.x, p.x)
	s.Mul(s, three)
	s.Add(s, c.params.A)
	s.Mul(s, inv)
	s.Mod(s, c.params.P)

	// xR = s^2 - 2 * xP
	xr := new(big.Int).Mul(s, s)
	xr.Sub(xr, new(big.Int).Mul(two, p.x))
	xr.Mod(xr, c.params.P)

	return c.reflect(p, s, xr), nil
}

// reflect computes yR = yP + s * (xR - xP) and returns -(xR, yR). The line
// through the operands meets the curve at (xR, yR); the sum is its mirror.
func (c *ShortWeierstrass) reflect(p *Point, s, xr *big.Int) *Point {
	yr := new(big.Int).Sub(xr, p.x)
	yr.Mul(yr, s)
	yr.Add(yr, p.y)
	yr.Mod(yr, c.params.P)
	return c.neg(&Point{x: xr, y: yr, curve: c})
}

func (c *ShortWeierstrass) Sub(p, q *Point) (*Point, error) {
	if err := c.check(p, q); err != nil {
		return nil, err
	}
	return c.add(p, c.neg(q))
}

// ScalarMult computes k * p with right-to-left double-and-add. Negative k
// multiplies by |k| and negates the result.
func (c *ShortWeierstrass) ScalarMult(k *big.Int, p *Point) (*Point, error) {
	if err := c.check(p); err != nil {
		return nil, err
	}
	if p.IsInfinity() || k.Sign() == 0 {
		return c.Infinity(), nil
	}

	d := new(big.Int).Abs(k)
	var res *Point
	tmp := p
	var err error
	for i := 0; i < d.BitLen(); i++ {
		if d.Bit(i) == 1 {
			if res == nil {
				res = tmp
			} else if res, err = c.add(res, tmp); err != nil {
				return nil, err
			}
		}
		if i == d.BitLen()-1 {
			break
		}
		if tmp, err = c.double(tmp); err != nil {
			return nil, err
		}
	}

	if k.Sign() < 0 {
		return c.neg(res), nil
	}
	return res, nil
}

func (c *ShortWeierstrass) ScalarBaseMult(k *big.Int) (*Point, error) {
	return c.ScalarMult(k, c.Generator())
}

func (c *ShortWeierstrass) NewScalar(random io.Reader) (*big.Int, error) {
	return newScalar(random, c.params.N)
}
