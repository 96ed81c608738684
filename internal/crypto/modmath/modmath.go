// Package modmath provides the prime-field helpers used by the curve
// arithmetic: modular inverse and modular square root.
package modmath

import (
	"errors"
	"math/big"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// ErrNoInverse is returned when a value has no inverse modulo m,
// i.e. gcd(a, m) != 1.
var ErrNoInverse = errors.New("modmath: value has no modular inverse")

// ErrInvalidModulus is returned for a modulus that is not positive.
var ErrInvalidModulus = errors.New("modmath: modulus must be positive")

// ModInverse returns the unique x in [0, m) with a*x ≡ 1 (mod m).
// a may be negative or larger than m; it is reduced first.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	r := new(big.Int).Mod(a, m)
	if r.Sign() == 0 {
		return nil, ErrNoInverse
	}

	// Extended Euclid: gcd = x*r + y*m
	x := new(big.Int)
	gcd := new(big.Int).GCD(x, nil, r, m)
	if gcd.Cmp(one) != 0 {
		return nil, ErrNoInverse
	}
	return x.Mod(x, m), nil
}

// ModSqrt returns some y with y^2 ≡ a (mod p) for a prime p.
// The second return value is false when a is a quadratic non-residue or
// p is below 2 or even and not 2.
// Only one of the roots {y, p-y} is returned; callers must not rely on
// which one.
func ModSqrt(a, p *big.Int) (*big.Int, bool) {
	if p.Cmp(two) < 0 {
		return nil, false
	}
	r := new(big.Int).Mod(a, p)
	if r.Sign() == 0 {
		return new(big.Int), true
	}
	// every residue mod 2 is its own root
	if p.Cmp(two) == 0 {
		return r, true
	}
	if p.Bit(0) == 0 {
		return nil, false
	}
	if Legendre(r, p) != 1 {
		return nil, false
	}

	// p ≡ 3 (mod 4): y = a^((p+1)/4)
	if new(big.Int).Mod(p, four).Cmp(three) == 0 {
		e := new(big.Int).Add(p, one)
		e.Rsh(e, 2)
		return new(big.Int).Exp(r, e, p), true
	}
	return tonelliShanks(r, p)
}

// Legendre returns the Legendre symbol (a|p) for an odd prime p:
// 0 if a ≡ 0, 1 for a quadratic residue and -1 otherwise.
func Legendre(a, p *big.Int) int {
	r := new(big.Int).Mod(a, p)
	if r.Sign() == 0 {
		return 0
	}
	// Euler's criterion: a^((p-1)/2)
	e := new(big.Int).Sub(p, one)
	e.Rsh(e, 1)
	v := new(big.Int).Exp(r, e, p)
	if v.Cmp(one) == 0 {
		return 1
	}
	return -1
}

// tonelliShanks handles the general odd-prime case. r must be a non-zero
// quadratic residue mod p.
func tonelliShanks(r, p *big.Int) (*big.Int, bool) {
	// p-1 = q * 2^s with q odd
	q := new(big.Int).Sub(p, one)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}

	// any non-residue z
	z := new(big.Int).Set(two)
	for ; z.Cmp(p) < 0; z.Add(z, one) {
		if Legendre(z, p) == -1 {
			break
		}
	}
	if z.Cmp(p) >= 0 {
		return nil, false
	}

	c := new(big.Int).Exp(z, q, p)
	e := new(big.Int).Add(q, one)
	e.Rsh(e, 1)
	x := new(big.Int).Exp(r, e, p)
	t := new(big.Int).Exp(r, q, p)
	m := s

	for t.Cmp(one) != 0 {
		// least i in (0, m) with t^(2^i) = 1
		i := 1
		t2 := new(big.Int).Mul(t, t)
		t2.Mod(t2, p)
		for ; i < m; i++ {
			if t2.Cmp(one) == 0 {
				break
			}
			t2.Mul(t2, t2)
			t2.Mod(t2, p)
		}
		if i == m {
			return nil, false
		}

		// b = c^(2^(m-i-1))
		b := new(big.Int).Set(c)
		for j := 0; j < m-i-1; j++ {
			b.Mul(b, b)
			b.Mod(b, p)
		}

		x.Mul(x, b)
		x.Mod(x, p)
		c.Mul(b, b)
		c.Mod(c, p)
		t.Mul(t, c)
		t.Mod(t, p)
		m = i
	}
	return x, true
}
