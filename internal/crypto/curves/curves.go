package curves

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	CurveTypeSecp192k1 = "secp192k1"
	CurveTypeSecp224k1 = "secp224k1"
	CurveTypeSecp256k1 = "secp256k1"

	// DefaultCurve is the curve used when none is configured.
	DefaultCurve = CurveTypeSecp256k1
)

var (
	ErrUnknownCurve  = errors.New("curves: unknown curve")
	ErrInvalidParams = errors.New("curves: invalid curve parameters")
)

// Curve defines the group operations of an elliptic curve needed by the
// ElGamal cipher. All operations are pure: operands are never modified and
// every result is a new Point.
type Curve interface {
	// Params returns the curve parameters.
	Params() *CurveParams

	// Infinity returns the identity element.
	Infinity() *Point

	// Generator returns the base point G.
	Generator() *Point

	// NewPoint returns the affine point (x, y), or ErrPointNotOnCurve.
	NewPoint(x, y *big.Int) (*Point, error)

	// IsOnCurve reports whether p belongs to this curve.
	IsOnCurve(p *Point) bool

	// Neg returns -p.
	Neg(p *Point) (*Point, error)

	// Add returns p + q.
	Add(p, q *Point) (*Point, error)

	// Sub returns p - q.
	Sub(p, q *Point) (*Point, error)

	// Double returns 2 * p.
	Double(p *Point) (*Point, error)

	// ScalarMult returns k * p. k may be negative or zero.
	ScalarMult(k *big.Int, p *Point) (*Point, error)

	// ScalarBaseMult returns k * G.
	ScalarBaseMult(k *big.Int) (*Point, error)

	// NewScalar draws a scalar uniformly from [1, n-1].
	NewScalar(random io.Reader) (*big.Int, error)

	// EncodeBytes embeds a short byte string into a curve point.
	EncodeBytes(random io.Reader, msg []byte) (*Point, error)

	// EncodeBytesWithAttempts is EncodeBytes with an explicit bound on the
	// number of candidates tried.
	EncodeBytesWithAttempts(random io.Reader, msg []byte, maxAttempts int) (*Point, error)

	// DecodeBytes recovers the byte string embedded by EncodeBytes.
	DecodeBytes(p *Point) ([]byte, error)

	// MaxEncodeLen is the longest byte string EncodeBytes accepts.
	MaxEncodeLen() int
}

// CurveParams holds the parameters of a short Weierstrass curve
// y^2 = x^3 + a*x + b over F_p, with a generator G of order n.
type CurveParams struct {
	Name   string
	A, B   *big.Int
	P      *big.Int // field prime
	N      *big.Int // order of G
	Gx, Gy *big.Int
}

// Equal reports whether both parameter sets describe the same curve.
// The name is not compared.
func (c *CurveParams) Equal(o *CurveParams) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.A.Cmp(o.A) == 0 && c.B.Cmp(o.B) == 0 && c.P.Cmp(o.P) == 0 &&
		c.N.Cmp(o.N) == 0 && c.Gx.Cmp(o.Gx) == 0 && c.Gy.Cmp(o.Gy) == 0
}

// BitSize returns the bit length of the field prime.
func (c *CurveParams) BitSize() int {
	return c.P.BitLen()
}

// ByteSize returns the byte length of the field prime.
func (c *CurveParams) ByteSize() int {
	return (c.P.BitLen() + 7) / 8
}

func (c *CurveParams) String() string {
	return c.Name
}

// Validate checks that the parameters describe a usable curve: an odd
// prime field, a non-singular equation and a generator on the curve.
func (c *CurveParams) Validate() error {
	if c.A == nil || c.B == nil || c.P == nil || c.N == nil || c.Gx == nil || c.Gy == nil {
		return fmt.Errorf("%w: missing parameter", ErrInvalidParams)
	}
	if c.P.Cmp(big.NewInt(3)) <= 0 || !c.P.ProbablyPrime(20) {
		return fmt.Errorf("%w: field modulus must be a prime > 3", ErrInvalidParams)
	}
	if c.N.Cmp(big.NewInt(2)) < 0 {
		return fmt.Errorf("%w: group order must be at least 2", ErrInvalidParams)
	}

	// 4a^3 + 27b^2 != 0 (mod p)
	a3 := new(big.Int).Exp(c.A, big.NewInt(3), c.P)
	a3.Mul(a3, big.NewInt(4))
	b2 := new(big.Int).Exp(c.B, big.NewInt(2), c.P)
	b2.Mul(b2, big.NewInt(27))
	disc := a3.Add(a3, b2)
	if disc.Mod(disc, c.P).Sign() == 0 {
		return fmt.Errorf("%w: singular curve", ErrInvalidParams)
	}

	if !satisfies(c, c.Gx, c.Gy) {
		return fmt.Errorf("%w: generator is not on the curve", ErrInvalidParams)
	}
	return nil
}

func fromHex(s string) *big.Int {
	r, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in source file: " + s)
	}
	return r
}

// SEC 2 section 2.2.1
var secp192k1 = mustShortWeierstrass(&CurveParams{
	Name: CurveTypeSecp192k1,
	A:    big.NewInt(0),
	B:    big.NewInt(3),
	P:    fromHex("fffffffffffffffffffffffffffffffffffffffeffffee37"),
	N:    fromHex("fffffffffffffffffffffffe26f2fc170f69466a74defd8d"),
	Gx:   fromHex("db4ff10ec057e9ae26b07d0280b7f4341da5d1b1eae06c7d"),
	Gy:   fromHex("9b2f2f6d9c5628a7844163d015be86344082aa88d95e2f9d"),
})

// SEC 2 section 2.3.1
var secp224k1 = mustShortWeierstrass(&CurveParams{
	Name: CurveTypeSecp224k1,
	A:    big.NewInt(0),
	B:    big.NewInt(5),
	P:    fromHex("fffffffffffffffffffffffffffffffffffffffffffffffeffffe56d"),
	N:    fromHex("010000000000000000000000000001dce8d2ec6184caf0a971769fb1f7"),
	Gx:   fromHex("a1455b334df099df30fc28a169a467e9e47075a90f7e650eb6b7a45c"),
	Gy:   fromHex("7e089fed7fba344282cafbd6f7e319f7c0b0bd59e2ca4bdb556d61a5"),
})

// secp256k1 is built from the decred parameters.
var secp256k1Curve = func() *ShortWeierstrass {
	p := secp256k1.S256().Params()
	return mustShortWeierstrass(&CurveParams{
		Name: CurveTypeSecp256k1,
		A:    big.NewInt(0),
		B:    new(big.Int).Set(p.B),
		P:    new(big.Int).Set(p.P),
		N:    new(big.Int).Set(p.N),
		Gx:   new(big.Int).Set(p.Gx),
		Gy:   new(big.Int).Set(p.Gy),
	})
}()

func Secp192k1() Curve { return secp192k1 }

func Secp224k1() Curve { return secp224k1 }

func Secp256k1() Curve { return secp256k1Curve }

var registry = map[string]Curve{
	CurveTypeSecp192k1: secp192k1,
	CurveTypeSecp224k1: secp224k1,
	CurveTypeSecp256k1: secp256k1Curve,
}

// New returns the registered curve with the given name.
func New(name string) (Curve, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
	}
	return c, nil
}

// Names returns the registered curve names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newScalar generates a random integer in [1, n-1].
func newScalar(random io.Reader, n *big.Int) (*big.Int, error) {
	if random == nil {
		random = rand.Reader
	}
	max := new(big.Int).Sub(n, one)
	k, err := rand.Int(random, max)
	if err != nil {
		return nil, err
	}
	return k.Add(k, one), nil
}
