package curves

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/modmath"
)

// DefaultMaxEncodeAttempts bounds the search for an x coordinate with a
// square root. Each attempt succeeds with probability about 1/2.
const DefaultMaxEncodeAttempts = 256

// maxPrefixLen is the largest length a one-byte prefix can describe.
const maxPrefixLen = 255

var (
	ErrEncodingExhausted = errors.New("curves: no curve point found for plaintext")
	ErrPlaintextTooLong  = errors.New("curves: plaintext too long to encode")
	ErrEmptyPlaintext    = errors.New("curves: cannot encode an empty plaintext")
	ErrMalformedPoint    = errors.New("curves: point does not carry an encoded plaintext")
)

// capacity is the number of bytes a candidate x may have while staying
// below p whatever its content.
func (c *ShortWeierstrass) capacity() int {
	return c.params.ByteSize() - 1
}

// MaxEncodeLen returns the longest plaintext that leaves room for the
// length prefix and at least one padding byte.
func (c *ShortWeierstrass) MaxEncodeLen() int {
	n := c.capacity() - 2
	if n > maxPrefixLen {
		n = maxPrefixLen
	}
	if n < 0 {
		return 0
	}
	return n
}

// EncodeBytes embeds msg into a point using DefaultMaxEncodeAttempts.
func (c *ShortWeierstrass) EncodeBytes(random io.Reader, msg []byte) (*Point, error) {
	return c.EncodeBytesWithAttempts(random, msg, DefaultMaxEncodeAttempts)
}

// EncodeBytesWithAttempts embeds msg into a point whose x coordinate reads,
// big-endian, as len(msg) || msg || padding. The first candidate carries no
// padding. Every failed candidate gets one more random padding byte until
// the buffer reaches the field capacity; after that the padding is redrawn.
func (c *ShortWeierstrass) EncodeBytesWithAttempts(random io.Reader, msg []byte, maxAttempts int) (*Point, error) {
	if len(msg) == 0 {
		return nil, ErrEmptyPlaintext
	}
	if len(msg) > c.MaxEncodeLen() {
		return nil, fmt.Errorf("%w: %d bytes, %s allows %d", ErrPlaintextTooLong, len(msg), c.params.Name, c.MaxEncodeLen())
	}
	if random == nil {
		random = rand.Reader
	}

	buf := make([]byte, 0, c.capacity())
	buf = append(buf, byte(len(msg)))
	buf = append(buf, msg...)
	head := len(buf)

	x := new(big.Int)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if len(buf) < cap(buf) {
				buf = append(buf, 0)
				if _, err := io.ReadFull(random, buf[len(buf)-1:]); err != nil {
					return nil, err
				}
			} else if _, err := io.ReadFull(random, buf[head:]); err != nil {
				return nil, err
			}
		}

		x.SetBytes(buf)
		if y, ok := modmath.ModSqrt(c.rhs(x), c.params.P); ok {
			return c.point(x, y), nil
		}
	}
	return nil, fmt.Errorf("%w: %d attempts", ErrEncodingExhausted, maxAttempts)
}

// rhs returns x^3 + a*x + b mod p.
func (c *ShortWeierstrass) rhs(x *big.Int) *big.Int {
	r := new(big.Int).Mul(x, x)
	r.Mul(r, x)
	r.Add(r, new(big.Int).Mul(c.params.A, x))
	r.Add(r, c.params.B)
	return r.Mod(r, c.params.P)
}

// DecodeBytes reads the length prefix from the most significant byte of x
// and returns the bytes that follow it, dropping any padding.
func (c *ShortWeierstrass) DecodeBytes(p *Point) ([]byte, error) {
	if err := c.check(p); err != nil {
		return nil, err
	}
	if p.IsInfinity() {
		return nil, fmt.Errorf("%w: point at infinity", ErrMalformedPoint)
	}

	b := p.x.Bytes()
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: zero x coordinate", ErrMalformedPoint)
	}
	n := int(b[0])
	if n == 0 || len(b) < 1+n {
		return nil, fmt.Errorf("%w: prefix %d with %d bytes", ErrMalformedPoint, n, len(b))
	}

	out := make([]byte, n)
	copy(out, b[1:1+n])
	return out, nil
}
