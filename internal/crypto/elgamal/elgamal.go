// Package elgamal implements ElGamal encryption over an elliptic curve.
// Plaintext chunks are embedded into curve points, so the message is
// recovered directly from the decrypted point without a discrete log.
package elgamal

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
)

var (
	ErrInvalidPublicKey  = errors.New("elgamal: invalid public key")
	ErrInvalidPrivateKey = errors.New("elgamal: private key must be in [1, n-1]")
	ErrInvalidNonce      = errors.New("elgamal: ephemeral scalar must be in [1, n-1]")
	ErrCurveMismatch     = errors.New("elgamal: ciphertext points are on different curves")
)

// KeyPair holds an ElGamal key pair together with the auxiliary generator
// scalar g. g*G is an alternate base point; it plays no part in Encrypt or
// Decrypt.
type KeyPair struct {
	Curve     curves.Curve
	Private   *big.Int      // d
	Public    *curves.Point // d * G
	Generator *big.Int      // g
}

// GenerateKeyPair draws d and g independently and uniformly from [1, n-1]
// and computes the public key d*G.
func GenerateKeyPair(random io.Reader, curve curves.Curve) (*KeyPair, error) {
	d, err := curve.NewScalar(random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key scalar: %w", err)
	}
	pub, err := curve.ScalarBaseMult(d)
	if err != nil {
		return nil, err
	}
	g, err := curve.NewScalar(random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auxiliary generator: %w", err)
	}
	return &KeyPair{
		Curve:     curve,
		Private:   d,
		Public:    pub,
		Generator: g,
	}, nil
}

// NewKeyPair rebuilds a key pair from a stored private key. generator may
// be nil.
func NewKeyPair(curve curves.Curve, private, generator *big.Int) (*KeyPair, error) {
	if err := checkScalar(curve, private); err != nil {
		return nil, err
	}
	pub, err := curve.ScalarBaseMult(private)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Curve:     curve,
		Private:   new(big.Int).Set(private),
		Public:    pub,
		Generator: generator,
	}, nil
}

// AltBasePoint returns g*G.
func (kp *KeyPair) AltBasePoint() (*curves.Point, error) {
	if kp.Generator == nil {
		return nil, errors.New("elgamal: key pair has no auxiliary generator")
	}
	return kp.Curve.ScalarBaseMult(kp.Generator)
}

// Option tunes Encrypt and EncryptWithK.
type Option func(*options)

type options struct {
	maxEncodeAttempts int
}

// WithMaxEncodeAttempts bounds the number of candidates tried when the
// chunk is embedded into a point.
func WithMaxEncodeAttempts(n int) Option {
	return func(o *options) {
		o.maxEncodeAttempts = n
	}
}

func buildOptions(opts []Option) *options {
	o := &options{maxEncodeAttempts: curves.DefaultMaxEncodeAttempts}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Encrypt encrypts a single chunk under publicKey. The chunk must fit in
// one curve point; splitting longer messages is the caller's job.
// random feeds both the ephemeral scalar and the encoding padding.
func Encrypt(random io.Reader, publicKey *curves.Point, chunk []byte, opts ...Option) (*Ciphertext, error) {
	if err := checkPublicKey(publicKey); err != nil {
		return nil, err
	}
	k, err := publicKey.Curve().NewScalar(random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random k: %w", err)
	}
	return EncryptWithK(random, publicKey, chunk, k, opts...)
}

// EncryptWithK encrypts chunk using the given ephemeral scalar k:
// U = k*G, V = M + k*publicKey where M encodes the chunk.
func EncryptWithK(random io.Reader, publicKey *curves.Point, chunk []byte, k *big.Int, opts ...Option) (*Ciphertext, error) {
	if err := checkPublicKey(publicKey); err != nil {
		return nil, err
	}
	curve := publicKey.Curve()
	if k == nil || k.Sign() <= 0 || k.Cmp(curve.Params().N) >= 0 {
		return nil, ErrInvalidNonce
	}

	// 1. M = encode(chunk)
	m, err := curve.EncodeBytesWithAttempts(random, chunk, buildOptions(opts).maxEncodeAttempts)
	if err != nil {
		return nil, err
	}

	// 2. U = k * G
	u, err := curve.ScalarBaseMult(k)
	if err != nil {
		return nil, err
	}

	// 3. S = k * publicKey
	s, err := curve.ScalarMult(k, publicKey)
	if err != nil {
		return nil, err
	}

	// 4. V = M + S
	v, err := curve.Add(m, s)
	if err != nil {
		return nil, err
	}

	return &Ciphertext{U: u, V: v, K: new(big.Int).Set(k)}, nil
}

// Decrypt computes M = V - d*U and decodes the chunk embedded in M.
func Decrypt(privateKey *big.Int, u, v *curves.Point) ([]byte, error) {
	if u == nil || v == nil || u.Curve() == nil || v.Curve() == nil {
		return nil, curves.ErrPointNotOnCurve
	}
	curve := v.Curve()
	if !curve.Params().Equal(u.Curve().Params()) {
		return nil, ErrCurveMismatch
	}
	if err := checkScalar(curve, privateKey); err != nil {
		return nil, err
	}

	// d * U = d * k * G = k * publicKey
	s, err := curve.ScalarMult(privateKey, u)
	if err != nil {
		return nil, err
	}
	m, err := curve.Sub(v, s)
	if err != nil {
		return nil, err
	}
	return curve.DecodeBytes(m)
}

func checkPublicKey(publicKey *curves.Point) error {
	if publicKey == nil || publicKey.Curve() == nil {
		return ErrInvalidPublicKey
	}
	if !publicKey.Curve().IsOnCurve(publicKey) {
		return fmt.Errorf("%w: %w", ErrInvalidPublicKey, curves.ErrPointNotOnCurve)
	}
	if publicKey.IsInfinity() {
		return fmt.Errorf("%w: point at infinity", ErrInvalidPublicKey)
	}
	return nil
}

func checkScalar(curve curves.Curve, d *big.Int) error {
	if d == nil || d.Sign() <= 0 || d.Cmp(curve.Params().N) >= 0 {
		return ErrInvalidPrivateKey
	}
	return nil
}
