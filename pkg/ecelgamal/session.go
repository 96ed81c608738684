// Package ecelgamal encrypts messages of any length with elliptic curve
// ElGamal. Messages are split into chunks that each fit in one curve point;
// chunks are processed in parallel and reassembled in order.
package ecelgamal

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/crypto/elgamal"
)

const (
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
)

// Session binds a curve and chunking parameters. It is safe for concurrent
// use if its random source is.
type Session struct {
	params *Parameters
	curve  curves.Curve
	random io.Reader
}

// NewSession validates params and resolves the curve.
func NewSession(params *Parameters) (*Session, error) {
	if params == nil {
		params = DefaultParameters(curves.DefaultCurve)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	curve, err := curves.New(params.Curve)
	if err != nil {
		return nil, err
	}
	p := *params
	return &Session{params: &p, curve: curve, random: rand.Reader}, nil
}

// WithRandom returns a copy of the session drawing randomness from r.
func (s *Session) WithRandom(r io.Reader) *Session {
	cp := *s
	cp.random = r
	return &cp
}

func (s *Session) Curve() curves.Curve {
	return s.curve
}

func (s *Session) Parameters() Parameters {
	return *s.params
}

// GenerateKeyPair generates a key pair on the session curve.
func (s *Session) GenerateKeyPair() (*elgamal.KeyPair, error) {
	return elgamal.GenerateKeyPair(s.random, s.curve)
}

// EncryptMessage splits msg into chunks of at most MaxChunkLen bytes and
// encrypts each under publicKey. The i-th ciphertext holds the i-th chunk.
// The first failing chunk cancels the rest and is reported as *ChunkError.
func (s *Session) EncryptMessage(ctx context.Context, publicKey *curves.Point, msg []byte) ([]*elgamal.Ciphertext, error) {
	if publicKey == nil || publicKey.Curve() == nil || !publicKey.Curve().Params().Equal(s.curve.Params()) {
		return nil, elgamal.ErrInvalidPublicKey
	}
	chunks := Split(msg, s.params.MaxChunkLen)
	out := make([]*elgamal.Ciphertext, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.Concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return NewChunkError(i, OpEncrypt, err)
			}
			ct, err := elgamal.Encrypt(s.random, publicKey, chunk,
				elgamal.WithMaxEncodeAttempts(s.params.MaxEncodeAttempts))
			if err != nil {
				return NewChunkError(i, OpEncrypt, err)
			}
			out[i] = ct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptMessage decrypts every ciphertext and concatenates the chunks in
// order.
func (s *Session) DecryptMessage(ctx context.Context, privateKey *big.Int, cts []*elgamal.Ciphertext) ([]byte, error) {
	chunks := make([][]byte, len(cts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.Concurrency)
	for i, ct := range cts {
		i, ct := i, ct
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return NewChunkError(i, OpDecrypt, err)
			}
			if ct == nil {
				return NewChunkError(i, OpDecrypt, curves.ErrPointNotOnCurve)
			}
			if c := ct.Curve(); c == nil || !c.Params().Equal(s.curve.Params()) {
				return NewChunkError(i, OpDecrypt, elgamal.ErrCurveMismatch)
			}
			chunk, err := ct.Decrypt(privateKey)
			if err != nil {
				return NewChunkError(i, OpDecrypt, err)
			}
			chunks[i] = chunk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Join(chunks), nil
}
