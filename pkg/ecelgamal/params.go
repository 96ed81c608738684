package ecelgamal

import (
	"fmt"
	"runtime"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
)

// DefaultMaxChunkLen is the number of message bytes embedded per point.
const DefaultMaxChunkLen = 25

// Parameters holds the configuration for an encryption session.
type Parameters struct {
	Curve             string // registry name, e.g. "secp256k1"
	MaxChunkLen       int    // bytes per chunk, at most the curve's MaxEncodeLen
	MaxEncodeAttempts int    // candidates tried per chunk before giving up
	Concurrency       int    // parallel chunk workers
}

// DefaultParameters returns the parameters for curve with every other field
// at its default. The chunk length is lowered to what the curve can carry.
func DefaultParameters(curve string) *Parameters {
	p := &Parameters{
		Curve:             curve,
		MaxChunkLen:       DefaultMaxChunkLen,
		MaxEncodeAttempts: curves.DefaultMaxEncodeAttempts,
		Concurrency:       runtime.NumCPU(),
	}
	if c, err := curves.New(curve); err == nil && c.MaxEncodeLen() < p.MaxChunkLen {
		p.MaxChunkLen = c.MaxEncodeLen()
	}
	return p
}

// Validate checks the parameters against the selected curve.
func (p *Parameters) Validate() error {
	c, err := curves.New(p.Curve)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	if p.MaxChunkLen < 1 {
		return fmt.Errorf("%w: chunk length %d", ErrInvalidParameters, p.MaxChunkLen)
	}
	if p.MaxChunkLen > c.MaxEncodeLen() {
		return fmt.Errorf("%w: %d bytes, %s allows %d", ErrChunkTooLong, p.MaxChunkLen, p.Curve, c.MaxEncodeLen())
	}
	if p.MaxEncodeAttempts < 1 {
		return fmt.Errorf("%w: encode attempts %d", ErrInvalidParameters, p.MaxEncodeAttempts)
	}
	if p.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency %d", ErrInvalidParameters, p.Concurrency)
	}
	return nil
}
